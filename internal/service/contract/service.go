// Package contract implements the contract lifecycle: the clinic
// drafts and sends, the employer approves or rejects, and every action
// lands in an append-only history log.
package contract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/service/auth"
	"github.com/profmed/crm-api/internal/workflow"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

// Notifier delivers contract events to the counterparty. Satisfied by
// notification.Service; tests substitute a recording fake.
type Notifier interface {
	NotifyContractCreated(ctx context.Context, contract *model.Contract)
	NotifyContractStatus(ctx context.Context, contract *model.Contract, comment string)
	EmailContract(address string, contract *model.Contract)
}

type Service struct {
	contracts repository.ContractRepository
	users     repository.UserRepository
	notifier  Notifier
}

func NewService(
	contracts repository.ContractRepository,
	users repository.UserRepository,
	notifier Notifier,
) *Service {
	return &Service{contracts: contracts, users: users, notifier: notifier}
}

// Create registers a clinic's contract. When the employer is already
// registered under the BIN, the contract is linked to them immediately.
// With a phone present the employer is notified and the contract goes
// out as sent right away instead of staying a draft.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateContractRequest) (*model.Contract, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Только клиника может создавать договоры", nil)
	}
	if strings.TrimSpace(req.Number) == "" || strings.TrimSpace(req.EmployerName) == "" ||
		strings.TrimSpace(req.EmployerBIN) == "" || req.ContractDate.IsZero() {
		return nil, apperrors.BadRequest("Заполните все обязательные поля", nil)
	}

	contract := &model.Contract{
		Base:          model.NewBase(),
		ClinicID:      actor.ID,
		ClinicName:    actor.Name,
		EmployerName:  req.EmployerName,
		EmployerBIN:   auth.NormalizeBIN(req.EmployerBIN),
		EmployerPhone: req.EmployerPhone,
		Number:        req.Number,
		ContractDate:  req.ContractDate,
		Amount:        req.Amount,
		PeopleCount:   req.PeopleCount,
		ExecutionDate: req.ExecutionDate,
		Status:        model.ContractStatusDraft,
		Notes:         req.Notes,
	}

	if employer, err := s.users.GetEmployerByBIN(ctx, contract.EmployerBIN); err == nil {
		contract.EmployerID = &employer.ID
	}

	if contract.EmployerPhone != "" {
		now := time.Now().UTC()
		contract.Status = model.ContractStatusSent
		contract.SentAt = &now
	}

	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}
	s.appendHistory(ctx, contract, model.ContractActionCreated, actor, "", "", contract.Status, nil)

	if contract.EmployerPhone != "" {
		s.notifier.NotifyContractCreated(ctx, contract)
	}
	return contract, nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.contracts.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("contract", err)
	}
	if err := s.authorize(ctx, actor, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// List returns contracts visible to the caller: a clinic sees its own,
// an employer sees contracts linked by ID or matching its BIN.
func (s *Service) List(ctx context.Context, actor model.Actor, status model.ContractStatus) ([]*model.Contract, error) {
	filter := repository.ContractFilter{Status: status}
	switch actor.Role {
	case model.RoleClinic:
		filter.ClinicID = &actor.ID
	case model.RoleEmployer:
		user, err := s.users.Get(ctx, actor.ID)
		if err != nil {
			return nil, apperrors.NotFound("user", err)
		}
		if user.BIN != "" {
			filter.EmployerBIN = user.BIN
		} else {
			filter.EmployerID = &actor.ID
		}
	default:
		return nil, apperrors.Forbidden("unknown role", nil)
	}
	return s.contracts.List(ctx, filter)
}

// Update edits contract fields. Allowed only while the contract is
// editable (draft or rejected); field changes land in the history.
func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateContractRequest) (*model.Contract, error) {
	contract, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Только клиника может редактировать договор", nil)
	}
	if !workflow.ContractEditable(contract.Status) {
		return nil, apperrors.BadRequest("Договор можно редактировать только в статусе черновика или отклонённый", nil)
	}

	changes := model.JSONMap{}
	if req.Number != nil && *req.Number != contract.Number {
		changes["number"] = map[string]string{"old": contract.Number, "new": *req.Number}
		contract.Number = *req.Number
	}
	if req.ContractDate != nil {
		changes["contract_date"] = map[string]string{"old": contract.ContractDate.String(), "new": req.ContractDate.String()}
		contract.ContractDate = *req.ContractDate
	}
	if req.EmployerName != nil && *req.EmployerName != contract.EmployerName {
		changes["employer_name"] = map[string]string{"old": contract.EmployerName, "new": *req.EmployerName}
		contract.EmployerName = *req.EmployerName
	}
	if req.EmployerBIN != nil {
		bin := auth.NormalizeBIN(*req.EmployerBIN)
		if bin != contract.EmployerBIN {
			changes["employer_bin"] = map[string]string{"old": contract.EmployerBIN, "new": bin}
			contract.EmployerBIN = bin
			contract.EmployerID = nil
			if employer, err := s.users.GetEmployerByBIN(ctx, bin); err == nil {
				contract.EmployerID = &employer.ID
			}
		}
	}
	if req.EmployerPhone != nil {
		contract.EmployerPhone = *req.EmployerPhone
	}
	if req.Amount != nil && *req.Amount != contract.Amount {
		changes["amount"] = map[string]float64{"old": contract.Amount, "new": *req.Amount}
		contract.Amount = *req.Amount
	}
	if req.PeopleCount != nil && *req.PeopleCount != contract.PeopleCount {
		changes["people_count"] = map[string]int{"old": contract.PeopleCount, "new": *req.PeopleCount}
		contract.PeopleCount = *req.PeopleCount
	}
	if req.ExecutionDate != nil {
		contract.ExecutionDate = req.ExecutionDate
	}
	if req.Notes != nil {
		contract.Notes = *req.Notes
	}

	if err := s.contracts.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}
	if len(changes) > 0 {
		s.appendHistory(ctx, contract, model.ContractActionUpdated, actor, "", contract.Status, contract.Status, changes)
	}
	return contract, nil
}

// SendForApproval moves draft -> pending_approval
func (s *Service) SendForApproval(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Contract, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Только клиника может отправить договор на согласование", nil)
	}
	return s.transition(ctx, actor, id, model.ContractActionSentForApproval, "", func(c *model.Contract) error {
		return nil
	})
}

// Approve records the employer's approval
func (s *Service) Approve(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Contract, error) {
	if !actor.IsEmployer() {
		return nil, apperrors.Forbidden("Только работодатель может согласовать договор", nil)
	}
	return s.transition(ctx, actor, id, model.ContractActionApproved, "", func(c *model.Contract) error {
		if !workflow.EmployerCanDecide(c) {
			return apperrors.BadRequest("Договор уже согласован или недоступен для согласования", nil)
		}
		now := time.Now().UTC()
		c.EmployerApprovedAt = &now
		c.RejectionReason = ""
		return nil
	})
}

// Reject records the employer's rejection. The reason is mandatory and
// validated before any state change.
func (s *Service) Reject(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (*model.Contract, error) {
	if !actor.IsEmployer() {
		return nil, apperrors.Forbidden("Только работодатель может отклонить договор", nil)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.BadRequest("Укажите причину отклонения", nil)
	}
	return s.transition(ctx, actor, id, model.ContractActionRejected, reason, func(c *model.Contract) error {
		if !workflow.EmployerCanDecide(c) {
			return apperrors.BadRequest("Договор недоступен для отклонения", nil)
		}
		c.RejectionReason = reason
		return nil
	})
}

// ResendForApproval returns a corrected contract to the employer
func (s *Service) ResendForApproval(ctx context.Context, actor model.Actor, id uuid.UUID, comment string) (*model.Contract, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Только клиника может повторно отправить договор", nil)
	}
	return s.transition(ctx, actor, id, model.ContractActionResentForApproval, comment, func(c *model.Contract) error {
		c.RejectionReason = ""
		return nil
	})
}

// Send marks the approved contract as sent to the employer
func (s *Service) Send(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Contract, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Только клиника может отправить договор", nil)
	}
	return s.transition(ctx, actor, id, model.ContractActionSent, "", func(c *model.Contract) error {
		now := time.Now().UTC()
		c.SentAt = &now
		return nil
	})
}

// Execute closes the contract as fulfilled
func (s *Service) Execute(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Contract, error) {
	return s.transition(ctx, actor, id, model.ContractActionExecuted, "", func(c *model.Contract) error {
		now := time.Now().UTC()
		c.ExecutedAt = &now
		if c.ExecutionDate == nil {
			today := model.Today()
			c.ExecutionDate = &today
		}
		return nil
	})
}

// Cancel voids a contract that has not been executed
func (s *Service) Cancel(ctx context.Context, actor model.Actor, id uuid.UUID, comment string) (*model.Contract, error) {
	return s.transition(ctx, actor, id, model.ContractActionCancelled, comment, func(c *model.Contract) error {
		return nil
	})
}

// History returns the append-only action log, newest first
func (s *Service) History(ctx context.Context, actor model.Actor, id uuid.UUID) ([]*model.ContractHistoryEntry, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.contracts.ListHistory(ctx, id)
}

// transition validates the action against the lifecycle table, applies
// the mutator, persists and logs. The mutator runs before any write so
// a guard failure leaves no side effects.
func (s *Service) transition(
	ctx context.Context,
	actor model.Actor,
	id uuid.UUID,
	action model.ContractAction,
	comment string,
	mutate func(*model.Contract) error,
) (*model.Contract, error) {
	contract, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.NextContractStatus(action, contract.Status)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	if err := mutate(contract); err != nil {
		return nil, err
	}

	oldStatus := contract.Status
	contract.Status = next

	if err := s.contracts.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract status: %w", err)
	}
	s.appendHistory(ctx, contract, action, actor, comment, oldStatus, next, nil)
	s.notifier.NotifyContractStatus(ctx, contract, comment)
	if email := s.employerEmail(ctx, contract); email != "" {
		s.notifier.EmailContract(email, contract)
	}
	return contract, nil
}

// employerEmail resolves the linked employer's e-mail from their
// registration data; an empty result means no duplicate over e-mail.
func (s *Service) employerEmail(ctx context.Context, contract *model.Contract) string {
	if contract.EmployerID == nil {
		return ""
	}
	user, err := s.users.Get(ctx, *contract.EmployerID)
	if err != nil {
		return ""
	}
	email, _ := user.RegistrationData["email"].(string)
	return email
}

func (s *Service) appendHistory(
	ctx context.Context,
	contract *model.Contract,
	action model.ContractAction,
	actor model.Actor,
	comment string,
	oldStatus, newStatus model.ContractStatus,
	changes model.JSONMap,
) {
	entry := &model.ContractHistoryEntry{
		ID:         uuid.New(),
		ContractID: contract.ID,
		Action:     action,
		UserID:     &actor.ID,
		UserRole:   string(actor.Role),
		UserName:   actor.Name,
		Comment:    comment,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}
	// History must not fail the action itself; the log entry is best
	// effort while the contract write already succeeded.
	_ = s.contracts.AddHistory(ctx, entry)
}

// authorize checks the caller's relationship to the contract: the
// owning clinic, the linked employer, or an employer whose BIN matches.
func (s *Service) authorize(ctx context.Context, actor model.Actor, contract *model.Contract) error {
	switch actor.Role {
	case model.RoleClinic:
		if contract.ClinicID == actor.ID {
			return nil
		}
	case model.RoleEmployer:
		if contract.EmployerID != nil && *contract.EmployerID == actor.ID {
			return nil
		}
		user, err := s.users.Get(ctx, actor.ID)
		if err == nil && user.BIN != "" && auth.NormalizeBIN(user.BIN) == contract.EmployerBIN {
			return nil
		}
	}
	return apperrors.Forbidden("Нет доступа к этому договору", nil)
}
