// Package calendarplan manages examination plans over a contract's
// contingent. The plan window and employee set are always derived
// server-side from the department entries.
package calendarplan

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/workflow"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type Service struct {
	plans     repository.CalendarPlanRepository
	contracts repository.ContractRepository
	employees repository.ContingentRepository
	users     repository.UserRepository
}

func NewService(
	plans repository.CalendarPlanRepository,
	contracts repository.ContractRepository,
	employees repository.ContingentRepository,
	users repository.UserRepository,
) *Service {
	return &Service{plans: plans, contracts: contracts, employees: employees, users: users}
}

// Create builds a draft plan. The contract must carry at least one
// contingent employee; aggregate dates and the employee union come
// from the department entries, never from the client.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateCalendarPlanRequest) (*model.CalendarPlan, error) {
	contract, err := s.contracts.Get(ctx, req.ContractID)
	if err != nil {
		return nil, apperrors.NotFound("contract", err)
	}

	count, err := s.employees.CountForContract(ctx, req.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to count contingent: %w", err)
	}
	if count == 0 {
		return nil, apperrors.BadRequest("Сначала загрузите контингент по договору", nil)
	}

	for _, dept := range req.Departments {
		if dept.StartDate.IsZero() || dept.EndDate.IsZero() {
			return nil, apperrors.BadRequest("Укажите даты проведения для каждого подразделения", nil)
		}
		if dept.EndDate.Before(dept.StartDate.Time) {
			return nil, apperrors.BadRequest(
				fmt.Sprintf("Дата окончания раньше даты начала для подразделения «%s»", dept.Department), nil)
		}
	}

	start, end := workflow.AggregateDates(req.Departments)

	plan := &model.CalendarPlan{
		Base:                   model.NewBase(),
		ContractID:             req.ContractID,
		Status:                 model.CalendarPlanStatusDraft,
		StartDate:              start,
		EndDate:                end,
		EmployeeIDs:            workflow.AggregateEmployees(req.Departments),
		Departments:            req.Departments,
		HarmfulFactors:         req.HarmfulFactors,
		SelectedDoctors:        req.SelectedDoctors,
		ClinicName:             contract.ClinicName,
		EmployerName:           contract.EmployerName,
		ClinicRepresentative:   req.ClinicRepresentative,
		EmployerRepresentative: req.EmployerRepresentative,
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create calendar plan: %w", err)
	}
	return plan, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.CalendarPlan, error) {
	plan, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("calendar plan", err)
	}
	return plan, nil
}

func (s *Service) List(ctx context.Context, contractID *uuid.UUID) ([]*model.CalendarPlan, error) {
	return s.plans.List(ctx, repository.CalendarPlanFilter{ContractID: contractID})
}

// Update edits a plan while still editable, recomputing aggregates
func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateCalendarPlanRequest) (*model.CalendarPlan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.PlanEditable(plan.Status) {
		return nil, apperrors.BadRequest("План можно редактировать только в статусе черновика или отклонённый", nil)
	}

	if req.Departments != nil {
		plan.Departments = *req.Departments
		plan.StartDate, plan.EndDate = workflow.AggregateDates(plan.Departments)
		plan.EmployeeIDs = workflow.AggregateEmployees(plan.Departments)
	}
	if req.HarmfulFactors != nil {
		plan.HarmfulFactors = *req.HarmfulFactors
	}
	if req.SelectedDoctors != nil {
		plan.SelectedDoctors = *req.SelectedDoctors
	}
	if req.ClinicRepresentative != nil {
		plan.ClinicRepresentative = *req.ClinicRepresentative
	}
	if req.EmployerRepresentative != nil {
		plan.EmployerRepresentative = *req.EmployerRepresentative
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update calendar plan: %w", err)
	}
	return plan, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.PlanEditable(plan.Status) {
		return apperrors.BadRequest("Нельзя удалить план в текущем статусе", nil)
	}
	return s.plans.Delete(ctx, id)
}

// Submit moves a draft onto the clinic's review queue
func (s *Service) Submit(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.CalendarPlan, error) {
	return s.transition(ctx, id, workflow.PlanActionSubmit, "")
}

// Approve advances review: the clinic passes the plan to the employer,
// the employer's approval activates it.
func (s *Service) Approve(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.CalendarPlan, error) {
	switch actor.Role {
	case model.RoleClinic:
		return s.transition(ctx, id, workflow.PlanActionClinicApprove, "")
	case model.RoleEmployer:
		return s.transition(ctx, id, workflow.PlanActionEmployerApprove, "")
	default:
		return nil, apperrors.Forbidden("unknown role", nil)
	}
}

// Reject returns the plan to the clinic with a mandatory reason
func (s *Service) Reject(ctx context.Context, actor model.Actor, id uuid.UUID, reason string) (*model.CalendarPlan, error) {
	if !actor.IsEmployer() {
		return nil, apperrors.Forbidden("Только работодатель может отклонить план", nil)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.BadRequest("Укажите причину отклонения", nil)
	}
	return s.transition(ctx, id, workflow.PlanActionReject, reason)
}

// SendToSES marks the approved plan as filed with sanitary services
func (s *Service) SendToSES(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.CalendarPlan, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Только клиника может направить план в СЭС", nil)
	}
	return s.transition(ctx, id, workflow.PlanActionSendToSES, "")
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, action workflow.PlanAction, reason string) (*model.CalendarPlan, error) {
	plan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := workflow.NextPlanStatus(action, plan.Status)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	plan.Status = next
	if action == workflow.PlanActionReject {
		plan.RejectionReason = reason
	} else {
		plan.RejectionReason = ""
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update calendar plan status: %w", err)
	}
	return plan, nil
}
