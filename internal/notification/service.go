// Package notification delivers OTP codes and contract updates to
// users over WhatsApp and e-mail. Delivery failures are logged and
// never fail the business operation that triggered them, except for
// OTP where the code is useless if undelivered.
package notification

import (
	"context"
	"fmt"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/pkg/logger"
)

type Service struct {
	whatsapp *WhatsAppClient
	email    *EmailSender
	log      *logger.Logger
}

func NewService(whatsapp *WhatsAppClient, email *EmailSender, log *logger.Logger) *Service {
	return &Service{whatsapp: whatsapp, email: email, log: log}
}

// SendOTP delivers a login code; the error propagates because the
// caller must not pretend the code was sent.
func (s *Service) SendOTP(ctx context.Context, phone, code string) error {
	text := fmt.Sprintf("Ваш код подтверждения: %s. Никому не сообщайте его.", code)
	if err := s.whatsapp.SendMessage(ctx, phone, text); err != nil {
		return fmt.Errorf("failed to deliver otp: %w", err)
	}
	return nil
}

// NotifyContractCreated invites the employer to review a new contract
func (s *Service) NotifyContractCreated(ctx context.Context, contract *model.Contract) {
	if contract.EmployerPhone == "" {
		return
	}
	text := fmt.Sprintf(
		"Клиника «%s» направила вам договор №%s от %s на проведение медицинских осмотров. Войдите в личный кабинет для ознакомления.",
		contract.ClinicName, contract.Number, contract.ContractDate.Format("02.01.2006"),
	)
	if err := s.whatsapp.SendMessage(ctx, contract.EmployerPhone, text); err != nil {
		s.log.Error(err, "failed to notify employer about contract", "contract_id", contract.ID)
	}
}

// NotifyContractStatus tells the counterparty about a lifecycle change
func (s *Service) NotifyContractStatus(ctx context.Context, contract *model.Contract, comment string) {
	if contract.EmployerPhone == "" {
		return
	}
	var text string
	switch contract.Status {
	case model.ContractStatusPendingApproval:
		text = fmt.Sprintf("Договор №%s направлен вам на согласование.", contract.Number)
	case model.ContractStatusApproved:
		text = fmt.Sprintf("Договор №%s согласован.", contract.Number)
	case model.ContractStatusRejected:
		text = fmt.Sprintf("Договор №%s отклонён. Причина: %s", contract.Number, contract.RejectionReason)
	case model.ContractStatusExecuted:
		text = fmt.Sprintf("Договор №%s исполнен.", contract.Number)
	default:
		return
	}
	if comment != "" {
		text += " Комментарий: " + comment
	}
	if err := s.whatsapp.SendMessage(ctx, contract.EmployerPhone, text); err != nil {
		s.log.Error(err, "failed to notify contract status", "contract_id", contract.ID, "status", contract.Status)
	}
}

// EmailContract duplicates a contract notification to e-mail when the
// employer left an address in their registration data.
func (s *Service) EmailContract(address string, contract *model.Contract) {
	if address == "" || s.email == nil {
		return
	}
	subject := fmt.Sprintf("Договор №%s", contract.Number)
	body := fmt.Sprintf(
		"Договор №%s от %s со статусом «%s». Подробности в личном кабинете.",
		contract.Number, contract.ContractDate.Format("02.01.2006"), contract.Status,
	)
	if err := s.email.Send(address, subject, body); err != nil {
		s.log.Error(err, "failed to email contract notification", "contract_id", contract.ID)
	}
}
