// Package referral tracks directions to specialized institutions
package referral

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/workflow"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type Service struct {
	referrals repository.ReferralRepository
}

func NewService(referrals repository.ReferralRepository) *Service {
	return &Service{referrals: referrals}
}

func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateReferralRequest) (*model.Referral, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Направления выдает клиника", nil)
	}
	referral := &model.Referral{
		Base:         model.NewBase(),
		ExpertiseID:  req.ExpertiseID,
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		Organization: req.Organization,
		Reason:       req.Reason,
		Status:       model.ReferralStatusCreated,
	}
	if err := s.referrals.Create(ctx, referral); err != nil {
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}
	return referral, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Referral, error) {
	referral, err := s.referrals.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("referral", err)
	}
	return referral, nil
}

func (s *Service) List(ctx context.Context, patientID string) ([]*model.Referral, error) {
	return s.referrals.List(ctx, patientID)
}

// UpdateStatus moves the referral along its delivery chain
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReferralStatus) (*model.Referral, error) {
	referral, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.NextReferralStatus(referral.Status, status); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	referral.Status = status
	if err := s.referrals.Update(ctx, referral); err != nil {
		return nil, fmt.Errorf("failed to update referral: %w", err)
	}
	return referral, nil
}
