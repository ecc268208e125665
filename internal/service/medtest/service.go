// Package medtest manages laboratory and functional tests attached to
// route sheets. Unfinished tests block the commission's expertise.
package medtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type Service struct {
	tests  repository.MedicalTestRepository
	sheets repository.RouteSheetRepository
}

func NewService(tests repository.MedicalTestRepository, sheets repository.RouteSheetRepository) *Service {
	return &Service{tests: tests, sheets: sheets}
}

func (s *Service) Create(ctx context.Context, kind model.TestKind, req *model.CreateMedicalTestRequest) (*model.MedicalTest, error) {
	sheet, err := s.sheets.Get(ctx, req.RouteSheetID)
	if err != nil {
		return nil, apperrors.NotFound("route sheet", err)
	}
	test := &model.MedicalTest{
		Base:         model.NewBase(),
		RouteSheetID: sheet.ID,
		PatientID:    sheet.PatientID,
		PatientName:  sheet.PatientName,
		Kind:         kind,
		Name:         req.Name,
		Status:       model.TestStatusPending,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to create medical test: %w", err)
	}
	return test, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.MedicalTest, error) {
	test, err := s.tests.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("medical test", err)
	}
	return test, nil
}

func (s *Service) List(ctx context.Context, kind model.TestKind, routeSheetID *uuid.UUID) ([]*model.MedicalTest, error) {
	if routeSheetID != nil {
		return s.tests.ListByRouteSheet(ctx, *routeSheetID, kind)
	}
	return s.tests.List(ctx, kind)
}

// Update records status changes and results. Completion stamps the
// finish time.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalTestRequest) (*model.MedicalTest, error) {
	test, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		test.Status = *req.Status
		if *req.Status == model.TestStatusCompleted {
			now := time.Now()
			test.CompletedAt = &now
		} else {
			test.CompletedAt = nil
		}
	}
	if req.Result != nil {
		test.Result = *req.Result
	}
	if err := s.tests.Update(ctx, test); err != nil {
		return nil, fmt.Errorf("failed to update medical test: %w", err)
	}
	return test, nil
}
