// Package doctor manages the clinic's roster of specialists
package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type Service struct {
	doctors repository.DoctorRepository
}

func NewService(doctors repository.DoctorRepository) *Service {
	return &Service{doctors: doctors}
}

func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Врачей добавляет клиника", nil)
	}
	doctor := &model.Doctor{
		Base:           model.NewBase(),
		ClinicID:       actor.ID,
		UserID:         req.UserID,
		FullName:       req.FullName,
		Specialization: req.Specialization,
		Cabinet:        req.Cabinet,
		WorkSchedule:   req.WorkSchedule,
		Active:         true,
	}
	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("doctor", err)
	}
	return doctor, nil
}

func (s *Service) List(ctx context.Context, actor model.Actor) ([]*model.Doctor, error) {
	return s.doctors.List(ctx, actor.ID)
}

func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.requireOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		doctor.FullName = *req.FullName
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Cabinet != nil {
		doctor.Cabinet = *req.Cabinet
	}
	if req.WorkSchedule != nil {
		doctor.WorkSchedule = *req.WorkSchedule
	}
	if req.Active != nil {
		doctor.Active = *req.Active
	}
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if _, err := s.requireOwned(ctx, actor, id); err != nil {
		return err
	}
	return s.doctors.Delete(ctx, id)
}

func (s *Service) requireOwned(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doctor.ClinicID != actor.ID {
		return nil, apperrors.Forbidden("Нет доступа к этому врачу", nil)
	}
	return doctor, nil
}
