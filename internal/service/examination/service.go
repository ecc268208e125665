// Package examination records single-specialist findings for a patient
// visit and exposes the patient's examination history.
package examination

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type Service struct {
	exams   repository.ExaminationRepository
	doctors repository.DoctorRepository
}

func NewService(exams repository.ExaminationRepository, doctors repository.DoctorRepository) *Service {
	return &Service{exams: exams, doctors: doctors}
}

// Create records a specialist's finding. Only doctors examine; the
// doctor identity and specialization come from the doctor profile, not
// from the request.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateExaminationRequest) (*model.DoctorExamination, error) {
	if !actor.IsDoctor() {
		return nil, apperrors.Forbidden("Только врач может записать результат осмотра", nil)
	}
	doctor, err := s.doctors.GetByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.Forbidden("Профиль врача не найден", err)
	}

	exam := &model.DoctorExamination{
		Base:           model.NewBase(),
		RouteSheetID:   req.RouteSheetID,
		PatientID:      req.PatientID,
		PatientName:    req.PatientName,
		DoctorID:       doctor.ID,
		DoctorName:     doctor.FullName,
		Specialization: doctor.Specialization,
		Conclusion:     req.Conclusion,
		Complaints:     req.Complaints,
		Diagnosis:      req.Diagnosis,
		Notes:          req.Notes,
		ExamDate:       model.Today(),
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create examination: %w", err)
	}
	return exam, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.DoctorExamination, error) {
	exam, err := s.exams.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("examination", err)
	}
	return exam, nil
}

func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateExaminationRequest) (*model.DoctorExamination, error) {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor, err := s.doctors.GetByUser(ctx, actor.ID)
	if err != nil || doctor.ID != exam.DoctorID {
		return nil, apperrors.Forbidden("Редактировать осмотр может только записавший его врач", nil)
	}

	if req.Conclusion != nil {
		exam.Conclusion = *req.Conclusion
	}
	if req.Complaints != nil {
		exam.Complaints = *req.Complaints
	}
	if req.Diagnosis != nil {
		exam.Diagnosis = *req.Diagnosis
	}
	if req.Notes != nil {
		exam.Notes = *req.Notes
	}

	if err := s.exams.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to update examination: %w", err)
	}
	return exam, nil
}

func (s *Service) List(ctx context.Context, filter repository.ExaminationFilter) ([]*model.DoctorExamination, error) {
	return s.exams.List(ctx, filter)
}

// PatientHistory lists all findings recorded for a patient
func (s *Service) PatientHistory(ctx context.Context, patientID string) ([]*model.DoctorExamination, error) {
	return s.exams.List(ctx, repository.ExaminationFilter{PatientID: patientID})
}
