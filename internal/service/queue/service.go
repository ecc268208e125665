// Package queue runs the daily patient queue in front of specialist
// cabinets. Numbers restart each day; urgent entries jump ahead.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/workflow"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type Service struct {
	entries repository.QueueRepository
	sheets  repository.RouteSheetRepository
	doctors repository.DoctorRepository
}

func NewService(entries repository.QueueRepository, sheets repository.RouteSheetRepository, doctors repository.DoctorRepository) *Service {
	return &Service{entries: entries, sheets: sheets, doctors: doctors}
}

// Add puts a patient in line for one route-sheet service. A patient
// already queued for the same service today keeps the existing entry.
func (s *Service) Add(ctx context.Context, req *model.AddToQueueRequest) (*model.QueueEntry, error) {
	sheet, err := s.sheets.Get(ctx, req.RouteSheetID)
	if err != nil {
		return nil, apperrors.NotFound("route sheet", err)
	}

	var service *model.RouteSheetService
	for i := range sheet.Services {
		if sheet.Services[i].ID == req.ServiceID {
			service = &sheet.Services[i]
			break
		}
	}
	if service == nil {
		return nil, apperrors.NotFound("route sheet service", nil)
	}
	if service.Status == model.ServiceStatusCompleted {
		return nil, apperrors.BadRequest("Услуга уже выполнена", nil)
	}

	today := model.Today()
	if existing, err := s.entries.FindActive(ctx, sheet.PatientID, service.Name, today); err == nil {
		return existing, nil
	}

	number, err := s.entries.NextNumber(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate queue number: %w", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.QueuePriorityNormal
	}

	entry := &model.QueueEntry{
		Base:           model.NewBase(),
		RouteSheetID:   sheet.ID,
		PatientID:      sheet.PatientID,
		PatientName:    sheet.PatientName,
		ServiceName:    service.Name,
		Specialization: service.Specialization,
		DoctorID:       service.DoctorID,
		Cabinet:        service.Cabinet,
		QueueNumber:    number,
		Status:         model.QueueStatusWaiting,
		Priority:       priority,
		QueueDate:      today,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create queue entry: %w", err)
	}
	return entry, nil
}

// AddFromRouteSheet queues the patient for every pending service on the
// sheet in one call, typically after scanning the sheet's QR.
func (s *Service) AddFromRouteSheet(ctx context.Context, routeSheetID uuid.UUID, priority model.QueuePriority) ([]*model.QueueEntry, error) {
	sheet, err := s.sheets.Get(ctx, routeSheetID)
	if err != nil {
		return nil, apperrors.NotFound("route sheet", err)
	}

	var created []*model.QueueEntry
	for _, svc := range sheet.Services {
		if svc.Status == model.ServiceStatusCompleted {
			continue
		}
		entry, err := s.Add(ctx, &model.AddToQueueRequest{
			RouteSheetID: routeSheetID,
			ServiceID:    svc.ID,
			Priority:     priority,
		})
		if err != nil {
			return nil, err
		}
		created = append(created, entry)
	}
	if len(created) == 0 {
		return nil, apperrors.BadRequest("Все услуги по маршрутному листу уже выполнены", nil)
	}
	return created, nil
}

// Current lists today's queue, urgent entries first
func (s *Service) Current(ctx context.Context, filter repository.QueueFilter) ([]*model.QueueEntry, error) {
	return s.entries.ListForDate(ctx, model.Today(), filter)
}

// CurrentForDoctor narrows today's queue to one doctor's cabinet
func (s *Service) CurrentForDoctor(ctx context.Context, actor model.Actor) ([]*model.QueueEntry, error) {
	doctor, err := s.doctors.GetByUser(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.Forbidden("Профиль врача не найден", err)
	}
	return s.entries.ListForDate(ctx, model.Today(), repository.QueueFilter{DoctorID: &doctor.ID})
}

// Call invites the patient to the cabinet
func (s *Service) Call(ctx context.Context, id uuid.UUID) (*model.QueueEntry, error) {
	return s.transition(ctx, id, model.QueueStatusCalled)
}

// Start marks the examination as underway
func (s *Service) Start(ctx context.Context, id uuid.UUID) (*model.QueueEntry, error) {
	return s.transition(ctx, id, model.QueueStatusInProgress)
}

// Complete releases the entry from the queue
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.QueueEntry, error) {
	return s.transition(ctx, id, model.QueueStatusCompleted)
}

// Skip removes a no-show; a called patient may also return to waiting
func (s *Service) Skip(ctx context.Context, id uuid.UUID) (*model.QueueEntry, error) {
	return s.transition(ctx, id, model.QueueStatusSkipped)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to model.QueueStatus) (*model.QueueEntry, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("queue entry", err)
	}
	if err := workflow.NextQueueStatus(entry.Status, to); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	entry.Status = to
	now := time.Now()
	switch to {
	case model.QueueStatusCalled:
		entry.CalledAt = &now
	case model.QueueStatusInProgress:
		entry.StartedAt = &now
	case model.QueueStatusCompleted:
		entry.CompletedAt = &now
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update queue entry: %w", err)
	}
	return entry, nil
}
