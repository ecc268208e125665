package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type fakeQueueRepo struct {
	entries map[uuid.UUID]*model.QueueEntry
	next    int
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: make(map[uuid.UUID]*model.QueueEntry)}
}

func (r *fakeQueueRepo) Create(_ context.Context, e *model.QueueEntry) error {
	clone := *e
	r.entries[e.ID] = &clone
	return nil
}

func (r *fakeQueueRepo) Get(_ context.Context, id uuid.UUID) (*model.QueueEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	clone := *e
	return &clone, nil
}

func (r *fakeQueueRepo) Update(_ context.Context, e *model.QueueEntry) error {
	if _, ok := r.entries[e.ID]; !ok {
		return errors.New("no rows")
	}
	clone := *e
	r.entries[e.ID] = &clone
	return nil
}

func (r *fakeQueueRepo) ListForDate(_ context.Context, date model.Date, filter repository.QueueFilter) ([]*model.QueueEntry, error) {
	var out []*model.QueueEntry
	for _, e := range r.entries {
		if !e.QueueDate.Equal(date.Time) {
			continue
		}
		if filter.DoctorID != nil && (e.DoctorID == nil || *e.DoctorID != *filter.DoctorID) {
			continue
		}
		if filter.Specialization != "" && e.Specialization != filter.Specialization {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeQueueRepo) FindActive(_ context.Context, patientID, serviceName string, date model.Date) (*model.QueueEntry, error) {
	for _, e := range r.entries {
		if e.PatientID == patientID && e.ServiceName == serviceName && e.QueueDate.Equal(date.Time) && e.Active() {
			clone := *e
			return &clone, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *fakeQueueRepo) NextNumber(_ context.Context, _ model.Date) (int, error) {
	r.next++
	return r.next, nil
}

type stubSheetRepo struct {
	repository.RouteSheetRepository
	sheet *model.RouteSheet
}

func (r *stubSheetRepo) Get(_ context.Context, id uuid.UUID) (*model.RouteSheet, error) {
	if r.sheet == nil || r.sheet.ID != id {
		return nil, errors.New("no rows")
	}
	return r.sheet, nil
}

type stubDoctorRepo struct {
	repository.DoctorRepository
	doctor *model.Doctor
}

func (r *stubDoctorRepo) GetByUser(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	if r.doctor == nil || r.doctor.UserID == nil || *r.doctor.UserID != userID {
		return nil, errors.New("no rows")
	}
	return r.doctor, nil
}

func testSheet() *model.RouteSheet {
	return &model.RouteSheet{
		Base:        model.NewBase(),
		ClinicID:    uuid.New(),
		PatientID:   "850315300123",
		PatientName: "Иванов Иван Иванович",
		VisitDate:   model.Today(),
		Services: model.ServiceList{
			{ID: "svc-1", Name: "Осмотр: Терапевт", Specialization: "Терапевт", Time: "09:00", Status: model.ServiceStatusPending},
			{ID: "svc-2", Name: "Осмотр: Окулист", Specialization: "Окулист", Time: "09:15", Status: model.ServiceStatusPending},
		},
	}
}

func newTestService(sheet *model.RouteSheet, doctor *model.Doctor) (*Service, *fakeQueueRepo) {
	entries := newFakeQueueRepo()
	svc := NewService(entries, &stubSheetRepo{sheet: sheet}, &stubDoctorRepo{doctor: doctor})
	return svc, entries
}

func TestAddAssignsSequentialNumbers(t *testing.T) {
	sheet := testSheet()
	svc, _ := newTestService(sheet, nil)

	first, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.QueueNumber)
	assert.Equal(t, model.QueueStatusWaiting, first.Status)
	assert.Equal(t, model.QueuePriorityNormal, first.Priority)
	assert.Equal(t, "Осмотр: Терапевт", first.ServiceName)

	second, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.QueueNumber)
}

func TestAddDeduplicatesActiveEntry(t *testing.T) {
	sheet := testSheet()
	svc, entries := newTestService(sheet, nil)

	first, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	require.NoError(t, err)

	again, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, entries.entries, 1)

	// after completion the patient may queue for the service anew
	_, err = svc.Call(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), first.ID)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), first.ID)
	require.NoError(t, err)

	fresh, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)
}

func TestAddRejectsCompletedService(t *testing.T) {
	sheet := testSheet()
	sheet.Services[0].Status = model.ServiceStatusCompleted
	svc, _ := newTestService(sheet, nil)

	_, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Equal(t, "Услуга уже выполнена", appErr.Message)
}

func TestAddFromRouteSheetQueuesPendingOnly(t *testing.T) {
	sheet := testSheet()
	sheet.Services[1].Status = model.ServiceStatusCompleted
	svc, _ := newTestService(sheet, nil)

	created, err := svc.AddFromRouteSheet(context.Background(), sheet.ID, model.QueuePriorityUrgent)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Осмотр: Терапевт", created[0].ServiceName)
	assert.Equal(t, model.QueuePriorityUrgent, created[0].Priority)
}

func TestAddFromRouteSheetAllCompleted(t *testing.T) {
	sheet := testSheet()
	for i := range sheet.Services {
		sheet.Services[i].Status = model.ServiceStatusCompleted
	}
	svc, _ := newTestService(sheet, nil)

	_, err := svc.AddFromRouteSheet(context.Background(), sheet.ID, "")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Equal(t, "Все услуги по маршрутному листу уже выполнены", appErr.Message)
}

func TestTransitionChain(t *testing.T) {
	sheet := testSheet()
	svc, _ := newTestService(sheet, nil)

	entry, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	require.NoError(t, err)

	// starting before calling is not allowed
	_, err = svc.Start(context.Background(), entry.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)

	called, err := svc.Call(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusCalled, called.Status)
	assert.NotNil(t, called.CalledAt)

	started, err := svc.Start(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)

	// an examination underway cannot be skipped
	_, err = svc.Skip(context.Background(), entry.ID)
	require.Error(t, err)

	completed, err := svc.Complete(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	// terminal state
	_, err = svc.Call(context.Background(), entry.ID)
	require.Error(t, err)
}

func TestSkipNoShow(t *testing.T) {
	sheet := testSheet()
	svc, _ := newTestService(sheet, nil)

	entry, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	require.NoError(t, err)

	_, err = svc.Call(context.Background(), entry.ID)
	require.NoError(t, err)
	skipped, err := svc.Skip(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueueStatusSkipped, skipped.Status)
}

func TestCurrentForDoctor(t *testing.T) {
	sheet := testSheet()
	doctorUser := uuid.New()
	doctorID := uuid.New()
	doctor := &model.Doctor{
		Base:           model.Base{ID: doctorID},
		UserID:         &doctorUser,
		FullName:       "Петров П.П.",
		Specialization: "Терапевт",
	}
	sheet.Services[0].DoctorID = &doctorID
	svc, _ := newTestService(sheet, doctor)

	_, err := svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-1"})
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), &model.AddToQueueRequest{RouteSheetID: sheet.ID, ServiceID: "svc-2"})
	require.NoError(t, err)

	mine, err := svc.CurrentForDoctor(context.Background(), model.Actor{ID: doctorUser, Role: model.RoleClinic, ClinicRole: model.ClinicRoleDoctor})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Осмотр: Терапевт", mine[0].ServiceName)

	_, err = svc.CurrentForDoctor(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleClinic, ClinicRole: model.ClinicRoleDoctor})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}
