package calendarplan

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

type fakePlanRepo struct {
	plans map[uuid.UUID]*model.CalendarPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uuid.UUID]*model.CalendarPlan)}
}

func (r *fakePlanRepo) Create(_ context.Context, p *model.CalendarPlan) error {
	clone := *p
	r.plans[p.ID] = &clone
	return nil
}

func (r *fakePlanRepo) Get(_ context.Context, id uuid.UUID) (*model.CalendarPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	clone := *p
	return &clone, nil
}

func (r *fakePlanRepo) Update(_ context.Context, p *model.CalendarPlan) error {
	if _, ok := r.plans[p.ID]; !ok {
		return errors.New("no rows")
	}
	clone := *p
	r.plans[p.ID] = &clone
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) List(_ context.Context, filter repository.CalendarPlanFilter) ([]*model.CalendarPlan, error) {
	var out []*model.CalendarPlan
	for _, p := range r.plans {
		if filter.ContractID != nil && p.ContractID != *filter.ContractID {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

// stubContractRepo serves only Get; the service never touches the rest.
type stubContractRepo struct {
	repository.ContractRepository
	contract *model.Contract
}

func (r *stubContractRepo) Get(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	if r.contract == nil || r.contract.ID != id {
		return nil, errors.New("no rows")
	}
	return r.contract, nil
}

// stubContingentRepo answers CountForContract with a fixed number.
type stubContingentRepo struct {
	repository.ContingentRepository
	count int
}

func (r *stubContingentRepo) CountForContract(_ context.Context, _ uuid.UUID) (int, error) {
	return r.count, nil
}

func clinicActor() model.Actor {
	return model.Actor{ID: uuid.New(), Role: model.RoleClinic, ClinicRole: model.ClinicRoleManager}
}

func employerActor() model.Actor {
	return model.Actor{ID: uuid.New(), Role: model.RoleEmployer}
}

func newTestService(contingentCount int) (*Service, *fakePlanRepo, *model.Contract) {
	contract := &model.Contract{
		Base:         model.NewBase(),
		Number:       "7-2026",
		Status:       model.ContractStatusApproved,
		ClinicName:   "Профмед",
		EmployerName: "ТОО Пример",
	}
	plans := newFakePlanRepo()
	svc := NewService(
		plans,
		&stubContractRepo{contract: contract},
		&stubContingentRepo{count: contingentCount},
		nil,
	)
	return svc, plans, contract
}

func departments() []model.DepartmentPlan {
	return []model.DepartmentPlan{
		{
			Department:  "Цех А",
			StartDate:   model.NewDate(2026, 1, 10),
			EndDate:     model.NewDate(2026, 1, 15),
			EmployeeIDs: []string{"e1", "e2"},
		},
		{
			Department:  "Цех Б",
			StartDate:   model.NewDate(2026, 1, 5),
			EndDate:     model.NewDate(2026, 1, 20),
			EmployeeIDs: []string{"e2", "e3"},
		},
	}
}

func createDraft(t *testing.T, svc *Service, contractID uuid.UUID) *model.CalendarPlan {
	t.Helper()
	plan, err := svc.Create(context.Background(), clinicActor(), &model.CreateCalendarPlanRequest{
		ContractID:  contractID,
		Departments: departments(),
	})
	require.NoError(t, err)
	return plan
}

func TestCreateRequiresContingent(t *testing.T) {
	svc, _, contract := newTestService(0)

	_, err := svc.Create(context.Background(), clinicActor(), &model.CreateCalendarPlanRequest{
		ContractID:  contract.ID,
		Departments: departments(),
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Contains(t, appErr.Message, "Сначала загрузите контингент")
}

func TestCreateAggregatesFromDepartments(t *testing.T) {
	svc, _, contract := newTestService(3)

	plan := createDraft(t, svc, contract.ID)

	assert.Equal(t, model.CalendarPlanStatusDraft, plan.Status)
	// the widest window across departments
	assert.Equal(t, model.NewDate(2026, 1, 5), plan.StartDate)
	assert.Equal(t, model.NewDate(2026, 1, 20), plan.EndDate)
	// e2 appears in both departments but only once in the union
	assert.ElementsMatch(t, []string{"e1", "e2", "e3"}, []string(plan.EmployeeIDs))
	assert.Equal(t, "Профмед", plan.ClinicName)
	assert.Equal(t, "ТОО Пример", plan.EmployerName)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	svc, _, contract := newTestService(3)

	_, err := svc.Create(context.Background(), clinicActor(), &model.CreateCalendarPlanRequest{
		ContractID: contract.ID,
		Departments: []model.DepartmentPlan{{
			Department: "Цех А",
			StartDate:  model.NewDate(2026, 1, 15),
			EndDate:    model.NewDate(2026, 1, 10),
		}},
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Contains(t, appErr.Message, "Цех А")
}

func TestCreateRejectsMissingDates(t *testing.T) {
	svc, _, contract := newTestService(3)

	_, err := svc.Create(context.Background(), clinicActor(), &model.CreateCalendarPlanRequest{
		ContractID: contract.ID,
		Departments: []model.DepartmentPlan{{
			Department: "Цех А",
			StartDate:  model.NewDate(2026, 1, 10),
		}},
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestApprovalFlow(t *testing.T) {
	svc, _, contract := newTestService(3)
	clinic := clinicActor()
	employer := employerActor()
	plan := createDraft(t, svc, contract.ID)

	submitted, err := svc.Submit(context.Background(), clinic, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CalendarPlanStatusPendingClinic, submitted.Status)

	reviewed, err := svc.Approve(context.Background(), clinic, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CalendarPlanStatusPendingEmployer, reviewed.Status)

	approved, err := svc.Approve(context.Background(), employer, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CalendarPlanStatusApproved, approved.Status)

	filed, err := svc.SendToSES(context.Background(), clinic, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CalendarPlanStatusSentToSES, filed.Status)
}

func TestEmployerCannotApproveBeforeClinicReview(t *testing.T) {
	svc, _, contract := newTestService(3)
	plan := createDraft(t, svc, contract.ID)

	_, err := svc.Submit(context.Background(), clinicActor(), plan.ID)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), employerActor(), plan.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestRejectRequiresEmployerAndReason(t *testing.T) {
	svc, _, contract := newTestService(3)
	clinic := clinicActor()
	employer := employerActor()
	plan := createDraft(t, svc, contract.ID)

	_, err := svc.Submit(context.Background(), clinic, plan.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), clinic, plan.ID)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), clinic, plan.ID, "причина")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)

	_, err = svc.Reject(context.Background(), employer, plan.ID, "  ")
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)

	rejected, err := svc.Reject(context.Background(), employer, plan.ID, "Не те даты")
	require.NoError(t, err)
	assert.Equal(t, model.CalendarPlanStatusRejected, rejected.Status)
	assert.Equal(t, "Не те даты", rejected.RejectionReason)
}

func TestResubmitAfterRejectionClearsReason(t *testing.T) {
	svc, _, contract := newTestService(3)
	clinic := clinicActor()
	employer := employerActor()
	plan := createDraft(t, svc, contract.ID)

	_, err := svc.Submit(context.Background(), clinic, plan.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), clinic, plan.ID)
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), employer, plan.ID, "Не те даты")
	require.NoError(t, err)

	// a rejected plan is editable again
	newReps := "Иванова А.А."
	updated, err := svc.Update(context.Background(), clinic, plan.ID, &model.UpdateCalendarPlanRequest{
		ClinicRepresentative: &newReps,
	})
	require.NoError(t, err)
	assert.Equal(t, newReps, updated.ClinicRepresentative)

	resubmitted, err := svc.Submit(context.Background(), clinic, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CalendarPlanStatusPendingClinic, resubmitted.Status)
	assert.Empty(t, resubmitted.RejectionReason)
}

func TestUpdateRecomputesAggregates(t *testing.T) {
	svc, _, contract := newTestService(3)
	plan := createDraft(t, svc, contract.ID)

	narrower := []model.DepartmentPlan{{
		Department:  "Цех А",
		StartDate:   model.NewDate(2026, 2, 1),
		EndDate:     model.NewDate(2026, 2, 3),
		EmployeeIDs: []string{"e1"},
	}}
	updated, err := svc.Update(context.Background(), clinicActor(), plan.ID, &model.UpdateCalendarPlanRequest{
		Departments: &narrower,
	})
	require.NoError(t, err)

	assert.Equal(t, model.NewDate(2026, 2, 1), updated.StartDate)
	assert.Equal(t, model.NewDate(2026, 2, 3), updated.EndDate)
	assert.Equal(t, []string{"e1"}, []string(updated.EmployeeIDs))
}

func TestUpdateLockedAfterSubmit(t *testing.T) {
	svc, _, contract := newTestService(3)
	clinic := clinicActor()
	plan := createDraft(t, svc, contract.ID)

	_, err := svc.Submit(context.Background(), clinic, plan.ID)
	require.NoError(t, err)

	factors := []string{"шум"}
	_, err = svc.Update(context.Background(), clinic, plan.ID, &model.UpdateCalendarPlanRequest{
		HarmfulFactors: &factors,
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)

	err = svc.Delete(context.Background(), clinic, plan.ID)
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}
