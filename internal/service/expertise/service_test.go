package expertise

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

type fakeExpertiseRepo struct {
	expertises map[uuid.UUID]*model.Expertise
}

func newFakeExpertiseRepo() *fakeExpertiseRepo {
	return &fakeExpertiseRepo{expertises: make(map[uuid.UUID]*model.Expertise)}
}

func (r *fakeExpertiseRepo) Create(_ context.Context, e *model.Expertise) error {
	clone := *e
	r.expertises[e.ID] = &clone
	return nil
}

func (r *fakeExpertiseRepo) Get(_ context.Context, id uuid.UUID) (*model.Expertise, error) {
	e, ok := r.expertises[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	clone := *e
	return &clone, nil
}

func (r *fakeExpertiseRepo) GetByRouteSheet(_ context.Context, routeSheetID uuid.UUID) (*model.Expertise, error) {
	for _, e := range r.expertises {
		if e.RouteSheetID == routeSheetID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *fakeExpertiseRepo) Update(_ context.Context, e *model.Expertise) error {
	if _, ok := r.expertises[e.ID]; !ok {
		return errors.New("no rows")
	}
	clone := *e
	r.expertises[e.ID] = &clone
	return nil
}

func (r *fakeExpertiseRepo) List(_ context.Context, filter repository.ExpertiseFilter) ([]*model.Expertise, error) {
	var out []*model.Expertise
	for _, e := range r.expertises {
		if filter.PatientID != "" && e.PatientID != filter.PatientID {
			continue
		}
		if filter.Department != "" && e.Department != filter.Department {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
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

type stubTestRepo struct {
	repository.MedicalTestRepository
	tests []*model.MedicalTest
}

func (r *stubTestRepo) ListByRouteSheet(_ context.Context, routeSheetID uuid.UUID, kind model.TestKind) ([]*model.MedicalTest, error) {
	var out []*model.MedicalTest
	for _, t := range r.tests {
		if t.RouteSheetID != routeSheetID {
			continue
		}
		if kind != "" && t.Kind != kind {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type recordingReferralRepo struct {
	repository.ReferralRepository
	created []*model.Referral
}

func (r *recordingReferralRepo) Create(_ context.Context, ref *model.Referral) error {
	r.created = append(r.created, ref)
	return nil
}

type stubDoctorRepo struct {
	repository.DoctorRepository
}

func (r *stubDoctorRepo) GetByUser(_ context.Context, _ uuid.UUID) (*model.Doctor, error) {
	return nil, errors.New("no rows")
}

func completedSheet() *model.RouteSheet {
	return &model.RouteSheet{
		Base:        model.NewBase(),
		PatientID:   "850315300123",
		PatientName: "Иванов Иван Иванович",
		Position:    "Сварщик",
		Department:  "Цех А",
		VisitDate:   model.Today(),
		Services: model.ServiceList{
			{ID: "svc-1", Name: "Осмотр: Терапевт", Specialization: "Терапевт", Status: model.ServiceStatusCompleted},
			{ID: "svc-2", Name: "Осмотр: ЛОР", Specialization: "ЛОР", Status: model.ServiceStatusCompleted},
		},
	}
}

type fixture struct {
	svc        *Service
	expertises *fakeExpertiseRepo
	tests      *stubTestRepo
	referrals  *recordingReferralRepo
	sheet      *model.RouteSheet
	clinic     model.Actor
}

func newFixture(sheet *model.RouteSheet, tests []*model.MedicalTest) *fixture {
	expertises := newFakeExpertiseRepo()
	testRepo := &stubTestRepo{tests: tests}
	referrals := &recordingReferralRepo{}
	svc := NewService(expertises, &stubSheetRepo{sheet: sheet}, testRepo, referrals, &stubDoctorRepo{})
	return &fixture{
		svc:        svc,
		expertises: expertises,
		tests:      testRepo,
		referrals:  referrals,
		sheet:      sheet,
		clinic:     model.Actor{ID: uuid.New(), Name: "Профпатолог Сидоров", Role: model.RoleClinic, ClinicRole: model.ClinicRoleProfpathologist},
	}
}

func TestCreateExpertise(t *testing.T) {
	f := newFixture(completedSheet(), nil)

	expertise, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
		RouteSheetID: f.sheet.ID,
		Verdict:      model.VerdictFit,
	})
	require.NoError(t, err)

	assert.Equal(t, "850315300123", expertise.PatientID)
	assert.Equal(t, model.VerdictFit, expertise.Verdict)
	// group 1 derived from a clean verdict
	assert.Equal(t, 1, expertise.HealthGroup)
	assert.False(t, expertise.ReferralIssued)
	assert.Equal(t, "Профпатолог Сидоров", expertise.ExpertName)
	assert.Empty(t, f.referrals.created)
}

func TestCreateExpertiseOnlyClinic(t *testing.T) {
	f := newFixture(completedSheet(), nil)

	_, err := f.svc.Create(context.Background(), model.Actor{ID: uuid.New(), Role: model.RoleEmployer}, &model.CreateExpertiseRequest{
		RouteSheetID: f.sheet.ID,
		Verdict:      model.VerdictFit,
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestCreateExpertiseBlockedByPendingWork(t *testing.T) {
	t.Run("pending service", func(t *testing.T) {
		sheet := completedSheet()
		sheet.Services[1].Status = model.ServiceStatusPending
		f := newFixture(sheet, nil)

		_, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
			RouteSheetID: sheet.ID,
			Verdict:      model.VerdictFit,
		})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
		assert.Contains(t, appErr.Message, "не прошел всех врачей")
	})

	t.Run("pending test", func(t *testing.T) {
		sheet := completedSheet()
		f := newFixture(sheet, []*model.MedicalTest{{
			Base:         model.NewBase(),
			RouteSheetID: sheet.ID,
			Kind:         model.TestKindLaboratory,
			Name:         "Общий анализ крови",
			Status:       model.TestStatusPending,
		}})

		_, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
			RouteSheetID: sheet.ID,
			Verdict:      model.VerdictFit,
		})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	})
}

func TestCreateExpertiseDuplicate(t *testing.T) {
	f := newFixture(completedSheet(), nil)

	first, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
		RouteSheetID: f.sheet.ID,
		Verdict:      model.VerdictFit,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
		RouteSheetID: f.sheet.ID,
		Verdict:      model.VerdictFit,
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Equal(t, "CONFLICT_EXPERTISE_EXISTS", appErr.Kind)
	assert.Equal(t, first.ID, appErr.Details["expertise_id"])
}

func TestCreateExpertiseIssuesReferral(t *testing.T) {
	f := newFixture(completedSheet(), nil)

	expertise, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
		RouteSheetID: f.sheet.ID,
		Verdict:      model.VerdictPermanentUnfit,
	})
	require.NoError(t, err)

	// permanent unfitness defaults to group 4 and triggers a referral
	assert.Equal(t, 4, expertise.HealthGroup)
	assert.True(t, expertise.ReferralIssued)
	require.Len(t, f.referrals.created, 1)
	referral := f.referrals.created[0]
	assert.Equal(t, "Центр профессиональной патологии", referral.Organization)
	assert.Equal(t, model.ReferralStatusCreated, referral.Status)
	assert.Contains(t, referral.Reason, "Группа здоровья 4")
	require.NotNil(t, referral.ExpertiseID)
	assert.Equal(t, expertise.ID, *referral.ExpertiseID)
}

func TestCreateExpertiseOccupationalDisease(t *testing.T) {
	f := newFixture(completedSheet(), nil)

	expertise, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
		RouteSheetID:        f.sheet.ID,
		Verdict:             model.VerdictTemporaryUnfit,
		OccupationalDisease: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, expertise.HealthGroup)
	assert.True(t, expertise.ReferralIssued)
	require.Len(t, f.referrals.created, 1)
}

func TestCreateExpertiseExplicitGroupWins(t *testing.T) {
	f := newFixture(completedSheet(), nil)

	expertise, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
		RouteSheetID: f.sheet.ID,
		Verdict:      model.VerdictTemporaryUnfit,
		HealthGroup:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, expertise.HealthGroup)
	assert.False(t, expertise.ReferralIssued)
}

func TestUpdateRederivesHealthGroup(t *testing.T) {
	f := newFixture(completedSheet(), nil)
	expertise, err := f.svc.Create(context.Background(), f.clinic, &model.CreateExpertiseRequest{
		RouteSheetID: f.sheet.ID,
		Verdict:      model.VerdictFit,
	})
	require.NoError(t, err)

	verdict := model.VerdictTemporaryUnfit
	updated, err := f.svc.Update(context.Background(), f.clinic, expertise.ID, &model.UpdateExpertiseRequest{
		Verdict: &verdict,
	})
	require.NoError(t, err)
	assert.Equal(t, model.VerdictTemporaryUnfit, updated.Verdict)
	assert.Equal(t, 3, updated.HealthGroup)

	// an explicit group is never overridden
	group := 6
	updated, err = f.svc.Update(context.Background(), f.clinic, expertise.ID, &model.UpdateExpertiseRequest{
		HealthGroup: &group,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.HealthGroup)
}

func TestCheckReadiness(t *testing.T) {
	sheet := completedSheet()
	sheet.Services[1].Status = model.ServiceStatusPending
	f := newFixture(sheet, []*model.MedicalTest{{
		Base:         model.NewBase(),
		RouteSheetID: sheet.ID,
		Kind:         model.TestKindFunctional,
		Name:         "ЭКГ",
		Status:       model.TestStatusPending,
	}})

	report, err := f.svc.CheckReadiness(context.Background(), sheet.ID)
	require.NoError(t, err)
	assert.False(t, report.Ready)
	assert.Equal(t, []string{"Осмотр: ЛОР"}, report.PendingServices)
	assert.Equal(t, []string{"ЭКГ"}, report.PendingTests)
}

func TestFinalActStats(t *testing.T) {
	f := newFixture(completedSheet(), nil)
	seed := []*model.Expertise{
		{Base: model.NewBase(), RouteSheetID: uuid.New(), PatientID: "p1", Department: "Цех А", Verdict: model.VerdictFit},
		{Base: model.NewBase(), RouteSheetID: uuid.New(), PatientID: "p2", Department: "Цех А", Verdict: model.VerdictTemporaryUnfit, HealthGroup: 3},
		{Base: model.NewBase(), RouteSheetID: uuid.New(), PatientID: "p3", Department: "Цех Б", Verdict: model.VerdictPermanentUnfit, HealthGroup: 4, OccupationalDisease: true},
	}
	for _, e := range seed {
		require.NoError(t, f.expertises.Create(context.Background(), e))
	}

	stats, err := f.svc.FinalActStats(context.Background(), repository.ExpertiseFilter{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalExamined)
	assert.Equal(t, 1, stats.Healthy)
	assert.Equal(t, 1, stats.TemporaryUnfit)
	assert.Equal(t, 1, stats.PermanentUnfit)
	assert.Equal(t, 1, stats.OccupationalDiseases)

	require.Len(t, stats.ByDepartment, 2)
	byName := make(map[string]model.DepartmentStats)
	for _, d := range stats.ByDepartment {
		byName[d.Department] = d
	}
	assert.Equal(t, model.DepartmentStats{Department: "Цех А", Examined: 2, Healthy: 1, Unfit: 1}, byName["Цех А"])
	assert.Equal(t, model.DepartmentStats{Department: "Цех Б", Examined: 1, Unfit: 1}, byName["Цех Б"])
}

func TestHealthPlanItems(t *testing.T) {
	f := newFixture(completedSheet(), nil)
	seed := []*model.Expertise{
		{Base: model.NewBase(), RouteSheetID: uuid.New(), PatientID: "p1", PatientName: "Здоровый", Verdict: model.VerdictFit, HealthGroup: 1},
		{Base: model.NewBase(), RouteSheetID: uuid.New(), PatientID: "p2", PatientName: "Наблюдаемый", Verdict: model.VerdictTemporaryUnfit, HealthGroup: 3, Recommendations: "Санаторное лечение"},
	}
	for _, e := range seed {
		require.NoError(t, f.expertises.Create(context.Background(), e))
	}

	items, err := f.svc.HealthPlanItems(context.Background(), repository.ExpertiseFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Наблюдаемый", items[0].PatientName)
	assert.Equal(t, 3, items[0].HealthGroup)
	assert.Equal(t, "Санаторное лечение", items[0].Recommendations)
}
