// Package expertise implements the medical commission: the final
// fitness conclusion over a completed route sheet, health-group
// assignment and the automatic referral for groups 4-6.
package expertise

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/workflow"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

const referralOrganization = "Центр профессиональной патологии"

type Service struct {
	expertises repository.ExpertiseRepository
	sheets     repository.RouteSheetRepository
	tests      repository.MedicalTestRepository
	referrals  repository.ReferralRepository
	doctors    repository.DoctorRepository
}

func NewService(
	expertises repository.ExpertiseRepository,
	sheets repository.RouteSheetRepository,
	tests repository.MedicalTestRepository,
	referrals repository.ReferralRepository,
	doctors repository.DoctorRepository,
) *Service {
	return &Service{expertises: expertises, sheets: sheets, tests: tests, referrals: referrals, doctors: doctors}
}

// Create records the commission conclusion. The route sheet must be
// fully completed and all tests finished. The health group defaults
// from the verdict when not set explicitly; groups 4-6 issue a
// referral to the occupational-pathology center automatically.
func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateExpertiseRequest) (*model.Expertise, error) {
	if !actor.IsClinic() {
		return nil, apperrors.Forbidden("Экспертизу проводит клиника", nil)
	}

	sheet, err := s.sheets.Get(ctx, req.RouteSheetID)
	if err != nil {
		return nil, apperrors.NotFound("route sheet", err)
	}

	readiness, err := s.readiness(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if !readiness.Ready {
		return nil, apperrors.BadRequest("Пациент не прошел всех врачей или не сданы все анализы", nil)
	}

	if existing, err := s.expertises.GetByRouteSheet(ctx, req.RouteSheetID); err == nil {
		return nil, apperrors.Conflict("CONFLICT_EXPERTISE_EXISTS",
			"Экспертиза по этому маршрутному листу уже проведена",
			map[string]interface{}{"expertise_id": existing.ID})
	}

	healthGroup := req.HealthGroup
	if healthGroup == 0 {
		healthGroup = workflow.HealthGroupForVerdict(req.Verdict, req.OccupationalDisease)
	}

	expertise := &model.Expertise{
		Base:                model.NewBase(),
		RouteSheetID:        sheet.ID,
		PatientID:           sheet.PatientID,
		PatientName:         sheet.PatientName,
		IIN:                 sheet.IIN,
		Position:            sheet.Position,
		Department:          sheet.Department,
		Verdict:             req.Verdict,
		HealthGroup:         healthGroup,
		OccupationalDisease: req.OccupationalDisease,
		Recommendations:     req.Recommendations,
		CommissionDate:      model.Today(),
		ExpertName:          actor.Name,
	}
	if doctor, err := s.doctors.GetByUser(ctx, actor.ID); err == nil {
		expertise.ExpertID = &doctor.ID
		expertise.ExpertName = doctor.FullName
	}

	if workflow.NeedsReferral(healthGroup) {
		expertise.ReferralIssued = true
	}

	if err := s.expertises.Create(ctx, expertise); err != nil {
		return nil, fmt.Errorf("failed to create expertise: %w", err)
	}

	if expertise.ReferralIssued {
		referral := &model.Referral{
			Base:         model.NewBase(),
			ExpertiseID:  &expertise.ID,
			PatientID:    expertise.PatientID,
			PatientName:  expertise.PatientName,
			Organization: referralOrganization,
			Reason:       fmt.Sprintf("Группа здоровья %d по результатам медосмотра", healthGroup),
			Status:       model.ReferralStatusCreated,
		}
		if err := s.referrals.Create(ctx, referral); err != nil {
			return nil, fmt.Errorf("failed to create referral: %w", err)
		}
	}
	return expertise, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Expertise, error) {
	expertise, err := s.expertises.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("expertise", err)
	}
	return expertise, nil
}

func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateExpertiseRequest) (*model.Expertise, error) {
	expertise, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Verdict != nil {
		expertise.Verdict = *req.Verdict
	}
	if req.OccupationalDisease != nil {
		expertise.OccupationalDisease = *req.OccupationalDisease
	}
	if req.HealthGroup != nil {
		expertise.HealthGroup = *req.HealthGroup
	} else if req.Verdict != nil || req.OccupationalDisease != nil {
		expertise.HealthGroup = workflow.HealthGroupForVerdict(expertise.Verdict, expertise.OccupationalDisease)
	}
	if req.Recommendations != nil {
		expertise.Recommendations = *req.Recommendations
	}

	if err := s.expertises.Update(ctx, expertise); err != nil {
		return nil, fmt.Errorf("failed to update expertise: %w", err)
	}
	return expertise, nil
}

func (s *Service) List(ctx context.Context, filter repository.ExpertiseFilter) ([]*model.Expertise, error) {
	return s.expertises.List(ctx, filter)
}

// CheckReadiness reports whether a route sheet can go to the commission
// and which services or tests still block it.
func (s *Service) CheckReadiness(ctx context.Context, routeSheetID uuid.UUID) (*model.ReadinessReport, error) {
	sheet, err := s.sheets.Get(ctx, routeSheetID)
	if err != nil {
		return nil, apperrors.NotFound("route sheet", err)
	}
	return s.readiness(ctx, sheet)
}

func (s *Service) readiness(ctx context.Context, sheet *model.RouteSheet) (*model.ReadinessReport, error) {
	report := &model.ReadinessReport{}
	for _, svc := range sheet.Services {
		if svc.Status != model.ServiceStatusCompleted {
			report.PendingServices = append(report.PendingServices, svc.Name)
		}
	}

	tests, err := s.tests.ListByRouteSheet(ctx, sheet.ID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	for _, test := range tests {
		if test.Status != model.TestStatusCompleted {
			report.PendingTests = append(report.PendingTests, test.Name)
		}
	}

	report.Ready = len(report.PendingServices) == 0 && len(report.PendingTests) == 0 && len(sheet.Services) > 0
	return report, nil
}

// FinalActStats aggregates commission outcomes over a period
func (s *Service) FinalActStats(ctx context.Context, filter repository.ExpertiseFilter) (*model.FinalActStats, error) {
	expertises, err := s.expertises.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expertises: %w", err)
	}

	stats := &model.FinalActStats{TotalExamined: len(expertises)}
	byDept := make(map[string]*model.DepartmentStats)
	var deptOrder []string
	for _, e := range expertises {
		switch e.Verdict {
		case model.VerdictFit:
			stats.Healthy++
		case model.VerdictTemporaryUnfit:
			stats.TemporaryUnfit++
		case model.VerdictPermanentUnfit:
			stats.PermanentUnfit++
		}
		if e.OccupationalDisease {
			stats.OccupationalDiseases++
		}

		dept, ok := byDept[e.Department]
		if !ok {
			dept = &model.DepartmentStats{Department: e.Department}
			byDept[e.Department] = dept
			deptOrder = append(deptOrder, e.Department)
		}
		dept.Examined++
		if e.Verdict == model.VerdictFit {
			dept.Healthy++
		} else {
			dept.Unfit++
		}
	}
	for _, name := range deptOrder {
		stats.ByDepartment = append(stats.ByDepartment, *byDept[name])
	}
	return stats, nil
}

// HealthPlanItems lists patients needing health-improvement measures:
// everyone whose verdict is not a clean pass.
func (s *Service) HealthPlanItems(ctx context.Context, filter repository.ExpertiseFilter) ([]model.HealthPlanItem, error) {
	expertises, err := s.expertises.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expertises: %w", err)
	}
	var items []model.HealthPlanItem
	for _, e := range expertises {
		if e.Verdict == model.VerdictFit && !e.OccupationalDisease {
			continue
		}
		items = append(items, model.HealthPlanItem{
			PatientName:     e.PatientName,
			Department:      e.Department,
			Position:        e.Position,
			HealthGroup:     e.HealthGroup,
			Verdict:         e.Verdict,
			Recommendations: e.Recommendations,
		})
	}
	return items, nil
}
