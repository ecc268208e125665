// Package routesheet issues and maintains patient route sheets: the
// ordered list of specialist visits generated from the worker's
// position and harmful factors under an active calendar plan.
package routesheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/pdf"
	"github.com/profmed/crm-api/internal/qr"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/internal/workflow"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

const (
	firstSlotHour = 9
	slotMinutes   = 15
)

type Service struct {
	sheets    repository.RouteSheetRepository
	plans     repository.CalendarPlanRepository
	employees repository.ContingentRepository
	doctors   repository.DoctorRepository
	tests     repository.MedicalTestRepository

	// doctor-by-specialization lookups repeat for every service of
	// every sheet issued that day; the directory changes rarely.
	doctorCache *gocache.Cache
}

func NewService(
	sheets repository.RouteSheetRepository,
	plans repository.CalendarPlanRepository,
	employees repository.ContingentRepository,
	doctors repository.DoctorRepository,
	tests repository.MedicalTestRepository,
) *Service {
	return &Service{
		sheets:      sheets,
		plans:       plans,
		employees:   employees,
		doctors:     doctors,
		tests:       tests,
		doctorCache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Generate issues a route sheet for the visit date. The employee is
// resolved by IIN, phone or full name; the visit must fall inside an
// active calendar plan that includes the employee. Repeated calls for
// the same patient and date return the already issued sheet.
func (s *Service) Generate(ctx context.Context, actor model.Actor, req *model.GenerateRouteSheetRequest) (*model.RouteSheet, error) {
	employee, err := s.findEmployee(ctx, req)
	if err != nil {
		return nil, err
	}

	visit := req.VisitDate
	if visit.IsZero() {
		visit = model.Today()
	}

	patientID := employee.PatientID()
	if existing, err := s.sheets.GetByPatientAndDate(ctx, patientID, visit); err == nil {
		return existing, nil
	}

	plan, err := s.coveringPlan(ctx, employee, visit)
	if err != nil {
		return nil, err
	}

	sheet := &model.RouteSheet{
		Base:           model.NewBase(),
		ClinicID:       actor.ID,
		CalendarPlanID: plan.ID,
		PatientID:      patientID,
		PatientName:    employee.FullName,
		IIN:            employee.IIN,
		Position:       employee.Position,
		Department:     employee.Department,
		VisitDate:      visit,
		Services:       s.buildServices(ctx, actor.ID, employee),
	}

	if err := s.sheets.Create(ctx, sheet); err != nil {
		return nil, fmt.Errorf("failed to create route sheet: %w", err)
	}

	if err := s.createTests(ctx, sheet, employee); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.RouteSheet, error) {
	sheet, err := s.sheets.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("route sheet", err)
	}
	return sheet, nil
}

func (s *Service) List(ctx context.Context, actor model.Actor, visitDate *model.Date) ([]*model.RouteSheet, error) {
	filter := repository.RouteSheetFilter{VisitDate: visitDate}
	if actor.IsClinic() {
		filter.ClinicID = &actor.ID
	}
	return s.sheets.List(ctx, filter)
}

// UpdateServiceStatus toggles one service on the sheet. Only a doctor
// whose specialization matches the service may do it; the completing
// doctor's name is recorded on the service.
func (s *Service) UpdateServiceStatus(ctx context.Context, actor model.Actor, sheetID uuid.UUID, serviceID string, status model.ServiceStatus) (*model.RouteSheet, error) {
	sheet, err := s.Get(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, svc := range sheet.Services {
		if svc.ID == serviceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperrors.NotFound("route sheet service", nil)
	}

	var specialization string
	if doctor, err := s.doctors.GetByUser(ctx, actor.ID); err == nil {
		specialization = doctor.Specialization
	}

	if err := workflow.CanToggleService(actor, specialization, sheet.Services[idx]); err != nil {
		return nil, apperrors.Forbidden(err.Error(), err)
	}

	sheet.Services[idx].Status = status
	if status == model.ServiceStatusCompleted {
		sheet.Services[idx].CompletedBy = actor.Name
	} else {
		sheet.Services[idx].CompletedBy = ""
	}

	if err := s.sheets.Update(ctx, sheet); err != nil {
		return nil, fmt.Errorf("failed to update route sheet: %w", err)
	}
	return sheet, nil
}

// QRCode renders the sheet's identification QR as PNG
func (s *Service) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sheet, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return qr.EncodePNG(model.RouteSheetQRPayload{
		RouteSheetID: sheet.ID.String(),
		PatientID:    sheet.PatientID,
		PatientName:  sheet.PatientName,
	})
}

// PDF renders the printable sheet handed to the patient
func (s *Service) PDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sheet, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return pdf.BuildRouteSheet(sheet)
}

func (s *Service) findEmployee(ctx context.Context, req *model.GenerateRouteSheetRequest) (*model.ContingentEmployee, error) {
	if req.IIN != "" {
		if employee, err := s.employees.FindByIIN(ctx, req.IIN); err == nil {
			return employee, nil
		}
		return nil, apperrors.NotFound("Сотрудник с таким ИИН не найден в контингенте", nil)
	}
	if req.Phone != "" {
		if employee, err := s.employees.FindByPhone(ctx, req.Phone); err == nil {
			return employee, nil
		}
		return nil, apperrors.NotFound("Сотрудник с таким телефоном не найден в контингенте", nil)
	}
	if req.FullName != "" {
		matches, err := s.employees.SearchByName(ctx, req.FullName)
		if err != nil {
			return nil, fmt.Errorf("failed to search contingent: %w", err)
		}
		switch len(matches) {
		case 0:
			return nil, apperrors.NotFound("Сотрудник не найден в контингенте", nil)
		case 1:
			return matches[0], nil
		default:
			return nil, apperrors.BadRequest("Найдено несколько сотрудников, уточните ИИН или телефон", nil)
		}
	}
	return nil, apperrors.BadRequest("Укажите ИИН, телефон или ФИО сотрудника", nil)
}

func (s *Service) coveringPlan(ctx context.Context, employee *model.ContingentEmployee, visit model.Date) (*model.CalendarPlan, error) {
	filter := repository.CalendarPlanFilter{
		ContractID: employee.ContractID,
		Statuses:   []model.CalendarPlanStatus{model.CalendarPlanStatusApproved, model.CalendarPlanStatusSentToSES},
	}
	plans, err := s.plans.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar plans: %w", err)
	}
	for _, plan := range plans {
		if workflow.PlanCoversVisit(plan, employee.ID.String(), visit) {
			return plan, nil
		}
	}
	return nil, apperrors.BadRequest("Нет согласованного календарного плана на эту дату для сотрудника", nil)
}

// buildServices assembles the specialist visits: position rules, then
// harmful-factor rules, with the therapist always present. Each service
// is bound to a clinic doctor of the matching specialization when one
// exists and gets a sequential time slot.
func (s *Service) buildServices(ctx context.Context, clinicID uuid.UUID, employee *model.ContingentEmployee) model.ServiceList {
	specs := []string{fallbackSpecialization}
	seen := map[string]struct{}{fallbackSpecialization: {}}
	add := func(names []string) {
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			specs = append(specs, name)
		}
	}

	add(positionSpecializations[employee.Position])
	for _, factor := range employee.HarmfulFactors {
		add(factorSpecializations[normalizeFactor(factor)])
	}

	slot := time.Date(2000, 1, 1, firstSlotHour, 0, 0, 0, time.UTC)
	services := make(model.ServiceList, 0, len(specs))
	for _, spec := range specs {
		svc := model.RouteSheetService{
			ID:             uuid.NewString(),
			Name:           "Осмотр: " + spec,
			Specialization: spec,
			Time:           slot.Format("15:04"),
			Status:         model.ServiceStatusPending,
		}
		if doctor, err := s.doctorBySpecialization(ctx, clinicID, spec); err == nil {
			svc.DoctorID = &doctor.ID
			svc.DoctorName = doctor.FullName
			svc.Cabinet = doctor.Cabinet
		}
		services = append(services, svc)
		slot = slot.Add(slotMinutes * time.Minute)
	}
	return services
}

func (s *Service) doctorBySpecialization(ctx context.Context, clinicID uuid.UUID, spec string) (*model.Doctor, error) {
	key := clinicID.String() + "|" + spec
	if cached, ok := s.doctorCache.Get(key); ok {
		return cached.(*model.Doctor), nil
	}
	doctor, err := s.doctors.GetBySpecialization(ctx, clinicID, spec)
	if err != nil {
		return nil, err
	}
	s.doctorCache.Set(key, doctor, gocache.DefaultExpiration)
	return doctor, nil
}

// createTests records the laboratory and functional tests the patient
// must pass before the commission.
func (s *Service) createTests(ctx context.Context, sheet *model.RouteSheet, employee *model.ContingentEmployee) error {
	names := append([]string{}, baseTests...)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		seen[name] = struct{}{}
	}
	add := func(extra []string) {
		for _, name := range extra {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	add(positionTests[employee.Position])
	for _, factor := range employee.HarmfulFactors {
		add(factorTests[normalizeFactor(factor)])
	}

	for _, name := range names {
		kind := model.TestKindLaboratory
		if _, functional := functionalTestNames[name]; functional {
			kind = model.TestKindFunctional
		}
		test := &model.MedicalTest{
			Base:         model.NewBase(),
			RouteSheetID: sheet.ID,
			PatientID:    sheet.PatientID,
			PatientName:  sheet.PatientName,
			Kind:         kind,
			Name:         name,
			Status:       model.TestStatusPending,
		}
		if err := s.tests.Create(ctx, test); err != nil {
			return fmt.Errorf("failed to create medical test: %w", err)
		}
	}
	return nil
}

// normalizeFactor matches vocabulary entries against rule keys: rules
// are keyed by the short lowercase factor name.
func normalizeFactor(factor string) string {
	f := strings.ToLower(strings.TrimSpace(factor))
	for key := range factorSpecializations {
		if strings.Contains(f, key) {
			return key
		}
	}
	for key := range factorTests {
		if strings.Contains(f, key) {
			return key
		}
	}
	return f
}
