package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	GetEmployerByBIN(ctx context.Context, bin string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type ContractFilter struct {
	ClinicID    *uuid.UUID
	EmployerID  *uuid.UUID
	EmployerBIN string
	Status      model.ContractStatus
}

type ContractRepository interface {
	Create(ctx context.Context, contract *model.Contract) error
	Get(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	Update(ctx context.Context, contract *model.Contract) error
	List(ctx context.Context, filter ContractFilter) ([]*model.Contract, error)
	AddHistory(ctx context.Context, entry *model.ContractHistoryEntry) error
	ListHistory(ctx context.Context, contractID uuid.UUID) ([]*model.ContractHistoryEntry, error)
}

type ContingentFilter struct {
	OwnerID    *uuid.UUID
	ContractID *uuid.UUID
	Department string
}

type ContingentRepository interface {
	Create(ctx context.Context, employee *model.ContingentEmployee) error
	BulkCreate(ctx context.Context, employees []*model.ContingentEmployee) error
	Get(ctx context.Context, id uuid.UUID) (*model.ContingentEmployee, error)
	Update(ctx context.Context, employee *model.ContingentEmployee) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) error
	DeleteForContract(ctx context.Context, contractID uuid.UUID) error
	List(ctx context.Context, filter ContingentFilter) ([]*model.ContingentEmployee, error)
	CountForContract(ctx context.Context, contractID uuid.UUID) (int, error)
	FindByIIN(ctx context.Context, iin string) (*model.ContingentEmployee, error)
	FindByPhone(ctx context.Context, phone string) (*model.ContingentEmployee, error)
	SearchByName(ctx context.Context, name string) ([]*model.ContingentEmployee, error)
}

type CalendarPlanFilter struct {
	ContractID *uuid.UUID
	Statuses   []model.CalendarPlanStatus
}

type CalendarPlanRepository interface {
	Create(ctx context.Context, plan *model.CalendarPlan) error
	Get(ctx context.Context, id uuid.UUID) (*model.CalendarPlan, error)
	Update(ctx context.Context, plan *model.CalendarPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter CalendarPlanFilter) ([]*model.CalendarPlan, error)
}

type RouteSheetFilter struct {
	ClinicID  *uuid.UUID
	PatientID string
	VisitDate *model.Date
}

type RouteSheetRepository interface {
	Create(ctx context.Context, sheet *model.RouteSheet) error
	Get(ctx context.Context, id uuid.UUID) (*model.RouteSheet, error)
	Update(ctx context.Context, sheet *model.RouteSheet) error
	List(ctx context.Context, filter RouteSheetFilter) ([]*model.RouteSheet, error)
	GetByPatientAndDate(ctx context.Context, patientID string, visit model.Date) (*model.RouteSheet, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
	GetBySpecialization(ctx context.Context, clinicID uuid.UUID, specialization string) (*model.Doctor, error)
	Update(ctx context.Context, doctor *model.Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, clinicID uuid.UUID) ([]*model.Doctor, error)
}

type ExaminationFilter struct {
	PatientID    string
	DoctorID     *uuid.UUID
	RouteSheetID *uuid.UUID
}

type ExaminationRepository interface {
	Create(ctx context.Context, exam *model.DoctorExamination) error
	Get(ctx context.Context, id uuid.UUID) (*model.DoctorExamination, error)
	Update(ctx context.Context, exam *model.DoctorExamination) error
	List(ctx context.Context, filter ExaminationFilter) ([]*model.DoctorExamination, error)
}

type ExpertiseFilter struct {
	PatientID  string
	Department string
	From       *model.Date
	To         *model.Date
}

type ExpertiseRepository interface {
	Create(ctx context.Context, expertise *model.Expertise) error
	Get(ctx context.Context, id uuid.UUID) (*model.Expertise, error)
	GetByRouteSheet(ctx context.Context, routeSheetID uuid.UUID) (*model.Expertise, error)
	Update(ctx context.Context, expertise *model.Expertise) error
	List(ctx context.Context, filter ExpertiseFilter) ([]*model.Expertise, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, referral *model.Referral) error
	Get(ctx context.Context, id uuid.UUID) (*model.Referral, error)
	Update(ctx context.Context, referral *model.Referral) error
	List(ctx context.Context, patientID string) ([]*model.Referral, error)
}

type MedicalTestRepository interface {
	Create(ctx context.Context, test *model.MedicalTest) error
	Get(ctx context.Context, id uuid.UUID) (*model.MedicalTest, error)
	Update(ctx context.Context, test *model.MedicalTest) error
	ListByRouteSheet(ctx context.Context, routeSheetID uuid.UUID, kind model.TestKind) ([]*model.MedicalTest, error)
	List(ctx context.Context, kind model.TestKind) ([]*model.MedicalTest, error)
	CountUnfinished(ctx context.Context, routeSheetID uuid.UUID) (int, error)
}

type QueueFilter struct {
	DoctorID       *uuid.UUID
	Specialization string
	Status         model.QueueStatus
}

type QueueRepository interface {
	Create(ctx context.Context, entry *model.QueueEntry) error
	Get(ctx context.Context, id uuid.UUID) (*model.QueueEntry, error)
	Update(ctx context.Context, entry *model.QueueEntry) error
	ListForDate(ctx context.Context, date model.Date, filter QueueFilter) ([]*model.QueueEntry, error)
	FindActive(ctx context.Context, patientID, serviceName string, date model.Date) (*model.QueueEntry, error)
	NextNumber(ctx context.Context, date model.Date) (int, error)
}
