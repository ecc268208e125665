package model

import "github.com/google/uuid"

// ExpertiseVerdict is the commission's fitness conclusion
type ExpertiseVerdict string

const (
	VerdictFit            ExpertiseVerdict = "fit"
	VerdictTemporaryUnfit ExpertiseVerdict = "temporary_unfit"
	VerdictPermanentUnfit ExpertiseVerdict = "permanent_unfit"
)

// Expertise is the medical commission's final conclusion for a patient.
// It can only be created once every route-sheet service is completed
// and no laboratory or functional test is still pending.
type Expertise struct {
	Base
	RouteSheetID        uuid.UUID        `json:"route_sheet_id" db:"route_sheet_id"`
	PatientID           string           `json:"patient_id" db:"patient_id"`
	PatientName         string           `json:"patient_name" db:"patient_name"`
	IIN                 string           `json:"iin,omitempty" db:"iin"`
	Position            string           `json:"position,omitempty" db:"position"`
	Department          string           `json:"department,omitempty" db:"department"`
	Verdict             ExpertiseVerdict `json:"verdict" db:"verdict"`
	HealthGroup         int              `json:"health_group" db:"health_group"`
	OccupationalDisease bool             `json:"occupational_disease" db:"occupational_disease"`
	Recommendations     string           `json:"recommendations,omitempty" db:"recommendations"`
	ReferralIssued      bool             `json:"referral_issued" db:"referral_issued"`
	CommissionDate      Date             `json:"commission_date" db:"commission_date"`
	ExpertID            *uuid.UUID       `json:"expert_id,omitempty" db:"expert_id"`
	ExpertName          string           `json:"expert_name,omitempty" db:"expert_name"`
}

type CreateExpertiseRequest struct {
	RouteSheetID        uuid.UUID        `json:"route_sheet_id" binding:"required"`
	Verdict             ExpertiseVerdict `json:"verdict" binding:"required,oneof=fit temporary_unfit permanent_unfit"`
	HealthGroup         int              `json:"health_group" binding:"omitempty,min=1,max=6"`
	OccupationalDisease bool             `json:"occupational_disease"`
	Recommendations     string           `json:"recommendations"`
}

type UpdateExpertiseRequest struct {
	Verdict             *ExpertiseVerdict `json:"verdict,omitempty" binding:"omitempty,oneof=fit temporary_unfit permanent_unfit"`
	HealthGroup         *int              `json:"health_group,omitempty" binding:"omitempty,min=1,max=6"`
	OccupationalDisease *bool             `json:"occupational_disease,omitempty"`
	Recommendations     *string           `json:"recommendations,omitempty"`
}

// ReadinessReport answers whether a route sheet is ready for expertise
type ReadinessReport struct {
	Ready           bool     `json:"ready"`
	PendingServices []string `json:"pending_services,omitempty"`
	PendingTests    []string `json:"pending_tests,omitempty"`
}

// DepartmentStats is one row of the per-department summary table
type DepartmentStats struct {
	Department string `json:"department"`
	Examined   int    `json:"examined"`
	Healthy    int    `json:"healthy"`
	Unfit      int    `json:"unfit"`
}

// FinalActStats aggregates commission outcomes for the final act
type FinalActStats struct {
	TotalExamined        int               `json:"total_examined"`
	Healthy              int               `json:"healthy"`
	TemporaryUnfit       int               `json:"temporary_unfit"`
	PermanentUnfit       int               `json:"permanent_unfit"`
	OccupationalDiseases int               `json:"occupational_diseases"`
	ByDepartment         []DepartmentStats `json:"by_department"`
}

// HealthPlanItem is one entry of the health-improvement plan
type HealthPlanItem struct {
	PatientName     string           `json:"patient_name"`
	Department      string           `json:"department,omitempty"`
	Position        string           `json:"position,omitempty"`
	HealthGroup     int              `json:"health_group"`
	Verdict         ExpertiseVerdict `json:"verdict"`
	Recommendations string           `json:"recommendations,omitempty"`
}
