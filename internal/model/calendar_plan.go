package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// CalendarPlanStatus is the lifecycle state of an examination plan
type CalendarPlanStatus string

const (
	CalendarPlanStatusDraft           CalendarPlanStatus = "draft"
	CalendarPlanStatusPendingClinic   CalendarPlanStatus = "pending_clinic"
	CalendarPlanStatusPendingEmployer CalendarPlanStatus = "pending_employer"
	CalendarPlanStatusApproved        CalendarPlanStatus = "approved"
	CalendarPlanStatusRejected        CalendarPlanStatus = "rejected"
	CalendarPlanStatusSentToSES       CalendarPlanStatus = "sent_to_ses"
)

// DepartmentPlan is one department's examination window inside a plan
type DepartmentPlan struct {
	Department  string   `json:"department"`
	StartDate   Date     `json:"start_date"`
	EndDate     Date     `json:"end_date"`
	EmployeeIDs []string `json:"employee_ids"`
}

type DepartmentPlanList []DepartmentPlan

func (l DepartmentPlanList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]DepartmentPlan{})
	}
	return json.Marshal([]DepartmentPlan(l))
}

func (l *DepartmentPlanList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type CalendarPlan struct {
	Base
	ContractID             uuid.UUID          `json:"contract_id" db:"contract_id"`
	Status                 CalendarPlanStatus `json:"status" db:"status"`
	StartDate              Date               `json:"start_date" db:"start_date"`
	EndDate                Date               `json:"end_date" db:"end_date"`
	EmployeeIDs            StringList         `json:"employee_ids" db:"employee_ids"`
	Departments            DepartmentPlanList `json:"departments_info" db:"departments_info"`
	HarmfulFactors         StringList         `json:"harmful_factors" db:"harmful_factors"`
	SelectedDoctors        StringList         `json:"selected_doctors" db:"selected_doctors"`
	ClinicName             string             `json:"clinic_name,omitempty" db:"clinic_name"`
	EmployerName           string             `json:"employer_name,omitempty" db:"employer_name"`
	ClinicRepresentative   string             `json:"clinic_representative,omitempty" db:"clinic_representative"`
	EmployerRepresentative string             `json:"employer_representative,omitempty" db:"employer_representative"`
	RejectionReason        string             `json:"rejection_reason,omitempty" db:"rejection_reason"`
}

type CreateCalendarPlanRequest struct {
	ContractID             uuid.UUID        `json:"contract_id" binding:"required"`
	Departments            []DepartmentPlan `json:"departments_info" binding:"required,min=1,dive"`
	HarmfulFactors         []string         `json:"harmful_factors"`
	SelectedDoctors        []string         `json:"selected_doctors"`
	ClinicRepresentative   string           `json:"clinic_representative"`
	EmployerRepresentative string           `json:"employer_representative"`
}

type UpdateCalendarPlanRequest struct {
	Departments            *[]DepartmentPlan `json:"departments_info,omitempty"`
	HarmfulFactors         *[]string         `json:"harmful_factors,omitempty"`
	SelectedDoctors        *[]string         `json:"selected_doctors,omitempty"`
	ClinicRepresentative   *string           `json:"clinic_representative,omitempty"`
	EmployerRepresentative *string           `json:"employer_representative,omitempty"`
}

type RejectCalendarPlanRequest struct {
	Reason string `json:"reason" binding:"required"`
}
