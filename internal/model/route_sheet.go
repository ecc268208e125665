package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// ServiceStatus is the state of a single route-sheet service
type ServiceStatus string

const (
	ServiceStatusPending   ServiceStatus = "pending"
	ServiceStatusCompleted ServiceStatus = "completed"
)

// RouteSheetService is one examination stop on a route sheet: a
// specialist visit bound to a real clinic doctor and a time slot.
type RouteSheetService struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Specialization string        `json:"specialization"`
	DoctorID       *uuid.UUID    `json:"doctor_id,omitempty"`
	DoctorName     string        `json:"doctor_name,omitempty"`
	Cabinet        string        `json:"cabinet,omitempty"`
	Time           string        `json:"time"`
	Status         ServiceStatus `json:"status"`
	CompletedBy    string        `json:"completed_by,omitempty"`
}

type ServiceList []RouteSheetService

func (l ServiceList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]RouteSheetService{})
	}
	return json.Marshal([]RouteSheetService(l))
}

func (l *ServiceList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type RouteSheet struct {
	Base
	ClinicID       uuid.UUID   `json:"clinic_id" db:"clinic_id"`
	CalendarPlanID uuid.UUID   `json:"calendar_plan_id" db:"calendar_plan_id"`
	PatientID      string      `json:"patient_id" db:"patient_id"`
	PatientName    string      `json:"patient_name" db:"patient_name"`
	IIN            string      `json:"iin,omitempty" db:"iin"`
	Position       string      `json:"position,omitempty" db:"position"`
	Department     string      `json:"department,omitempty" db:"department"`
	VisitDate      Date        `json:"visit_date" db:"visit_date"`
	Services       ServiceList `json:"services" db:"services"`
}

// Completed reports whether every service on the sheet is done
func (rs *RouteSheet) Completed() bool {
	for _, svc := range rs.Services {
		if svc.Status != ServiceStatusCompleted {
			return false
		}
	}
	return len(rs.Services) > 0
}

// GenerateRouteSheetRequest finds an employee by exactly one of the
// lookup keys and issues a route sheet for the visit date.
type GenerateRouteSheetRequest struct {
	IIN       string `json:"iin" binding:"omitempty,iin"`
	Phone     string `json:"phone"`
	FullName  string `json:"full_name"`
	VisitDate Date   `json:"visit_date"`
}

type UpdateServiceStatusRequest struct {
	Status ServiceStatus `json:"status" binding:"required,oneof=pending completed"`
}

// RouteSheetQRPayload is the JSON encoded into a route sheet's QR code
type RouteSheetQRPayload struct {
	RouteSheetID string `json:"route_sheet_id"`
	PatientID    string `json:"patient_id"`
	PatientName  string `json:"full_name"`
}
