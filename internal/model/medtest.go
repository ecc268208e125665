package model

import (
	"time"

	"github.com/google/uuid"
)

// TestKind separates laboratory assays from functional diagnostics
type TestKind string

const (
	TestKindLaboratory TestKind = "laboratory"
	TestKindFunctional TestKind = "functional"
)

// TestStatus is the processing state of a medical test
type TestStatus string

const (
	TestStatusPending    TestStatus = "pending"
	TestStatusInProgress TestStatus = "in_progress"
	TestStatusCompleted  TestStatus = "completed"
)

// MedicalTest is a laboratory or functional test attached to a route
// sheet. Pending tests block the commission's expertise.
type MedicalTest struct {
	Base
	RouteSheetID uuid.UUID  `json:"route_sheet_id" db:"route_sheet_id"`
	PatientID    string     `json:"patient_id" db:"patient_id"`
	PatientName  string     `json:"patient_name" db:"patient_name"`
	Kind         TestKind   `json:"kind" db:"kind"`
	Name         string     `json:"name" db:"name"`
	Status       TestStatus `json:"status" db:"status"`
	Result       string     `json:"result,omitempty" db:"result"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type CreateMedicalTestRequest struct {
	RouteSheetID uuid.UUID `json:"route_sheet_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
}

type UpdateMedicalTestRequest struct {
	Status *TestStatus `json:"status,omitempty" binding:"omitempty,oneof=pending in_progress completed"`
	Result *string     `json:"result,omitempty"`
}
