package model

import "github.com/google/uuid"

// ExamConclusion is a single doctor's finding
type ExamConclusion string

const (
	ExamConclusionHealthy   ExamConclusion = "healthy"
	ExamConclusionUnhealthy ExamConclusion = "unhealthy"
)

// DoctorExamination is one specialist's record for a patient visit
type DoctorExamination struct {
	Base
	RouteSheetID   *uuid.UUID     `json:"route_sheet_id,omitempty" db:"route_sheet_id"`
	PatientID      string         `json:"patient_id" db:"patient_id"`
	PatientName    string         `json:"patient_name" db:"patient_name"`
	DoctorID       uuid.UUID      `json:"doctor_id" db:"doctor_id"`
	DoctorName     string         `json:"doctor_name" db:"doctor_name"`
	Specialization string         `json:"specialization" db:"specialization"`
	Conclusion     ExamConclusion `json:"conclusion" db:"conclusion"`
	Complaints     string         `json:"complaints,omitempty" db:"complaints"`
	Diagnosis      string         `json:"diagnosis,omitempty" db:"diagnosis"`
	Notes          string         `json:"notes,omitempty" db:"notes"`
	ExamDate       Date           `json:"exam_date" db:"exam_date"`
}

type CreateExaminationRequest struct {
	RouteSheetID *uuid.UUID     `json:"route_sheet_id"`
	PatientID    string         `json:"patient_id" binding:"required"`
	PatientName  string         `json:"patient_name" binding:"required"`
	Conclusion   ExamConclusion `json:"conclusion" binding:"required,oneof=healthy unhealthy"`
	Complaints   string         `json:"complaints"`
	Diagnosis    string         `json:"diagnosis"`
	Notes        string         `json:"notes"`
}

type UpdateExaminationRequest struct {
	Conclusion *ExamConclusion `json:"conclusion,omitempty" binding:"omitempty,oneof=healthy unhealthy"`
	Complaints *string         `json:"complaints,omitempty"`
	Diagnosis  *string         `json:"diagnosis,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
}
