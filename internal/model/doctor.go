package model

import "github.com/google/uuid"

// Doctor is a clinic specialist who receives patients on route sheets
type Doctor struct {
	Base
	ClinicID       uuid.UUID  `json:"clinic_id" db:"clinic_id"`
	UserID         *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	FullName       string     `json:"full_name" db:"full_name"`
	Specialization string     `json:"specialization" db:"specialization"`
	Cabinet        string     `json:"cabinet,omitempty" db:"cabinet"`
	WorkSchedule   JSONMap    `json:"work_schedule,omitempty" db:"work_schedule"`
	Active         bool       `json:"active" db:"active"`
}

type CreateDoctorRequest struct {
	UserID         *uuid.UUID `json:"user_id"`
	FullName       string     `json:"full_name" binding:"required"`
	Specialization string     `json:"specialization" binding:"required"`
	Cabinet        string     `json:"cabinet"`
	WorkSchedule   JSONMap    `json:"work_schedule"`
}

type UpdateDoctorRequest struct {
	FullName       *string  `json:"full_name,omitempty"`
	Specialization *string  `json:"specialization,omitempty"`
	Cabinet        *string  `json:"cabinet,omitempty"`
	WorkSchedule   *JSONMap `json:"work_schedule,omitempty"`
	Active         *bool    `json:"active,omitempty"`
}
