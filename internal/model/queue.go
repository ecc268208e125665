package model

import (
	"time"

	"github.com/google/uuid"
)

// QueueStatus is the state of a patient in a doctor's queue
type QueueStatus string

const (
	QueueStatusWaiting    QueueStatus = "waiting"
	QueueStatusCalled     QueueStatus = "called"
	QueueStatusInProgress QueueStatus = "in_progress"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusSkipped    QueueStatus = "skipped"
)

// QueuePriority orders patients within a queue
type QueuePriority string

const (
	QueuePriorityNormal QueuePriority = "normal"
	QueuePriorityUrgent QueuePriority = "urgent"
)

// QueueEntry is one patient waiting for one route-sheet service.
// Queue numbers restart from 1 each day.
type QueueEntry struct {
	Base
	RouteSheetID uuid.UUID     `json:"route_sheet_id" db:"route_sheet_id"`
	PatientID    string        `json:"patient_id" db:"patient_id"`
	PatientName  string        `json:"patient_name" db:"patient_name"`
	ServiceName  string        `json:"service_name" db:"service_name"`
	Specialization string      `json:"specialization,omitempty" db:"specialization"`
	DoctorID     *uuid.UUID    `json:"doctor_id,omitempty" db:"doctor_id"`
	Cabinet      string        `json:"cabinet,omitempty" db:"cabinet"`
	QueueNumber  int           `json:"queue_number" db:"queue_number"`
	Status       QueueStatus   `json:"status" db:"status"`
	Priority     QueuePriority `json:"priority" db:"priority"`
	QueueDate    Date          `json:"queue_date" db:"queue_date"`
	CalledAt     *time.Time    `json:"called_at,omitempty" db:"called_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

// Active reports whether the entry still occupies a place in the queue
func (e *QueueEntry) Active() bool {
	return e.Status == QueueStatusWaiting || e.Status == QueueStatusCalled || e.Status == QueueStatusInProgress
}

type AddToQueueRequest struct {
	RouteSheetID uuid.UUID     `json:"route_sheet_id" binding:"required"`
	ServiceID    string        `json:"service_id" binding:"required"`
	Priority     QueuePriority `json:"priority" binding:"omitempty,oneof=normal urgent"`
}
