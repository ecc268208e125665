package model

import "github.com/google/uuid"

// ReferralStatus is the delivery state of a specialist referral
type ReferralStatus string

const (
	ReferralStatusCreated    ReferralStatus = "created"
	ReferralStatusSent       ReferralStatus = "sent"
	ReferralStatusAccepted   ReferralStatus = "accepted"
	ReferralStatusInProgress ReferralStatus = "in_progress"
	ReferralStatusCompleted  ReferralStatus = "completed"
	ReferralStatusCancelled  ReferralStatus = "cancelled"
)

type Referral struct {
	Base
	ExpertiseID  *uuid.UUID     `json:"expertise_id,omitempty" db:"expertise_id"`
	PatientID    string         `json:"patient_id" db:"patient_id"`
	PatientName  string         `json:"patient_name" db:"patient_name"`
	Organization string         `json:"organization" db:"organization"`
	Reason       string         `json:"reason" db:"reason"`
	Status       ReferralStatus `json:"status" db:"status"`
}

type CreateReferralRequest struct {
	ExpertiseID  *uuid.UUID `json:"expertise_id"`
	PatientID    string     `json:"patient_id" binding:"required"`
	PatientName  string     `json:"patient_name" binding:"required"`
	Organization string     `json:"organization" binding:"required"`
	Reason       string     `json:"reason" binding:"required"`
}

type UpdateReferralStatusRequest struct {
	Status ReferralStatus `json:"status" binding:"required,oneof=created sent accepted in_progress completed cancelled"`
}
