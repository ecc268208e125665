package model

import (
	"time"

	"github.com/google/uuid"
)

// ContractStatus is the lifecycle state of a contract
type ContractStatus string

const (
	ContractStatusDraft           ContractStatus = "draft"
	ContractStatusPendingApproval ContractStatus = "pending_approval"
	ContractStatusApproved        ContractStatus = "approved"
	ContractStatusRejected        ContractStatus = "rejected"
	ContractStatusSent            ContractStatus = "sent"
	ContractStatusExecuted        ContractStatus = "executed"
	ContractStatusCancelled       ContractStatus = "cancelled"
)

// ContractAction names an entry in the contract history log
type ContractAction string

const (
	ContractActionCreated            ContractAction = "created"
	ContractActionUpdated            ContractAction = "updated"
	ContractActionSentForApproval    ContractAction = "sent_for_approval"
	ContractActionApproved           ContractAction = "approved"
	ContractActionRejected           ContractAction = "rejected"
	ContractActionResentForApproval  ContractAction = "resent_for_approval"
	ContractActionSent               ContractAction = "sent"
	ContractActionExecuted           ContractAction = "executed"
	ContractActionCancelled          ContractAction = "cancelled"
	ContractActionEmployerRegistered ContractAction = "employer_registered"
)

type Contract struct {
	Base
	ClinicID           uuid.UUID      `json:"clinic_id" db:"clinic_id"`
	EmployerID         *uuid.UUID     `json:"employer_id,omitempty" db:"employer_id"`
	ClinicName         string         `json:"clinic_name" db:"clinic_name"`
	EmployerName       string         `json:"employer_name" db:"employer_name"`
	EmployerBIN        string         `json:"employer_bin" db:"employer_bin"`
	EmployerPhone      string         `json:"employer_phone,omitempty" db:"employer_phone"`
	Number             string         `json:"number" db:"number"`
	ContractDate       Date           `json:"contract_date" db:"contract_date"`
	Amount             float64        `json:"amount" db:"amount"`
	PeopleCount        int            `json:"people_count" db:"people_count"`
	ExecutionDate      *Date          `json:"execution_date,omitempty" db:"execution_date"`
	Status             ContractStatus `json:"status" db:"status"`
	Notes              string         `json:"notes,omitempty" db:"notes"`
	RejectionReason    string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	EmployerApprovedAt *time.Time     `json:"employer_approved_at,omitempty" db:"employer_approved_at"`
	SentAt             *time.Time     `json:"sent_at,omitempty" db:"sent_at"`
	ExecutedAt         *time.Time     `json:"executed_at,omitempty" db:"executed_at"`
}

// ContractHistoryEntry is an append-only audit record of a contract
// action. Entries are never updated or deleted.
type ContractHistoryEntry struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	ContractID uuid.UUID      `json:"contract_id" db:"contract_id"`
	Action     ContractAction `json:"action" db:"action"`
	UserID     *uuid.UUID     `json:"user_id,omitempty" db:"user_id"`
	UserRole   string         `json:"user_role" db:"user_role"`
	UserName   string         `json:"user_name" db:"user_name"`
	Comment    string         `json:"comment,omitempty" db:"comment"`
	OldStatus  ContractStatus `json:"old_status,omitempty" db:"old_status"`
	NewStatus  ContractStatus `json:"new_status,omitempty" db:"new_status"`
	Changes    JSONMap        `json:"changes,omitempty" db:"changes"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

type CreateContractRequest struct {
	Number        string  `json:"number" binding:"required"`
	ContractDate  Date    `json:"contract_date" binding:"required"`
	EmployerName  string  `json:"employer_name" binding:"required"`
	EmployerBIN   string  `json:"employer_bin" binding:"required"`
	EmployerPhone string  `json:"employer_phone"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PeopleCount   int     `json:"people_count" binding:"required,gt=0"`
	ExecutionDate *Date   `json:"execution_date"`
	Notes         string  `json:"notes"`
}

type UpdateContractRequest struct {
	Number        *string  `json:"number,omitempty"`
	ContractDate  *Date    `json:"contract_date,omitempty"`
	EmployerName  *string  `json:"employer_name,omitempty"`
	EmployerBIN   *string  `json:"employer_bin,omitempty"`
	EmployerPhone *string  `json:"employer_phone,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	PeopleCount   *int     `json:"people_count,omitempty"`
	ExecutionDate *Date    `json:"execution_date,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
}

type RejectContractRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ContractCommentRequest struct {
	Comment string `json:"comment"`
}
