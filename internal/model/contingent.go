package model

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/google/uuid"
)

// ContingentEmployee is a worker subject to periodic occupational
// examinations. Rows are owned by the uploading account (clinic or
// employer) and optionally attached to a contract.
type ContingentEmployee struct {
	Base
	OwnerID             uuid.UUID  `json:"owner_id" db:"owner_id"`
	ContractID          *uuid.UUID `json:"contract_id,omitempty" db:"contract_id"`
	FullName            string     `json:"full_name" db:"full_name"`
	BirthDate           Date       `json:"birth_date" db:"birth_date"`
	Gender              string     `json:"gender,omitempty" db:"gender"`
	Department          string     `json:"department,omitempty" db:"department"`
	Position            string     `json:"position,omitempty" db:"position"`
	TotalExperience     float64    `json:"total_experience" db:"total_experience"`
	PositionExperience  float64    `json:"position_experience" db:"position_experience"`
	LastExamDate        *Date      `json:"last_examination_date,omitempty" db:"last_examination_date"`
	NextExamDate        *Date      `json:"next_examination_date,omitempty" db:"next_examination_date"`
	HarmfulFactors      StringList `json:"harmful_factors" db:"harmful_factors"`
	IIN                 string     `json:"iin,omitempty" db:"iin"`
	Phone               string     `json:"phone,omitempty" db:"phone"`
	Notes               string     `json:"notes,omitempty" db:"notes"`
	RequiresExamination bool       `json:"requires_examination" db:"requires_examination"`
	Quarter             string     `json:"quarter,omitempty" db:"quarter"`
}

// PatientID is the stable identifier used on route sheets and queue
// entries: the IIN when present, otherwise a 12-hex digest derived
// from the name and birth date.
func (e *ContingentEmployee) PatientID() string {
	if e.IIN != "" {
		return e.IIN
	}
	sum := md5.Sum([]byte(e.FullName + "_" + e.BirthDate.String()))
	return hex.EncodeToString(sum[:])[:12]
}

type CreateContingentRequest struct {
	ContractID          *uuid.UUID `json:"contract_id"`
	FullName            string     `json:"full_name" binding:"required"`
	BirthDate           Date       `json:"birth_date" binding:"required"`
	Gender              string     `json:"gender" binding:"omitempty,oneof=М Ж"`
	Department          string     `json:"department"`
	Position            string     `json:"position"`
	TotalExperience     float64    `json:"total_experience"`
	PositionExperience  float64    `json:"position_experience"`
	LastExamDate        *Date      `json:"last_examination_date"`
	HarmfulFactors      []string   `json:"harmful_factors"`
	IIN                 string     `json:"iin" binding:"omitempty,iin"`
	Phone               string     `json:"phone"`
	Notes               string     `json:"notes"`
	RequiresExamination bool       `json:"requires_examination"`
	Quarter             string     `json:"quarter"`
}

type UpdateContingentRequest struct {
	FullName            *string   `json:"full_name,omitempty"`
	BirthDate           *Date     `json:"birth_date,omitempty"`
	Gender              *string   `json:"gender,omitempty"`
	Department          *string   `json:"department,omitempty"`
	Position            *string   `json:"position,omitempty"`
	TotalExperience     *float64  `json:"total_experience,omitempty"`
	PositionExperience  *float64  `json:"position_experience,omitempty"`
	LastExamDate        *Date     `json:"last_examination_date,omitempty"`
	HarmfulFactors      *[]string `json:"harmful_factors,omitempty"`
	IIN                 *string   `json:"iin,omitempty" binding:"omitempty,iin"`
	Phone               *string   `json:"phone,omitempty"`
	Notes               *string   `json:"notes,omitempty"`
	RequiresExamination *bool     `json:"requires_examination,omitempty"`
	Quarter             *string   `json:"quarter,omitempty"`
}

// ImportResult summarizes an Excel bulk import
type ImportResult struct {
	Created        int      `json:"created"`
	Skipped        int      `json:"skipped"`
	SkippedReasons []string `json:"skipped_reasons,omitempty"`
}

// QRPayload is the JSON encoded into employee and route-sheet QR codes
type QRPayload struct {
	EmployeeID string `json:"employee_id"`
	IIN        string `json:"iin,omitempty"`
	FullName   string `json:"full_name"`
}

type FindByQRRequest struct {
	Payload string `json:"payload" binding:"required"`
}
