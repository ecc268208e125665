package model

import "github.com/google/uuid"

// Role is the top-level account type
type Role string

const (
	RoleClinic   Role = "clinic"
	RoleEmployer Role = "employer"
)

// ClinicRole is the sub-role of a clinic account
type ClinicRole string

const (
	ClinicRoleManager         ClinicRole = "manager"
	ClinicRoleDoctor          ClinicRole = "doctor"
	ClinicRoleProfpathologist ClinicRole = "profpathologist"
	ClinicRoleReceptionist    ClinicRole = "receptionist"
)

type User struct {
	Base
	Phone            string     `json:"phone" db:"phone"`
	Name             string     `json:"name" db:"name"`
	Role             Role       `json:"role" db:"role"`
	ClinicRole       ClinicRole `json:"clinic_role,omitempty" db:"clinic_role"`
	BIN              string     `json:"bin,omitempty" db:"bin"`
	Specialization   string     `json:"specialization,omitempty" db:"specialization"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	RegistrationData JSONMap    `json:"registration_data,omitempty" db:"registration_data"`
	Registered       bool       `json:"registered" db:"registered"`
}

// Actor identifies the authenticated caller of a request. It is built
// from JWT claims by the auth middleware; handlers pass it down to
// services, which treat it as the single source of identity.
type Actor struct {
	ID         uuid.UUID
	Phone      string
	Name       string
	Role       Role
	ClinicRole ClinicRole
}

func (a Actor) IsClinic() bool   { return a.Role == RoleClinic }
func (a Actor) IsEmployer() bool { return a.Role == RoleEmployer }
func (a Actor) IsDoctor() bool {
	return a.Role == RoleClinic && a.ClinicRole == ClinicRoleDoctor
}

type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

type CompleteRegistrationRequest struct {
	Role             Role    `json:"role" binding:"required,oneof=clinic employer"`
	ClinicRole       string  `json:"clinic_role" binding:"omitempty,oneof=manager doctor profpathologist receptionist"`
	Name             string  `json:"name" binding:"required"`
	BIN              string  `json:"bin" binding:"omitempty,len=12,numeric"`
	Specialization   string  `json:"specialization"`
	RegistrationData JSONMap `json:"registration_data"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}
