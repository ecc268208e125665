package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/notification"
	"github.com/profmed/crm-api/internal/repository"
	"github.com/profmed/crm-api/pkg/auth"
	apperrors "github.com/profmed/crm-api/pkg/errors"
	"github.com/profmed/crm-api/pkg/security"
)

type Service struct {
	users    repository.UserRepository
	otp      *OTPStore
	jwt      auth.JWTService
	hasher   security.PasswordHasher
	notifier *notification.Service
}

func NewService(
	users repository.UserRepository,
	otp *OTPStore,
	jwt auth.JWTService,
	hasher security.PasswordHasher,
	notifier *notification.Service,
) *Service {
	return &Service{
		users:    users,
		otp:      otp,
		jwt:      jwt,
		hasher:   hasher,
		notifier: notifier,
	}
}

// SendOTP issues a login code and delivers it over WhatsApp. A user
// row is created on first contact so registration can continue after
// verification.
func (s *Service) SendOTP(ctx context.Context, phone string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		return apperrors.BadRequest("Укажите номер телефона", nil)
	}

	if _, err := s.users.GetByPhone(ctx, phone); err != nil {
		user := &model.User{Base: model.NewBase(), Phone: phone}
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user for phone: %w", err)
		}
	}

	code, err := s.otp.Issue(ctx, phone)
	if err != nil {
		return fmt.Errorf("failed to issue otp: %w", err)
	}
	if err := s.notifier.SendOTP(ctx, phone, code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}
	return nil
}

// VerifyOTP checks the code and signs the user in
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (*model.AuthResponse, error) {
	phone = NormalizePhone(phone)

	ok, err := s.otp.Verify(ctx, phone, code)
	if err != nil {
		return nil, fmt.Errorf("failed to verify otp: %w", err)
	}
	if !ok {
		return nil, apperrors.Unauthorized("Неверный или устаревший код", nil)
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}

	tokens, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

// Login authenticates with phone and password
func (s *Service) Login(ctx context.Context, phone, password string) (*model.AuthResponse, error) {
	phone = NormalizePhone(phone)

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, apperrors.Unauthorized("Неверный телефон или пароль", err)
	}
	if user.PasswordHash == "" {
		return nil, apperrors.Unauthorized("Пароль не установлен, войдите по коду", nil)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized("Неверный телефон или пароль", err)
	}

	tokens, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

// SetPassword stores a bcrypt hash for password logins
func (s *Service) SetPassword(ctx context.Context, actor model.Actor, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.BadRequest("Пароль должен содержать не менее 8 символов", err)
	}
	if err := s.users.UpdatePassword(ctx, actor.ID, hash); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

// CompleteRegistration fills in the profile after OTP verification.
// Fresh tokens are returned because the role claims changed.
func (s *Service) CompleteRegistration(ctx context.Context, actor model.Actor, req *model.CompleteRegistrationRequest) (*model.AuthResponse, error) {
	user, err := s.users.Get(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.NotFound("user", err)
	}

	if req.Role == model.RoleEmployer && req.BIN == "" {
		return nil, apperrors.BadRequest("Укажите БИН организации", nil)
	}

	user.Role = req.Role
	user.ClinicRole = model.ClinicRole(req.ClinicRole)
	user.Name = req.Name
	user.BIN = NormalizeBIN(req.BIN)
	user.Specialization = req.Specialization
	user.RegistrationData = req.RegistrationData
	user.Registered = true

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to complete registration: %w", err)
	}

	tokens, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return &model.AuthResponse{User: user, Tokens: tokens}, nil
}

// FindByBIN looks up a registered employer by BIN, digits-only compare
func (s *Service) FindByBIN(ctx context.Context, bin string) (*model.User, error) {
	bin = NormalizeBIN(bin)
	if bin == "" {
		return nil, apperrors.BadRequest("Укажите БИН", nil)
	}
	user, err := s.users.GetEmployerByBIN(ctx, bin)
	if err != nil {
		return nil, apperrors.NotFound("employer", err)
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}
	user, err := s.users.GetByPhone(ctx, claims.Phone)
	if err != nil {
		return nil, apperrors.Unauthorized("user no longer exists", err)
	}
	tokens, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return tokens, nil
}

// NormalizePhone strips everything but digits, keeping a leading plus
// convention out of stored values.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeBIN strips non-digits from a business identification number
func NormalizeBIN(bin string) string {
	var b strings.Builder
	for _, r := range bin {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
