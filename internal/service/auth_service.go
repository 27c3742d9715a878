package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
)

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

const minPasswordLength = 12

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	RecordLoginAttempt(ctx context.Context, id uuid.UUID, success bool, maxFailed int, lockFor time.Duration) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, m *metrics.Collector, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager, metrics: m, log: log}
}

func (s *AuthService) Login(ctx context.Context, email, password string, ip string) (*domain.TokenPair, error) {
	pair, outcome, err := s.login(ctx, email, password, ip)
	s.metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	return pair, err
}

func (s *AuthService) login(ctx context.Context, email, password string, ip string) (*domain.TokenPair, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, "error", fmt.Errorf("loading user: %w", err)
		}
		// Hash anyway so unknown emails take as long as wrong passwords.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, "invalid", ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "inactive", ErrAccountInactive
	}

	if user.IsLocked() {
		return nil, "locked", ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if err := s.userRepo.RecordLoginAttempt(ctx, user.ID, false, maxFailedAttempts, lockDuration); err != nil {
			s.log.Error("failed to record login attempt", zap.Error(err))
		}
		s.log.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", ip),
		)
		return nil, "invalid", ErrInvalidCredentials
	}

	if err := s.userRepo.RecordLoginAttempt(ctx, user.ID, true, maxFailedAttempts, lockDuration); err != nil {
		s.log.Error("failed to record login attempt", zap.Error(err))
	}

	pair, err := s.jwtManager.GenerateTokenPair(claimsFor(user))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, "error", fmt.Errorf("generating tokens: %w", err)
	}

	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return pair, "success", nil
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate user is still active
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(claimsFor(user))
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	if err := validatePasswordStrength("new_password", newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

type CreateUserCommand struct {
	Email     string      `json:"email" validate:"required,email,max=255"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name" validate:"notblank,max=100"`
	LastName  string      `json:"last_name" validate:"notblank,max=100"`
	Role      domain.Role `json:"role" validate:"oneof=admin doctor receptionist pharmacist"`
	DoctorID  *uint       `json:"doctor_id"`
}

// CreateUser registers an operator account. It backs the create-user command.
func (s *AuthService) CreateUser(ctx context.Context, cmd *CreateUserCommand) (*domain.User, error) {
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	cmd.FirstName = strings.TrimSpace(cmd.FirstName)
	cmd.LastName = strings.TrimSpace(cmd.LastName)

	verr := &domain.ValidationError{}
	if cmd.Role == domain.RoleDoctor && cmd.DoctorID == nil {
		verr.Add("doctor_id", "is required for the doctor role")
	}
	err := domain.MergeValidation(
		domain.ValidateStruct(cmd),
		validatePasswordStrength("password", cmd.Password),
		verr.OrNil(),
	)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		Email:             cmd.Email,
		PasswordHash:      string(hash),
		FirstName:         cmd.FirstName,
		LastName:          cmd.LastName,
		Role:              cmd.Role,
		DoctorID:          cmd.DoctorID,
		IsActive:          true,
		PasswordChangedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

func claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		DoctorID: u.DoctorID,
	}
}

func validatePasswordStrength(field, password string) error {
	if len(password) < minPasswordLength {
		return domain.NewFieldError(field, fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return nil
}
