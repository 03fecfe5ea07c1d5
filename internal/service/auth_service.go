package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/auth"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/config"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/events"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/otp"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/repository"
	apperrors "github.com/Kelvin-dev001/nebsam-cert-system/pkg/util/errorutil"
)

// AuthService coordinates registration and the two-step OTP login flow.
type AuthService struct {
	users      repository.UserRepository
	otp        *otp.Service
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	OTP        *otp.Service
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		otp:        deps.OTP,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLHours),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account and returns a signed session immediately,
// as the original registration endpoint does.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("CONFLICT", "email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email: user.Email,
		Role:  user.Role,
	})

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// RequestLoginOTP is step one of login: verify the password, then issue a
// one-time code relayed to the operator numbers. A prior unconsumed code for
// the same email is replaced.
func (s *AuthService) RequestLoginOTP(ctx context.Context, email, password string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewInvalidCredentials()
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	ch, err := s.otp.Issue(ctx, otp.LoginKey(email))
	if err != nil {
		return mapOTPError(err)
	}

	s.publish(ctx, events.EventOTPIssued, user.ID, events.OTPIssuedPayload{
		SubjectKey: ch.SubjectKey,
		ExpiresAt:  ch.ExpiresAt,
	})
	return nil
}

// VerifyLoginOTP is step two of login: consume the code and mint a session.
func (s *AuthService) VerifyLoginOTP(ctx context.Context, email, code string) (*domain.User, string, time.Time, error) {
	if err := s.otp.Verify(ctx, otp.LoginKey(email), code); err != nil {
		return nil, "", time.Time{}, mapOTPError(err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
