package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/config"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/events"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/otp"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/service"
	apperrors "github.com/Kelvin-dev001/nebsam-cert-system/pkg/util/errorutil"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret",
			AccessTokenTTLHours: 12,
			OTPTTLMinutes:       5,
			BcryptCost:          4,
		},
	}
}

func newAuthFixture(t *testing.T) (*service.AuthService, *memUserRepo, *captureSender) {
	t.Helper()
	users := newMemUserRepo()
	sender := &captureSender{}
	otpService := otp.NewService(otp.NewMemoryStore(), sender, 5*time.Minute, zap.NewNop())
	authService := service.NewAuthService(testConfig(), service.AuthDependencies{
		UserRepo:   users,
		OTP:        otpService,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	return authService, users, sender
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	authService, _, _ := newAuthFixture(t)

	_, _, _, err := authService.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, _, _, err = authService.Register(ctx, "Alice Again", "ALICE@example.com", "secret1")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "CONFLICT", domainErr.Code)
}

func TestLoginFlow_EndToEnd(t *testing.T) {
	ctx := context.Background()
	authService, _, sender := newAuthFixture(t)

	_, _, _, err := authService.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, authService.RequestLoginOTP(ctx, "alice@example.com", "secret1"))
	code := sender.last()
	require.Len(t, code, 6)

	user, token, exp, err := authService.VerifyLoginOTP(ctx, "alice@example.com", code)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(12*time.Hour), exp, time.Minute)

	// Codes are single-use: replaying the same one must fail.
	_, _, _, err = authService.VerifyLoginOTP(ctx, "alice@example.com", code)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "OTP_NOT_FOUND", domainErr.Code)
}

func TestRequestLoginOTP_WrongPassword(t *testing.T) {
	ctx := context.Background()
	authService, _, sender := newAuthFixture(t)

	_, _, _, err := authService.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	err = authService.RequestLoginOTP(ctx, "alice@example.com", "wrong")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	require.Empty(t, sender.last(), "no code may be issued for bad credentials")
}

func TestRequestLoginOTP_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	authService, _, _ := newAuthFixture(t)

	err := authService.RequestLoginOTP(ctx, "ghost@example.com", "whatever")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestRequestLoginOTP_DispatchFailure(t *testing.T) {
	ctx := context.Background()
	authService, _, sender := newAuthFixture(t)

	_, _, _, err := authService.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	sender.fail = true
	err = authService.RequestLoginOTP(ctx, "alice@example.com", "secret1")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOTIFICATION_FAILED", domainErr.Code)
	require.Equal(t, 502, domainErr.HTTPStatus)
}

func TestVerifyLoginOTP_CaseInsensitiveEmailKey(t *testing.T) {
	ctx := context.Background()
	authService, _, sender := newAuthFixture(t)

	_, _, _, err := authService.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, authService.RequestLoginOTP(ctx, "Alice@Example.COM", "secret1"))

	user, _, _, err := authService.VerifyLoginOTP(ctx, "alice@example.com", sender.last())
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
}
