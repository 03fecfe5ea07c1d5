package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/Kelvin-dev001/nebsam-cert-system/internal/api/http"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/api/http/handlers"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/auth"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/config"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/domain"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/events"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/observability"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/otp"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/persistence"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/repository"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/service"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.Email = strings.ToLower(user.Email)
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

var _ repository.UserRepository = (*memUserRepo)(nil)

type captureSender struct {
	mu       sync.Mutex
	lastCode string
	fail     bool
}

func (s *captureSender) Send(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("gateway unreachable")
	}
	s.lastCode = code
	return nil
}

func (s *captureSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCode
}

func newTestApp(t *testing.T) (*fiber.App, *captureSender) {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret",
			AccessTokenTTLHours: 12,
			OTPTTLMinutes:       5,
			BcryptCost:          4,
		},
	}
	logger := zap.NewNop()
	users := &memUserRepo{users: make(map[string]*domain.User)}
	sender := &captureSender{}
	otpService := otp.NewService(otp.NewMemoryStore(), sender, 5*time.Minute, logger)
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		OTP:        otpService,
		Dispatcher: events.NewInMemoryDispatcher(),
	})
	certService := service.NewCertificateService(service.CertificateDependencies{
		CertificateRepo: nil,
		OTP:             otpService,
		Dispatcher:      events.NewInMemoryDispatcher(),
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Certificates:   handlers.NewCertificatesHandler(certService),
		MasterData:     handlers.NewMasterDataHandler(),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})
	return app, sender
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLoginOTPFlow_HTTP(t *testing.T) {
	app, sender := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", fiber.Map{
		"name": "Alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp)

	resp = postJSON(t, app, "/api/auth/login/request-otp", fiber.Map{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)

	code := sender.last()
	require.Len(t, code, 6)

	resp = postJSON(t, app, "/api/auth/login/verify-otp", fiber.Map{
		"email": "alice@example.com", "otp": code,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	authData := data["auth"].(map[string]any)
	require.NotEmpty(t, authData["token"])

	// Replay the consumed code.
	resp = postJSON(t, app, "/api/auth/login/verify-otp", fiber.Map{
		"email": "alice@example.com", "otp": code,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body = decodeBody(t, resp)
	errData := body["error"].(map[string]any)
	require.Equal(t, "OTP_NOT_FOUND", errData["code"])
}

func TestLoginRequestOTP_BadPassword_HTTP(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", fiber.Map{
		"name": "Alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp)

	resp = postJSON(t, app, "/api/auth/login/request-otp", fiber.Map{
		"email": "alice@example.com", "password": "nope",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	errData := body["error"].(map[string]any)
	require.Equal(t, "INVALID_CREDENTIALS", errData["code"])
}

func TestLoginRequestOTP_GatewayDown_HTTP(t *testing.T) {
	app, sender := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", fiber.Map{
		"name": "Alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp)

	sender.fail = true
	resp = postJSON(t, app, "/api/auth/login/request-otp", fiber.Map{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decodeBody(t, resp)
	errData := body["error"].(map[string]any)
	require.Equal(t, "NOTIFICATION_FAILED", errData["code"])
}

func TestProtectedRoute_RequiresToken_HTTP(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/vehicle-makes", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
