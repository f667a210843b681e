package wire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"starter-api/internal/adaptor"
	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/internal/usecase"
	"starter-api/pkg/middleware"
	"starter-api/pkg/token"
	"starter-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUsers struct {
	repository.UserRepository
	users map[uuid.UUID]*entity.User
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}

func testRouter(t *testing.T, env utils.Environment) (http.Handler, *token.Issuer, *stubUsers) {
	t.Helper()

	config := &utils.Config{
		App: utils.AppConfig{Name: "starter", Env: env, APIPrefix: "/api/v1"},
		JWT: utils.JWTConfig{Secret: "wire-secret", AccessExpiresSeconds: 60, RefreshExpiresSeconds: 120},
	}
	log := zap.NewNop()
	issuer := token.NewIssuer(config.JWT)
	users := &stubUsers{users: map[uuid.UUID]*entity.User{}}

	handler := adaptor.NewHandler(&usecase.Service{}, log)
	mw := newRouteMiddleware(issuer, users, nil, config, log)

	return setupRouter(handler, mw, config, log), issuer, users
}

func bearerFor(t *testing.T, issuer *token.Issuer, users *stubUsers, role entity.UserRole) string {
	t.Helper()

	user := &entity.User{Base: entity.Base{ID: uuid.New()}, Role: role}
	users.users[user.ID] = user

	tokens, err := issuer.IssueLoginTokens(user.ID)
	require.NoError(t, err)
	return "Bearer " + tokens.AccessToken
}

func TestSetupRouter_Health(t *testing.T) {
	router, _, _ := testRouter(t, utils.EnvDevelopment)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSetupRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router, _, _ := testRouter(t, utils.EnvDevelopment)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/users/"},
		{http.MethodGet, "/api/v1/items/"},
		{http.MethodPost, "/api/v1/items/admin"},
		{http.MethodPost, "/api/v1/auth/login/test-token"},
		{http.MethodPost, "/api/v1/auth/generate-reviewer-otp"},
		{http.MethodDelete, "/api/v1/auth/delete-reviewer-otp"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSetupRouter_AdminRoutesRejectCustomers(t *testing.T) {
	router, issuer, users := testRouter(t, utils.EnvDevelopment)
	bearer := bearerFor(t, issuer, users, entity.RoleCustomer)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/"},
		{http.MethodDelete, "/api/v1/users/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/items/admin"},
		{http.MethodPost, "/api/v1/auth/generate-reviewer-otp"},
		{http.MethodDelete, "/api/v1/auth/delete-reviewer-otp"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req := httptest.NewRequest(rt.method, rt.path, nil)
			req.Header.Set("Authorization", bearer)
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestSetupRouter_TestTokenHiddenInProduction(t *testing.T) {
	router, issuer, users := testRouter(t, utils.EnvProduction)
	bearer := bearerFor(t, issuer, users, entity.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login/test-token", nil)
	req.Header.Set("Authorization", bearer)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}

type recordingLimiter struct {
	keys []string
}

func (l *recordingLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return false, nil
}

func TestSetupRouter_RateLimitKeyIgnoresForwardedHeaders(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		wantKey    string
	}{
		{name: "direct", trustProxy: false, wantKey: "198.51.100.20"},
		{name: "behind trusted proxy", trustProxy: true, wantKey: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &utils.Config{
				App: utils.AppConfig{Env: utils.EnvProduction, APIPrefix: "/api/v1", TrustProxy: tt.trustProxy},
				JWT: utils.JWTConfig{Secret: "wire-secret", AccessExpiresSeconds: 60, RefreshExpiresSeconds: 120},
			}
			log := zap.NewNop()
			limiter := &recordingLimiter{}

			mw := newRouteMiddleware(token.NewIssuer(config.JWT), &stubUsers{}, nil, config, log)
			mw.otpLimit = middleware.RateLimit(limiter, log)
			router := setupRouter(adaptor.NewHandler(&usecase.Service{}, log), mw, config, log)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/request", nil)
			req.RemoteAddr = "198.51.100.20:40000"
			req.Header.Set("X-Forwarded-For", "203.0.113.9")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			assert.Equal(t, []string{tt.wantKey}, limiter.keys)
		})
	}
}
