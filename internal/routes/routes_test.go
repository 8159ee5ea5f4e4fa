package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "USER_REGISTRATION_BACK-END/docs"
	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/handlers"
	"USER_REGISTRATION_BACK-END/internal/metrics"
	"USER_REGISTRATION_BACK-END/internal/revocation"
	"USER_REGISTRATION_BACK-END/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Account: config.AccountConfig{UsernameMinLength: 1, UsernameMaxLength: 150, EmailVerification: config.EmailVerificationNone},
	}
	st := store.NewMemory()
	logger := zap.NewNop()
	revoked := revocation.NewMemory()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Registration(metrics.OutcomeSuccess)
	svc := accounts.NewService(st, nil, cfg.Account, logger, m)

	return SetupRoutes(Handlers{
		Auth:           handlers.NewAuthHandler(svc, st, &cfg.JWT, revoked, logger, m),
		Registration:   handlers.NewRegistrationHandler(svc, &cfg.JWT, logger, m),
		Users:          handlers.NewUsersHandler(st, logger),
		CurrentUser:    handlers.NewCurrentUserHandler(svc, st, logger),
		ForgotPassword: handlers.NewForgotPasswordHandler(st, svc, nil, cfg, logger, m),
		Health:         handlers.NewHealthHandler(st),
	}, Options{
		JWT:     &cfg.JWT,
		Revoked: revoked,
		Logger:  logger,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	router := newTestRouter(t)

	t.Run("root", func(t *testing.T) {
		rec := get(router, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "running")
	})

	t.Run("trailing slash is optional", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(router, "/api/users").Code)
		assert.Equal(t, http.StatusOK, get(router, "/api/users/").Code)
	})

	t.Run("current user requires a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(router, "/rest-auth/user/").Code)
	})

	t.Run("google routes are absent when not configured", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(router, "/api/auth/google/login").Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get(router, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "user_registration_registrations_total")
	})

	t.Run("swagger docs", func(t *testing.T) {
		rec := get(router, "/swagger-docs")
		assert.Equal(t, http.StatusMovedPermanently, rec.Code)

		rec = get(router, "/swagger-docs/doc.json")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/user/registration/")
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rest-auth/password/reset/", nil)
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
