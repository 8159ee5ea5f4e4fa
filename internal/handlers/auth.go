package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/metrics"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/revocation"
	"USER_REGISTRATION_BACK-END/internal/store"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts *accounts.Service
	store    store.Store
	jwt      *config.JWTConfig
	revoked  revocation.List
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(svc *accounts.Service, st store.Store, jwtCfg *config.JWTConfig, revoked revocation.List, logger *zap.Logger, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{accounts: svc, store: st, jwt: jwtCfg, revoked: revoked, logger: logger, metrics: m}
}

// writeAuthError reports a failed credential check.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounts.ErrMissingCredentials):
		writeNonFieldError(w, `Must include "username" and "password".`)
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeNonFieldError(w, "Unable to log in with provided credentials.")
	case errors.Is(err, accounts.ErrInactiveUser):
		writeNonFieldError(w, "User account is disabled.")
	case errors.Is(err, accounts.ErrEmailNotVerified):
		writeNonFieldError(w, "E-mail is not verified.")
	default:
		writeServiceError(w, h.logger, err)
	}
}

func (h *AuthHandler) issue(w http.ResponseWriter, user *models.User) (string, bool) {
	token, err := middleware.GenerateToken(user, h.jwt)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", "Could not issue token")
		return "", false
	}
	h.metrics.TokenIssued("access")
	return token, true
}

// ObtainToken exchanges credentials for a JWT
// @Summary Obtain JWT
// @Description Exchange username and password for a JSON Web Token
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenObtainRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid credentials"
// @Router /rest-auth/auth-token/ [post]
func (h *AuthHandler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenObtainRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	token, ok := h.issue(w, user)
	if !ok {
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// RefreshToken issues a fresh JWT for a still-valid one
// @Summary Refresh JWT
// @Description Exchange a valid token for a new one. The refresh window is measured from the first token's issue time.
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRefreshRequest true "Current token"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid, expired or revoked token"
// @Router /rest-auth/refresh-token/ [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		utils.WriteFieldErrors(w, http.StatusBadRequest, "Token is required", map[string][]string{"token": {"This field is required."}})
		return
	}

	claims, err := middleware.ValidateToken(req.Token, h.jwt)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			writeNonFieldError(w, "Signature has expired.")
			return
		}
		writeNonFieldError(w, "Error decoding signature.")
		return
	}

	revoked, err := h.revoked.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if revoked {
		writeNonFieldError(w, "Token has been revoked.")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeNonFieldError(w, "User doesn't exist.")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	if !user.IsActive {
		writeNonFieldError(w, "User account is disabled.")
		return
	}

	token, err := middleware.RefreshToken(claims, user, h.jwt, time.Now())
	switch {
	case errors.Is(err, middleware.ErrRefreshExpired):
		writeNonFieldError(w, "Refresh has expired.")
		return
	case errors.Is(err, middleware.ErrOrigIatMissing):
		writeNonFieldError(w, "orig_iat field is required.")
		return
	case errors.Is(err, middleware.ErrRefreshDisabled):
		writeNonFieldError(w, "Token refresh is disabled.")
		return
	case err != nil:
		writeServiceError(w, h.logger, err)
		return
	}

	h.metrics.TokenIssued("refresh")
	utils.WriteJSONResponse(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with username or e-mail and password
// @Tags authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid credentials or disabled account"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /rest-auth/login/ [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	identifier := req.Username
	if strings.TrimSpace(identifier) == "" {
		identifier = req.Email
	}

	user, err := h.accounts.Authenticate(r.Context(), identifier, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	token, ok := h.issue(w, user)
	if !ok {
		return
	}

	full, err := h.store.GetUserWithProfile(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  toUserDetailsResponse(full),
	})
}

// Logout revokes the presented token
// @Summary Logout user
// @Description Revoke the bearer token until it expires. Succeeds without a token.
// @Tags authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DetailResponse
// @Router /rest-auth/logout/ [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if raw, err := middleware.BearerToken(r); err == nil {
		if claims, err := middleware.ValidateToken(raw, h.jwt); err == nil {
			if err := h.revoked.Revoke(r.Context(), claims.ID, claims.Remaining(time.Now())); err != nil {
				writeServiceError(w, h.logger, err)
				return
			}
			h.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
		}
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.DetailResponse{Detail: "Successfully logged out."})
}

// PasswordChange changes the authenticated user's password
// @Summary Change password
// @Description Replace the password after confirming the old one
// @Tags authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PasswordChangeRequest true "Old and new passwords"
// @Success 200 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /rest-auth/password/change/ [post]
func (h *AuthHandler) PasswordChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Authentication credentials were not provided.")
		return
	}

	var req dto.PasswordChangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), userID, req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.DetailResponse{Detail: "New password has been saved."})
}
