package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/metrics"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

// RegistrationHandler handles sign-up and e-mail confirmation
type RegistrationHandler struct {
	accounts *accounts.Service
	jwt      *config.JWTConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewRegistrationHandler creates a new RegistrationHandler instance
func NewRegistrationHandler(svc *accounts.Service, jwtCfg *config.JWTConfig, logger *zap.Logger, m *metrics.Metrics) *RegistrationHandler {
	return &RegistrationHandler{accounts: svc, jwt: jwtCfg, logger: logger, metrics: m}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a user together with its user_details. Returns a token unless e-mail verification is mandatory.
// @Tags registration
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.AuthResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/user/registration/ [post]
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if h.accounts.VerificationMandatory() {
		utils.WriteJSONResponse(w, http.StatusCreated, dto.DetailResponse{Detail: "Verification e-mail sent."})
		return
	}

	token, err := middleware.GenerateToken(&user.User, h.jwt)
	if err != nil {
		h.logger.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to generate token", "Could not issue token")
		return
	}
	h.metrics.TokenIssued("access")

	utils.WriteJSONResponse(w, http.StatusCreated, dto.AuthResponse{
		Token: token,
		User:  toUserDetailsResponse(user),
	})
}

// VerifyEmail confirms an e-mail address
// @Summary Verify e-mail
// @Description Mark the address behind a mailed confirmation key as verified
// @Tags registration
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Confirmation key"
// @Success 200 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse "Key expired"
// @Failure 404 {object} dto.ErrorResponse "Unknown key"
// @Router /api/user/registration/verify-email/ [post]
func (h *RegistrationHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.accounts.ConfirmEmail(r.Context(), req.Key)
	switch {
	case errors.Is(err, accounts.ErrConfirmationInvalid):
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "Unknown confirmation key")
	case errors.Is(err, accounts.ErrConfirmationExpired):
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Confirmation expired", "This confirmation key has expired")
	case err != nil:
		writeServiceError(w, h.logger, err)
	default:
		utils.WriteJSONResponse(w, http.StatusOK, dto.DetailResponse{Detail: "ok"})
	}
}
