package handlers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/metrics"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/store"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

const resetCodeLength = 6

// CodeSender delivers password reset codes.
type CodeSender interface {
	SendPasswordResetCode(to, code string, ttl time.Duration) error
}

// ForgotPasswordHandler handles forgot password functionality
type ForgotPasswordHandler struct {
	store    store.Store
	accounts *accounts.Service
	mailer   CodeSender
	jwt      *config.JWTConfig
	codeTTL  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewForgotPasswordHandler creates a new ForgotPasswordHandler instance
func NewForgotPasswordHandler(st store.Store, svc *accounts.Service, mailer CodeSender, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		store:    st,
		accounts: svc,
		mailer:   mailer,
		jwt:      &cfg.JWT,
		codeTTL:  cfg.Account.ResetCodeTTL,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// ForgotPassword sends verification code to user's email
// @Summary Request password reset
// @Description Send 6-digit verification code to user's email for password reset
// @Tags password
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} dto.ForgotPasswordResponse "Verification code sent successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 429 {object} dto.ErrorResponse "A code is still valid"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /rest-auth/password/reset/ [post]
func (h *ForgotPasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required field", "Email is required")
		return
	}

	ctx := r.Context()
	user, err := h.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "No account found with this email")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}

	// A live unused code blocks a new request until it expires.
	now := h.now()
	latest, err := h.store.LatestVerification(ctx, user.ID, user.Email)
	switch {
	case err == nil && !latest.Used && latest.ExpiresAt.After(now):
		remaining := latest.ExpiresAt.Sub(now)
		utils.WriteErrorResponse(w, http.StatusTooManyRequests,
			"Code already sent",
			fmt.Sprintf("Please wait %d seconds before requesting a new code", int(remaining.Seconds())))
		return
	case err != nil && !errors.Is(err, store.ErrNotFound):
		writeServiceError(w, h.logger, err)
		return
	}

	if h.mailer == nil {
		utils.WriteErrorResponse(w, http.StatusServiceUnavailable, "Email unavailable", "Email service is not configured")
		return
	}

	code, err := generateVerificationCode(resetCodeLength)
	if err != nil {
		writeServiceError(w, h.logger, fmt.Errorf("generate code: %w", err))
		return
	}

	v := &models.Verification{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      code,
		ExpiresAt: now.Add(h.codeTTL),
		CreatedAt: now,
	}
	if err := h.store.CreateVerification(ctx, v); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if err := h.mailer.SendPasswordResetCode(user.Email, code, h.codeTTL); err != nil {
		h.metrics.EmailSent("password_reset", metrics.OutcomeError)
		h.logger.Error("failed to send reset code", zap.Int64("user_id", user.ID), zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to send email", "Could not deliver the verification code")
		return
	}
	h.metrics.EmailSent("password_reset", metrics.OutcomeSuccess)

	utils.WriteJSONResponse(w, http.StatusOK, dto.ForgotPasswordResponse{
		Message:   "Verification code has been sent to your email",
		Email:     user.Email,
		ExpiresIn: utils.HumanDuration(h.codeTTL),
	})
}

// VerifyOTP verifies the OTP and returns a reset token
// @Summary Verify OTP
// @Description Verify the 6-digit code and get a temporary reset token
// @Tags password
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and verification code"
// @Success 200 {object} dto.VerifyOTPResponse "OTP verified successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired code"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /rest-auth/password/reset/verify/ [post]
func (h *ForgotPasswordHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email, code := strings.TrimSpace(req.Email), strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Email and code are required")
		return
	}

	ctx := r.Context()
	user, err := h.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "User not found", "No account found with this email")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}

	v, err := h.store.LatestVerification(ctx, user.ID, user.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", "No verification code found")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	if !h.checkCode(w, v) {
		return
	}
	if v.Code != code {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid code", "The verification code you entered is incorrect")
		return
	}

	resetToken, err := middleware.GenerateResetToken(user.ID, user.Email, v.Code, h.jwt)
	if err != nil {
		writeServiceError(w, h.logger, fmt.Errorf("generate reset token: %w", err))
		return
	}
	h.metrics.TokenIssued("reset")

	utils.WriteJSONResponse(w, http.StatusOK, dto.VerifyOTPResponse{
		Message:    "OTP verified successfully",
		ResetToken: resetToken,
		ExpiresIn:  utils.HumanDuration(h.jwt.ResetTokenTTL),
	})
}

// ResetPassword resets user's password using reset token
// @Summary Reset password
// @Description Set a new password using the reset token from the verify step
// @Tags password
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.DetailResponse "Password reset successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired reset token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /rest-auth/password/reset/confirm/ [post]
func (h *ForgotPasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ResetToken == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing required fields", "Reset token is required")
		return
	}

	claims, err := middleware.ValidateResetToken(req.ResetToken, h.jwt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid reset token", err.Error())
		return
	}

	ctx := r.Context()
	v, err := h.store.FindVerification(ctx, claims.UserID, claims.Email, claims.Code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid verification", "No matching verification found")
			return
		}
		writeServiceError(w, h.logger, err)
		return
	}
	// The reset token's own expiry governs from here; only reuse is checked.
	if v.Used {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Code already used", "This verification code has already been used")
		return
	}

	if err := h.accounts.ResetPassword(ctx, claims.UserID, v.ID, req.NewPassword1, req.NewPassword2); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.DetailResponse{Detail: "Password has been reset with the new password."})
}

// checkCode rejects used or expired codes.
func (h *ForgotPasswordHandler) checkCode(w http.ResponseWriter, v *models.Verification) bool {
	if v.Used {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Code already used", "This verification code has already been used")
		return false
	}
	if h.now().After(v.ExpiresAt) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Code expired", "Verification code has expired. Please request a new one")
		return false
	}
	return true
}

// generateVerificationCode generates a random n-digit verification code
func generateVerificationCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}
