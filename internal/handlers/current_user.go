package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/store"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

// CurrentUserHandler handles /rest-auth/user/ for the authenticated user
type CurrentUserHandler struct {
	accounts *accounts.Service
	store    store.Store
	logger   *zap.Logger
}

// NewCurrentUserHandler creates a new CurrentUserHandler instance
func NewCurrentUserHandler(svc *accounts.Service, st store.Store, logger *zap.Logger) *CurrentUserHandler {
	return &CurrentUserHandler{accounts: svc, store: st, logger: logger}
}

// Get returns the authenticated user
// @Summary      Get current user
// @Description  The authenticated user with nested user_details (Bearer JWT required)
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserDetailsResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /rest-auth/user/ [get]
func (h *CurrentUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Authentication credentials were not provided.")
		return
	}

	user, err := h.store.GetUserWithProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toUserDetailsResponse(user))
}

// Update replaces the authenticated user's fields and details
// @Summary      Update current user
// @Description  Full update. date_of_birth, mobile_no and extra_phone on the linked details are overwritten. E-mail is read-only.
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.UserUpdateRequest  true  "User payload"
// @Success      200      {object}  dto.UserDetailsResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Router       /rest-auth/user/ [put]
func (h *CurrentUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// PartialUpdate applies only the fields present in the payload
// @Summary      Partially update current user
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      dto.UserUpdateRequest  true  "Fields to change"
// @Success      200      {object}  dto.UserDetailsResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Router       /rest-auth/user/ [patch]
func (h *CurrentUserHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *CurrentUserHandler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Authentication credentials were not provided.")
		return
	}

	var req dto.UserUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.UpdateUser(r.Context(), userID, req, partial)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toUserDetailsResponse(user))
}
