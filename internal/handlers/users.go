package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/store"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

// UsersHandler serves the read-only user listing
type UsersHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewUsersHandler creates a new UsersHandler instance
func NewUsersHandler(st store.Store, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{store: st, logger: logger}
}

// List returns every user with flattened details
// @Summary List users
// @Description All users, newest first unless ordering is given. mobile_no is rendered as a string.
// @Tags users
// @Produce json
// @Param ordering query string false "id, username, email, first_name or last_name, prefix - for descending" default(-id)
// @Success 200 {array} dto.UserListItem
// @Failure 400 {object} dto.ErrorResponse "Unknown ordering field"
// @Router /api/users/ [get]
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	order, err := store.ParseOrdering(r.URL.Query().Get("ordering"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid ordering", err.Error())
		return
	}

	users, err := h.store.ListUsers(r.Context(), order)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	items := make([]dto.UserListItem, 0, len(users))
	for i := range users {
		items = append(items, toUserListItem(&users[i]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, items)
}

// Retrieve returns one user
// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} dto.UserListItem
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/users/{id}/ [get]
func (h *UsersHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "The requested user does not exist")
		return
	}

	user, err := h.store.GetUserWithProfile(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("failed to load user", zap.Int64("user_id", id), zap.Error(err))
		}
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, toUserListItem(user))
}
