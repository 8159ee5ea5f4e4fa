package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/store"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return false
	}
	return true
}

// writeNonFieldError reports a 400 whose message is not tied to one field.
func writeNonFieldError(w http.ResponseWriter, msg string) {
	utils.WriteFieldErrors(w, http.StatusBadRequest, msg, map[string][]string{dto.NonFieldErrors: {msg}})
}

// writeServiceError maps account and store errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *accounts.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteFieldErrors(w, http.StatusBadRequest, "Please correct the errors below", verr.Fields)
	case errors.Is(err, store.ErrNotFound):
		utils.WriteErrorResponse(w, http.StatusNotFound, "Not found", "The requested user does not exist")
	default:
		logger.Error("request failed", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Something went wrong")
	}
}

func toUserDetails(p *models.Profile) *dto.UserDetails {
	if p == nil {
		return nil
	}
	out := &dto.UserDetails{
		DateOfBirth: p.DateOfBirth.Format(models.DateLayout),
		MobileNo:    p.MobileNo,
		ExtraPhone:  json.RawMessage("null"),
	}
	if p.HasExtraPhone() {
		out.ExtraPhone = p.ExtraPhone
	}
	return out
}

func toUserDetailsResponse(u *models.UserWithProfile) dto.UserDetailsResponse {
	return dto.UserDetailsResponse{
		PK:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		UserDetails: toUserDetails(u.Profile),
	}
}

func toUserListItem(u *models.UserWithProfile) dto.UserListItem {
	item := dto.UserListItem{
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		ExtraPhone: json.RawMessage("null"),
	}
	if u.Profile != nil {
		dob := u.Profile.DateOfBirth.Format(models.DateLayout)
		mobile := strconv.FormatInt(int64(u.Profile.MobileNo), 10)
		item.DateOfBirth = &dob
		item.MobileNo = &mobile
		if u.Profile.HasExtraPhone() {
			item.ExtraPhone = u.Profile.ExtraPhone
		}
	}
	return item
}
