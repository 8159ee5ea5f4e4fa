package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"USER_REGISTRATION_BACK-END/internal/models"
)

func TestToUserListItem(t *testing.T) {
	dob := time.Date(1990, 4, 21, 0, 0, 0, 0, time.UTC)

	withProfile := &models.UserWithProfile{
		User:    models.User{ID: 1, Username: "jane", Email: "jane@example.com"},
		Profile: &models.Profile{DateOfBirth: dob, MobileNo: -12, ExtraPhone: json.RawMessage(`["1","2"]`)},
	}
	item := toUserListItem(withProfile)
	if assert.NotNil(t, item.MobileNo) {
		assert.Equal(t, "-12", *item.MobileNo)
	}
	if assert.NotNil(t, item.DateOfBirth) {
		assert.Equal(t, "1990-04-21", *item.DateOfBirth)
	}
	assert.JSONEq(t, `["1","2"]`, string(item.ExtraPhone))

	bare := toUserListItem(&models.UserWithProfile{User: models.User{ID: 2, Username: "sam"}})
	assert.Nil(t, bare.MobileNo)
	assert.Nil(t, bare.DateOfBirth)
	assert.JSONEq(t, `null`, string(bare.ExtraPhone))
}

func TestGenerateVerificationCode(t *testing.T) {
	code, err := generateVerificationCode(resetCodeLength)
	assert.NoError(t, err)
	assert.Len(t, code, resetCodeLength)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', code)
	}
}
