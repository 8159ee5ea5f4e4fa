package dto

import "encoding/json"

// UserDetailsPayload is the nested user_details object accepted on
// registration and on user updates. Pointer fields distinguish an absent
// key from a zero value; ExtraPhone is nil when absent and "null" when
// explicitly null.
type UserDetailsPayload struct {
	DateOfBirth *string         `json:"date_of_birth" example:"1990-04-21"`
	MobileNo    *json.Number    `json:"mobile_no" swaggertype:"integer" example:"5551234"`
	ExtraPhone  json.RawMessage `json:"extra_phone" swaggertype:"object"`
}

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Username    string              `json:"username" example:"jane"`
	Email       string              `json:"email" example:"jane@example.com"`
	Password1   string              `json:"password1" example:"s3cure-Passw0rd"`
	Password2   string              `json:"password2" example:"s3cure-Passw0rd"`
	FirstName   string              `json:"first_name" example:"Jane"`
	LastName    string              `json:"last_name" example:"Doe"`
	UserDetails *UserDetailsPayload `json:"user_details"`
}

// VerifyEmailRequest confirms an e-mail address with the mailed key
type VerifyEmailRequest struct {
	Key string `json:"key"`
}
