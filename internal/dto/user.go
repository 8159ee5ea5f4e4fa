package dto

import "encoding/json"

// UserDetails is the user_details object in responses
type UserDetails struct {
	DateOfBirth string          `json:"date_of_birth" example:"1990-04-21"`
	MobileNo    int32           `json:"mobile_no" example:"5551234"`
	ExtraPhone  json.RawMessage `json:"extra_phone" swaggertype:"object"`
}

// UserDetailsResponse represents the authenticated user with nested details
type UserDetailsResponse struct {
	PK          int64        `json:"pk"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	UserDetails *UserDetails `json:"user_details"`
}

// UserUpdateRequest represents PUT/PATCH /rest-auth/user/. Email is read-only.
type UserUpdateRequest struct {
	Username    *string             `json:"username"`
	FirstName   *string             `json:"first_name"`
	LastName    *string             `json:"last_name"`
	UserDetails *UserDetailsPayload `json:"user_details"`
}

// UserListItem is one entry of GET /api/users/. Profile fields are flattened
// and null when the user has no details; mobile_no is rendered as text.
type UserListItem struct {
	Username    string          `json:"username"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	DateOfBirth *string         `json:"date_of_birth"`
	Email       string          `json:"email"`
	MobileNo    *string         `json:"mobile_no"`
	ExtraPhone  json.RawMessage `json:"extra_phone" swaggertype:"object"`
}
