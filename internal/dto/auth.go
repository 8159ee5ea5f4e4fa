package dto

// TokenObtainRequest represents the request payload for /rest-auth/auth-token/
type TokenObtainRequest struct {
	Username string `json:"username" example:"jane"`
	Password string `json:"password" example:"s3cure-Passw0rd"`
}

// TokenRefreshRequest represents the request payload for /rest-auth/refresh-token/
type TokenRefreshRequest struct {
	Token string `json:"token"`
}

// TokenResponse carries a freshly issued JWT
type TokenResponse struct {
	Token string `json:"token"`
}

// LoginRequest represents the request payload for user login.
// Either username or email identifies the account.
type LoginRequest struct {
	Username string `json:"username,omitempty" example:"jane"`
	Email    string `json:"email,omitempty" example:"jane@example.com"`
	Password string `json:"password" example:"s3cure-Passw0rd"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string              `json:"token"`
	User  UserDetailsResponse `json:"user"`
}

// DetailResponse is a plain acknowledgement
type DetailResponse struct {
	Detail string `json:"detail"`
}

// NonFieldErrors is the key for validation messages not tied to one field.
const NonFieldErrors = "non_field_errors"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}
