package dto

// PasswordChangeRequest represents POST /rest-auth/password/change/
type PasswordChangeRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

// ForgotPasswordRequest represents the request to send a reset code
type ForgotPasswordRequest struct {
	Email string `json:"email" example:"jane@example.com"`
}

// ForgotPasswordResponse represents the response after the code is sent
type ForgotPasswordResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expires_in"`
}

// VerifyOTPRequest represents the request to exchange a code for a reset token
type VerifyOTPRequest struct {
	Email string `json:"email" example:"jane@example.com"`
	Code  string `json:"code" example:"123456"`
}

// VerifyOTPResponse carries the short-lived reset token
type VerifyOTPResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token"`
	ExpiresIn  string `json:"expires_in"`
}

// ResetPasswordRequest represents the final reset step
type ResetPasswordRequest struct {
	ResetToken   string `json:"reset_token"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}
