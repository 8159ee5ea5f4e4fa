package middleware

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"USER_REGISTRATION_BACK-END/internal/config"
)

const (
	resetTokenIssuer  = "user-registration"
	resetTokenSubject = "password_reset"
)

// ResetTokenClaims ties a password reset to the verified code it came from.
// The issuer and subject keep access tokens from being accepted in its place.
type ResetTokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Code   string `json:"code"`
	jwt.RegisteredClaims
}

// GenerateResetToken is handed out once a reset code has been verified and
// lives for cfg.ResetTokenTTL.
func GenerateResetToken(userID int64, email, code string, cfg *config.JWTConfig) (string, error) {
	now := time.Now()
	return sign(&ResetTokenClaims{
		UserID: userID,
		Email:  email,
		Code:   code,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    resetTokenIssuer,
			Subject:   resetTokenSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ResetTokenTTL)),
		},
	}, cfg)
}

func ValidateResetToken(tokenString string, cfg *config.JWTConfig) (*ResetTokenClaims, error) {
	return parseClaims(tokenString, &ResetTokenClaims{}, cfg,
		jwt.WithIssuer(resetTokenIssuer), jwt.WithSubject(resetTokenSubject))
}
