package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/revocation"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

var (
	ErrMissingAuthHeader = errors.New("authorization header required")
	ErrBadAuthHeader     = errors.New("invalid authorization header format")
	ErrRefreshDisabled   = errors.New("token refresh is disabled")
	ErrOrigIatMissing    = errors.New("orig_iat field is required")
	ErrRefreshExpired    = errors.New("refresh has expired")
)

// JWTClaims represents the claims in the JWT token
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// OrigIat is the issue time of the first token in a refresh chain.
	OrigIat int64 `json:"orig_iat,omitempty"`
	jwt.RegisteredClaims
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

// GenerateToken generates a JWT token for the given user
func GenerateToken(user *models.User, cfg *config.JWTConfig) (string, error) {
	now := time.Now()
	return issueToken(user, now, now.Unix(), cfg)
}

func issueToken(user *models.User, now time.Time, origIat int64, cfg *config.JWTConfig) (string, error) {
	claims := JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if cfg.AllowRefresh {
		claims.OrigIat = origIat
	}

	return sign(claims, cfg)
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string, cfg *config.JWTConfig) (*JWTClaims, error) {
	return parseClaims(tokenString, &JWTClaims{}, cfg)
}

func sign(claims jwt.Claims, cfg *config.JWTConfig) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// parseClaims verifies an HS256 token signed with cfg.Secret into claims.
func parseClaims[C jwt.Claims](tokenString string, claims C, cfg *config.JWTConfig, opts ...jwt.ParserOption) (C, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, jwt.ErrTokenMalformed
	}
	return claims, nil
}

// RefreshToken issues a new token for user from verified claims. The new
// token keeps orig_iat and is refused once now is past
// orig_iat + RefreshExpirationDelta.
func RefreshToken(claims *JWTClaims, user *models.User, cfg *config.JWTConfig, now time.Time) (string, error) {
	if !cfg.AllowRefresh {
		return "", ErrRefreshDisabled
	}
	if claims.OrigIat == 0 {
		return "", ErrOrigIatMissing
	}
	limit := time.Unix(claims.OrigIat, 0).Add(cfg.RefreshExpirationDelta)
	if now.After(limit) {
		return "", ErrRefreshExpired
	}
	return issueToken(user, now, claims.OrigIat, cfg)
}

// BearerToken extracts the token from "Bearer <token>" or "JWT <token>".
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	tokenParts := strings.Fields(authHeader)
	if len(tokenParts) != 2 || (tokenParts[0] != "Bearer" && tokenParts[0] != "JWT") {
		return "", ErrBadAuthHeader
	}
	return tokenParts[1], nil
}

// Remaining is how long the token stays valid after now.
func (c *JWTClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// AuthMiddleware validates JWT tokens in the Authorization header and
// rejects tokens whose jti is on the revocation list.
func AuthMiddleware(cfg *config.JWTConfig, revoked revocation.List, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := BearerToken(r)
			if err != nil {
				msg := "Invalid authorization header format"
				if errors.Is(err, ErrMissingAuthHeader) {
					msg = "Authorization header required"
				}
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", msg)
				return
			}

			claims, err := ValidateToken(tokenString, cfg)
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "Signature has expired."
				}
				utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", msg)
				return
			}

			if revoked != nil && claims.ID != "" {
				isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.Error("revocation lookup failed", zap.Error(err))
					utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "Could not verify token")
					return
				}
				if isRevoked {
					utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Token has been revoked")
					return
				}
			}

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*JWTClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*JWTClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user's ID.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

// WithClaims stores claims on ctx for ClaimsFromContext.
func WithClaims(ctx context.Context, claims *JWTClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
