package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/revocation"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:                 "0123456789abcdef0123456789abcdef",
		ExpirationDelta:        5 * time.Minute,
		RefreshExpirationDelta: 7 * 24 * time.Hour,
		AllowRefresh:           true,
		ResetTokenTTL:          10 * time.Minute,
	}
}

var testUser = &models.User{ID: 7, Username: "jane", Email: "jane@example.com"}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateToken(testUser, cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "jane", claims.Username)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, claims.IssuedAt.Unix(), claims.OrigIat)

	other := *cfg
	other.Secret = "ffffffffffffffffffffffffffffffff"
	_, err = ValidateToken(token, &other)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := issueToken(testUser, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour).Unix(), cfg)
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	cfg := testJWTConfig()
	claims := JWTClaims{
		UserID:           testUser.ID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(token, cfg)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestRefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	origIat := time.Now().Add(-time.Hour).Unix()
	claims := &JWTClaims{UserID: testUser.ID, OrigIat: origIat}

	t.Run("keeps orig_iat", func(t *testing.T) {
		token, err := RefreshToken(claims, testUser, cfg, time.Now())
		require.NoError(t, err)

		refreshed, err := ValidateToken(token, cfg)
		require.NoError(t, err)
		assert.Equal(t, origIat, refreshed.OrigIat)
	})

	t.Run("refused after the refresh window", func(t *testing.T) {
		_, err := RefreshToken(claims, testUser, cfg, time.Unix(origIat, 0).Add(8*24*time.Hour))
		assert.ErrorIs(t, err, ErrRefreshExpired)
	})

	t.Run("refused without orig_iat", func(t *testing.T) {
		_, err := RefreshToken(&JWTClaims{UserID: 7}, testUser, cfg, time.Now())
		assert.ErrorIs(t, err, ErrOrigIatMissing)
	})

	t.Run("refused when disabled", func(t *testing.T) {
		disabled := *cfg
		disabled.AllowRefresh = false
		_, err := RefreshToken(claims, testUser, &disabled, time.Now())
		assert.ErrorIs(t, err, ErrRefreshDisabled)
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testJWTConfig()
	revoked := revocation.NewMemory()

	var gotID int64
	handler := AuthMiddleware(cfg, revoked, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := GenerateToken(testUser, cfg)
	require.NoError(t, err)

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve("").Code)
	assert.Equal(t, http.StatusUnauthorized, serve("Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve("Bearer not-a-jwt").Code)

	for _, prefix := range []string{"Bearer ", "JWT "} {
		gotID = 0
		rec := serve(prefix + token)
		assert.Equal(t, http.StatusNoContent, rec.Code, prefix)
		assert.Equal(t, int64(7), gotID)
	}

	claims, err := ValidateToken(token, cfg)
	require.NoError(t, err)
	require.NoError(t, revoked.Revoke(context.Background(), claims.ID, time.Minute))

	rec := serve("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoked")
}

func TestResetToken(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateResetToken(7, "jane@example.com", "123456", cfg)
	require.NoError(t, err)

	claims, err := ValidateResetToken(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "123456", claims.Code)

	access, err := GenerateToken(testUser, cfg)
	require.NoError(t, err)
	_, err = ValidateResetToken(access, cfg)
	assert.Error(t, err, "an access token must not pass as a reset token")
}

func TestClaimsContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &JWTClaims{UserID: 42, Username: "jane"})
	id, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	claims, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "jane", claims.Username)
}
