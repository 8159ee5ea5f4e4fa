package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/store"
)

func newGoogleTestHandler(t *testing.T) (*GoogleAuthHandler, *store.Memory, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:          "0123456789abcdef0123456789abcdef",
			ExpirationDelta: 5 * time.Minute,
			AllowRefresh:    true,
		},
		Account: config.AccountConfig{
			UsernameMinLength: 1,
			UsernameMaxLength: 150,
			UniqueEmail:       true,
			EmailVerification: config.EmailVerificationNone,
			PasswordMinLength: 8,
		},
		GoogleOAuth: config.GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8080/api/auth/google/callback",
			FrontendURL:  "http://localhost:8081/callback",
		},
	}
	st := store.NewMemory()
	svc := accounts.NewService(st, nil, cfg.Account, zap.NewNop(), nil)
	h := NewGoogleAuthHandler(svc, cfg, zap.NewNop(), nil)
	h.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		if code != "good-code" {
			return nil, errors.New("bad code")
		}
		return &oauth2.Token{AccessToken: "access"}, nil
	}
	h.userInfo = func(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
		return &dto.GoogleUserInfo{Email: "sam@gmail.com", GivenName: "Sam", FamilyName: "Lee", Verified: true}, nil
	}
	return h, st, cfg
}

func callback(h *GoogleAuthHandler, query, cookieState string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookieState})
	}
	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, req)
	return rec
}

func TestGoogleLoginSetsState(t *testing.T) {
	h, _, _ := newGoogleTestHandler(t)

	rec := httptest.NewRecorder()
	h.GoogleLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body dto.GoogleLoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.AuthURL, "accounts.google.com")
	assert.Contains(t, body.AuthURL, "state="+body.State)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, body.State, cookies[0].Value)
}

func TestGoogleCallbackCreatesUser(t *testing.T) {
	h, st, cfg := newGoogleTestHandler(t)

	rec := callback(h, "code=good-code&state=s1", "s1")
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8081", loc.Host)
	q := loc.Query()
	assert.Equal(t, "sam", q.Get("username"))
	assert.Equal(t, "true", q.Get("created"))

	claims, err := middleware.ValidateToken(q.Get("token"), &cfg.JWT)
	require.NoError(t, err)

	user, err := st.GetUserWithProfile(context.Background(), claims.UserID)
	require.NoError(t, err)
	assert.Nil(t, user.Profile, "social signups start without details")
	assert.False(t, user.HasUsablePassword())

	rec = callback(h, "code=good-code&state=s2", "s2")
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err = url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "false", loc.Query().Get("created"))
}

func TestGoogleCallbackRejects(t *testing.T) {
	h, _, _ := newGoogleTestHandler(t)

	assert.Equal(t, http.StatusBadRequest, callback(h, "state=s1", "s1").Code, "missing code")
	assert.Equal(t, http.StatusBadRequest, callback(h, "code=good-code&state=s1", "").Code, "missing cookie")
	assert.Equal(t, http.StatusBadRequest, callback(h, "code=good-code&state=s1", "other").Code, "state mismatch")
	assert.Equal(t, http.StatusUnauthorized, callback(h, "code=bad&state=s1", "s1").Code, "exchange failure")
}

func TestGoogleCallbackRefusesUnverifiedTakeover(t *testing.T) {
	h, st, _ := newGoogleTestHandler(t)
	existing := &models.User{Username: "sam", Email: "sam@gmail.com", PasswordHash: "hash", IsActive: true}
	require.NoError(t, st.CreateUser(context.Background(), existing))

	h.userInfo = func(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
		return &dto.GoogleUserInfo{Email: "sam@gmail.com", Verified: false}, nil
	}

	rec := callback(h, "code=good-code&state=s1", "s1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}
