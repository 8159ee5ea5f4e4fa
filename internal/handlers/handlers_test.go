package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/handlers"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/models"
	"USER_REGISTRATION_BACK-END/internal/revocation"
	"USER_REGISTRATION_BACK-END/internal/routes"
	"USER_REGISTRATION_BACK-END/internal/store"
)

type recordingMailer struct {
	mu    sync.Mutex
	keys  []string
	codes []string
}

func (m *recordingMailer) SendEmailConfirmation(to, username, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return nil
}

func (m *recordingMailer) SendPasswordResetCode(to, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, code)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:                 "0123456789abcdef0123456789abcdef",
			ExpirationDelta:        5 * time.Minute,
			RefreshExpirationDelta: 7 * 24 * time.Hour,
			AllowRefresh:           true,
			ResetTokenTTL:          10 * time.Minute,
		},
		Account: config.AccountConfig{
			UsernameMinLength:       1,
			UsernameMaxLength:       150,
			UniqueEmail:             true,
			EmailVerification:       config.EmailVerificationOptional,
			EmailConfirmationExpire: 72 * time.Hour,
			PasswordMinLength:       8,
			ResetCodeTTL:            3 * time.Minute,
		},
	}
}

type APISuite struct {
	suite.Suite
	cfg    *config.Config
	store  *store.Memory
	mailer *recordingMailer
	router http.Handler
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.build(config.EmailVerificationOptional)
}

func (s *APISuite) build(verification string) {
	s.cfg = testConfig()
	s.cfg.Account.EmailVerification = verification
	s.store = store.NewMemory()
	s.mailer = &recordingMailer{}
	logger := zap.NewNop()
	revoked := revocation.NewMemory()

	svc := accounts.NewService(s.store, s.mailer, s.cfg.Account, logger, nil)
	svc.SetHashCost(bcrypt.MinCost)

	s.router = routes.SetupRoutes(routes.Handlers{
		Auth:           handlers.NewAuthHandler(svc, s.store, &s.cfg.JWT, revoked, logger, nil),
		Registration:   handlers.NewRegistrationHandler(svc, &s.cfg.JWT, logger, nil),
		Users:          handlers.NewUsersHandler(s.store, logger),
		CurrentUser:    handlers.NewCurrentUserHandler(svc, s.store, logger),
		ForgotPassword: handlers.NewForgotPasswordHandler(s.store, svc, s.mailer, s.cfg, logger, nil),
		Google:         handlers.NewGoogleAuthHandler(svc, s.cfg, logger, nil),
		Health:         handlers.NewHealthHandler(s.store),
	}, routes.Options{JWT: &s.cfg.JWT, Revoked: revoked, Logger: logger})
}

func (s *APISuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func registration(username, email string) map[string]any {
	return map[string]any{
		"username":   username,
		"email":      email,
		"password1":  "violet-Harbor-42",
		"password2":  "violet-Harbor-42",
		"first_name": "Jane",
		"last_name":  "Doe",
		"user_details": map[string]any{
			"date_of_birth": "1990-04-21",
			"mobile_no":     5551234,
			"extra_phone":   map[string]string{"work": "555-0000"},
		},
	}
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		PK          int64  `json:"pk"`
		Username    string `json:"username"`
		Email       string `json:"email"`
		FirstName   string `json:"first_name"`
		UserDetails *struct {
			DateOfBirth string          `json:"date_of_birth"`
			MobileNo    int32           `json:"mobile_no"`
			ExtraPhone  json.RawMessage `json:"extra_phone"`
		} `json:"user_details"`
	} `json:"user"`
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

func (s *APISuite) register(username, email string) authBody {
	rec := s.do(http.MethodPost, "/api/user/registration/", registration(username, email), "")
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var out authBody
	s.decode(rec, &out)
	return out
}

func (s *APISuite) TestRegisterReturnsTokenAndUser() {
	out := s.register("jane", "jane@example.com")

	s.NotEmpty(out.Token)
	s.Equal("jane", out.User.Username)
	s.Require().NotNil(out.User.UserDetails)
	s.Equal("1990-04-21", out.User.UserDetails.DateOfBirth)
	s.Equal(int32(5551234), out.User.UserDetails.MobileNo)
	s.JSONEq(`{"work":"555-0000"}`, string(out.User.UserDetails.ExtraPhone))

	claims, err := middleware.ValidateToken(out.Token, &s.cfg.JWT)
	s.Require().NoError(err)
	s.Equal(out.User.PK, claims.UserID)
}

func (s *APISuite) TestRegisterWithoutTrailingSlash() {
	rec := s.do(http.MethodPost, "/api/user/registration", registration("jane", "jane@example.com"), "")
	s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *APISuite) TestRegisterPasswordMismatch() {
	body := registration("jane", "jane@example.com")
	body["password2"] = "something-else-9"

	rec := s.do(http.MethodPost, "/api/user/registration/", body, "")
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var out errorBody
	s.decode(rec, &out)
	s.Equal([]string{"The two password fields didn't match."}, out.Fields["non_field_errors"])
}

func (s *APISuite) TestRegisterDuplicateEmail() {
	s.register("jane", "jane@example.com")

	rec := s.do(http.MethodPost, "/api/user/registration/", registration("janet", "Jane@Example.com"), "")
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	var out errorBody
	s.decode(rec, &out)
	s.Equal([]string{"A user is already registered with this e-mail address."}, out.Fields["email"])
}

func (s *APISuite) TestRegisterAcceptsNumericStringMobile() {
	body := registration("jane", "jane@example.com")
	body["user_details"].(map[string]any)["mobile_no"] = "42"
	out := s.do(http.MethodPost, "/api/user/registration/", body, "")
	s.Require().Equal(http.StatusCreated, out.Code, out.Body.String())
}

func (s *APISuite) TestRegisterMandatoryVerification() {
	s.build(config.EmailVerificationMandatory)

	rec := s.do(http.MethodPost, "/api/user/registration/", registration("jane", "jane@example.com"), "")
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.JSONEq(`{"detail":"Verification e-mail sent."}`, rec.Body.String())

	login := map[string]string{"username": "jane", "password": "violet-Harbor-42"}
	rec = s.do(http.MethodPost, "/rest-auth/login/", login, "")
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "E-mail is not verified.")

	s.Require().Len(s.mailer.keys, 1)
	rec = s.do(http.MethodPost, "/api/user/registration/verify-email/", map[string]string{"key": s.mailer.keys[0]}, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"detail":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/rest-auth/login/", login, "")
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *APISuite) TestVerifyEmailUnknownKey() {
	rec := s.do(http.MethodPost, "/api/user/registration/verify-email/", map[string]string{"key": "8c1f6b7e-0000-4000-8000-000000000000"}, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestListUsers() {
	s.register("alpha", "alpha@example.com")
	s.register("bravo", "bravo@example.com")
	s.Require().NoError(s.store.CreateUser(context.Background(), &models.User{Username: "social", Email: "social@example.com", PasswordHash: "!x", IsActive: true}))

	rec := s.do(http.MethodGet, "/api/users/", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var items []map[string]any
	s.decode(rec, &items)
	s.Require().Len(items, 3)
	s.Equal("social", items[0]["username"])
	s.Equal("bravo", items[1]["username"])
	s.Equal("alpha", items[2]["username"])

	s.Nil(items[0]["mobile_no"])
	s.Nil(items[0]["date_of_birth"])
	s.Equal("5551234", items[1]["mobile_no"])
	s.Equal("1990-04-21", items[1]["date_of_birth"])
	s.NotContains(items[1], "password_hash")

	s.Run("ordering by username", func() {
		rec := s.do(http.MethodGet, "/api/users/?ordering=username", nil, "")
		s.Require().Equal(http.StatusOK, rec.Code)
		var items []map[string]any
		s.decode(rec, &items)
		s.Equal("alpha", items[0]["username"])
	})

	s.Run("unknown ordering", func() {
		rec := s.do(http.MethodGet, "/api/users/?ordering=password_hash", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *APISuite) TestListUsersEmpty() {
	rec := s.do(http.MethodGet, "/api/users/", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *APISuite) TestRetrieveUser() {
	out := s.register("jane", "jane@example.com")

	rec := s.do(http.MethodGet, "/api/users/"+jsonNumber(out.User.PK)+"/", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"username":"jane"`)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/users/999/", nil, "").Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/users/abc/", nil, "").Code)
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func (s *APISuite) TestCurrentUser() {
	out := s.register("jane", "jane@example.com")

	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/rest-auth/user/", nil, "").Code)

	rec := s.do(http.MethodGet, "/rest-auth/user/", nil, out.Token)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"pk":`)

	s.Run("full update overwrites details", func() {
		rec := s.do(http.MethodPut, "/rest-auth/user/", map[string]any{
			"username":   "jane",
			"first_name": "Janet",
			"last_name":  "Doe",
			"email":      "ignored@example.com",
			"user_details": map[string]any{
				"date_of_birth": "1991-02-03",
				"mobile_no":     77,
				"extra_phone":   nil,
			},
		}, out.Token)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var got authBody
		s.Require().NoError(json.Unmarshal([]byte(`{"user":`+rec.Body.String()+`}`), &got))
		s.Equal("Janet", got.User.FirstName)
		s.Equal("jane@example.com", got.User.Email)
		s.Require().NotNil(got.User.UserDetails)
		s.Equal("1991-02-03", got.User.UserDetails.DateOfBirth)
		s.Equal(int32(77), got.User.UserDetails.MobileNo)
		s.JSONEq(`null`, string(got.User.UserDetails.ExtraPhone))
	})

	s.Run("partial update", func() {
		rec := s.do(http.MethodPatch, "/rest-auth/user/", map[string]any{"last_name": "Smith"}, out.Token)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.Contains(rec.Body.String(), `"last_name":"Smith"`)
		s.Contains(rec.Body.String(), `"mobile_no":77`)
	})

	s.Run("invalid details", func() {
		rec := s.do(http.MethodPatch, "/rest-auth/user/", map[string]any{
			"user_details": map[string]any{"date_of_birth": "yesterday"},
		}, out.Token)
		s.Require().Equal(http.StatusBadRequest, rec.Code)
		var body errorBody
		s.decode(rec, &body)
		s.Contains(body.Fields, "user_details.date_of_birth")
	})
}

func (s *APISuite) TestLogin() {
	s.register("jane", "jane@example.com")

	for _, body := range []map[string]string{
		{"username": "jane", "password": "violet-Harbor-42"},
		{"email": "jane@example.com", "password": "violet-Harbor-42"},
	} {
		rec := s.do(http.MethodPost, "/rest-auth/login/", body, "")
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var out authBody
		s.decode(rec, &out)
		s.NotEmpty(out.Token)
		s.Equal("jane", out.User.Username)
	}

	rec := s.do(http.MethodPost, "/api-auth/login/", map[string]string{"username": "jane", "password": "wrong-password"}, "")
	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "Unable to log in with provided credentials.")
}

func (s *APISuite) TestObtainAndRefreshToken() {
	s.register("jane", "jane@example.com")

	rec := s.do(http.MethodPost, "/rest-auth/auth-token/", map[string]string{"username": "jane", "password": "violet-Harbor-42"}, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var first struct{ Token string }
	s.decode(rec, &first)

	rec = s.do(http.MethodPost, "/rest-auth/refresh-token/", map[string]string{"token": first.Token}, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var second struct{ Token string }
	s.decode(rec, &second)

	a, err := middleware.ValidateToken(first.Token, &s.cfg.JWT)
	s.Require().NoError(err)
	b, err := middleware.ValidateToken(second.Token, &s.cfg.JWT)
	s.Require().NoError(err)
	s.Equal(a.OrigIat, b.OrigIat)
	s.NotEqual(a.ID, b.ID)

	rec = s.do(http.MethodPost, "/rest-auth/refresh-token/", map[string]string{"token": "garbage"}, "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestLogoutRevokesToken() {
	out := s.register("jane", "jane@example.com")

	rec := s.do(http.MethodPost, "/rest-auth/logout/", nil, out.Token)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"detail":"Successfully logged out."}`, rec.Body.String())

	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/rest-auth/user/", nil, out.Token).Code)

	rec = s.do(http.MethodPost, "/rest-auth/refresh-token/", map[string]string{"token": out.Token}, "")
	s.Equal(http.StatusBadRequest, rec.Code)

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/api-auth/logout/", nil, "").Code)
}

func (s *APISuite) TestPasswordChange() {
	out := s.register("jane", "jane@example.com")

	rec := s.do(http.MethodPost, "/rest-auth/password/change/", map[string]string{
		"old_password":  "violet-Harbor-42",
		"new_password1": "amber-Canyon-77",
		"new_password2": "amber-Canyon-77",
	}, out.Token)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/rest-auth/login/", map[string]string{"username": "jane", "password": "amber-Canyon-77"}, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestPasswordResetFlow() {
	s.register("jane", "jane@example.com")

	rec := s.do(http.MethodPost, "/rest-auth/password/reset/", map[string]string{"email": "jane@example.com"}, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().Len(s.mailer.codes, 1)
	code := s.mailer.codes[0]
	s.Len(code, 6)

	rec = s.do(http.MethodPost, "/rest-auth/password/reset/", map[string]string{"email": "jane@example.com"}, "")
	s.Equal(http.StatusTooManyRequests, rec.Code)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rec = s.do(http.MethodPost, "/rest-auth/password/reset/verify/", map[string]string{"email": "jane@example.com", "code": wrong}, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/rest-auth/password/reset/verify/", map[string]string{"email": "jane@example.com", "code": code}, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var verified struct {
		ResetToken string `json:"reset_token"`
	}
	s.decode(rec, &verified)

	confirm := map[string]string{
		"reset_token":   verified.ResetToken,
		"new_password1": "amber-Canyon-77",
		"new_password2": "amber-Canyon-77",
	}
	rec = s.do(http.MethodPost, "/rest-auth/password/reset/confirm/", confirm, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/rest-auth/password/reset/confirm/", confirm, "")
	s.Equal(http.StatusUnauthorized, rec.Code, "a reset code is single use")

	rec = s.do(http.MethodPost, "/rest-auth/login/", map[string]string{"username": "jane", "password": "amber-Canyon-77"}, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestPasswordResetUnknownEmail() {
	rec := s.do(http.MethodPost, "/rest-auth/password/reset/", map[string]string{"email": "nobody@example.com"}, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestHealth() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", nil, "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/livez", nil, "").Code)

	rec := s.do(http.MethodGet, "/readyz", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ready","details":{"db":"ok"}}`, rec.Body.String())
}

func (s *APISuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/user/registration/", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}
