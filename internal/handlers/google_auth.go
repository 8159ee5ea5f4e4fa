package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/dto"
	"USER_REGISTRATION_BACK-END/internal/metrics"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

const oauthStateCookie = "oauth_state"

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	accounts     *accounts.Service
	oauth2Config *oauth2.Config
	jwt          *config.JWTConfig
	frontendURL  string
	logger       *zap.Logger
	metrics      *metrics.Metrics

	exchange func(ctx context.Context, code string) (*oauth2.Token, error)
	userInfo func(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error)
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(svc *accounts.Service, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *GoogleAuthHandler {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleOAuth.ClientID,
		ClientSecret: cfg.GoogleOAuth.ClientSecret,
		RedirectURL:  cfg.GoogleOAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	h := &GoogleAuthHandler{
		accounts:     svc,
		oauth2Config: oauth2Config,
		jwt:          &cfg.JWT,
		frontendURL:  cfg.GoogleOAuth.FrontendURL,
		logger:       logger,
		metrics:      m,
	}
	h.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return oauth2Config.Exchange(ctx, code)
	}
	h.userInfo = h.getGoogleUserInfo
	return h
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow. The state is also set as a cookie and checked on callback.
// @Tags social
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Router /api/auth/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSONResponse(w, http.StatusOK, dto.GoogleLoginResponse{
		AuthURL: h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline),
		State:   state,
	})
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Exchange the authorization code, find or create the user by e-mail and redirect to the frontend with a JWT
// @Tags social
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State returned by the login step"
// @Success 302 "Redirect to the frontend"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid authorization code"
// @Failure 403 {object} dto.ErrorResponse "Unverified e-mail or disabled account"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/auth/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing authorization code", "Authorization code is required")
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid state", "OAuth state does not match")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	token, err := h.exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("google code exchange failed", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Invalid authorization code", "Could not exchange authorization code")
		return
	}

	info, err := h.userInfo(r.Context(), token)
	if err != nil {
		h.logger.Error("failed to get google user info", zap.Error(err))
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to get user info", "Could not read the Google profile")
		return
	}

	user, created, err := h.accounts.SocialSignup(r.Context(), *info)
	switch {
	case errors.Is(err, accounts.ErrSocialEmailMissing):
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing e-mail", "The Google account has no e-mail address")
		return
	case errors.Is(err, accounts.ErrSocialEmailUnverified):
		utils.WriteErrorResponse(w, http.StatusForbidden, "Unverified e-mail", "The Google e-mail address is not verified. Log in with your password instead.")
		return
	case errors.Is(err, accounts.ErrInactiveUser):
		utils.WriteErrorResponse(w, http.StatusForbidden, "Account disabled", "User account is disabled.")
		return
	case err != nil:
		writeServiceError(w, h.logger, err)
		return
	}

	jwtToken, err := middleware.GenerateToken(user, h.jwt)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.metrics.TokenIssued("access")
	h.metrics.Login(metrics.OutcomeSuccess)

	q := url.Values{}
	q.Set("token", jwtToken)
	q.Set("user_id", strconv.FormatInt(user.ID, 10))
	q.Set("email", user.Email)
	q.Set("username", user.Username)
	q.Set("provider", "google")
	q.Set("is_verified", strconv.FormatBool(info.Verified))
	q.Set("created", strconv.FormatBool(created))

	http.Redirect(w, r, h.frontendURL+"?"+q.Encode(), http.StatusFound)
}

// getGoogleUserInfo fetches user information from Google
func (h *GoogleAuthHandler) getGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(h.oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleUserInfo{
		ID:         userInfo.Id,
		Email:      userInfo.Email,
		Name:       userInfo.Name,
		GivenName:  userInfo.GivenName,
		FamilyName: userInfo.FamilyName,
		Picture:    userInfo.Picture,
		Verified:   verified,
	}, nil
}
