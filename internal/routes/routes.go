package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/handlers"
	"USER_REGISTRATION_BACK-END/internal/middleware"
	"USER_REGISTRATION_BACK-END/internal/revocation"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth           *handlers.AuthHandler
	Registration   *handlers.RegistrationHandler
	Users          *handlers.UsersHandler
	CurrentUser    *handlers.CurrentUserHandler
	ForgotPassword *handlers.ForgotPasswordHandler
	Google         *handlers.GoogleAuthHandler
	Health         *handlers.HealthHandler
}

// Options carries what the router needs besides the handlers.
type Options struct {
	JWT     *config.JWTConfig
	Revoked revocation.List
	Logger  *zap.Logger
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// SetupRoutes configures all application routes. Trailing slashes are
// optional on every path.
func SetupRoutes(h Handlers, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	requireAuth := middleware.AuthMiddleware(opts.JWT, opts.Revoked, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)

	// Health check routes
	r.Get("/healthz", h.Health.HealthCheck)
	r.Get("/livez", h.Health.LivenessCheck)
	r.Get("/readyz", h.Health.ReadinessCheck)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", h.Users.List)
		r.Get("/users/{id}", h.Users.Retrieve)

		r.Post("/user/registration", h.Registration.Register)
		r.Post("/user/registration/verify-email", h.Registration.VerifyEmail)

		if h.Google != nil {
			r.Get("/auth/google/login", h.Google.GoogleLogin)
			r.Get("/auth/google/callback", h.Google.GoogleCallback)
		}
	})

	r.Route("/rest-auth", func(r chi.Router) {
		r.Post("/auth-token", h.Auth.ObtainToken)
		r.Post("/refresh-token", h.Auth.RefreshToken)
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)

		r.Post("/password/reset", h.ForgotPassword.ForgotPassword)
		r.Post("/password/reset/verify", h.ForgotPassword.VerifyOTP)
		r.Post("/password/reset/confirm", h.ForgotPassword.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/user", h.CurrentUser.Get)
			r.Put("/user", h.CurrentUser.Update)
			r.Patch("/user", h.CurrentUser.PartialUpdate)
			r.Post("/password/change", h.Auth.PasswordChange)
		})
	})

	r.Route("/api-auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
	})

	// Swagger docs
	r.Get("/swagger-docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger-docs/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger-docs/*", httpSwagger.Handler(httpSwagger.URL("/swagger-docs/doc.json")))

	// Root route
	r.Get("/", rootHandler)

	return r
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("User registration backend is running."))
}
