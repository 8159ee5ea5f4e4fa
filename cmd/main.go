// @title User Registration Backend API
// @version 1.0
// @description Registration, JWT authentication and user listing backed by PostgreSQL
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "USER_REGISTRATION_BACK-END/docs" // This is required for swagger
	"USER_REGISTRATION_BACK-END/internal/accounts"
	"USER_REGISTRATION_BACK-END/internal/config"
	"USER_REGISTRATION_BACK-END/internal/handlers"
	"USER_REGISTRATION_BACK-END/internal/logger"
	"USER_REGISTRATION_BACK-END/internal/metrics"
	"USER_REGISTRATION_BACK-END/internal/revocation"
	"USER_REGISTRATION_BACK-END/internal/routes"
	"USER_REGISTRATION_BACK-END/internal/store"
	"USER_REGISTRATION_BACK-END/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()
	for _, w := range cfg.Warnings() {
		logg.Warn(w)
	}

	if err := run(cfg, logg); err != nil {
		logg.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logg *zap.Logger) error {
	ctx := context.Background()

	// pgxpool + simple protocol (required behind PgBouncer)
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return err
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "user-registration-backend"
	poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.Database.QueryTimeout.Milliseconds(), 10)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	{
		pingCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return err
		}
	}
	logg.Info("connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx, pool); err != nil {
			return err
		}
	}
	st := store.NewPostgres(pool)

	// Revoked tokens live in Redis when configured so every instance sees them.
	var revoked revocation.List = revocation.NewMemory()
	var redisCheck handlers.Pinger
	if cfg.Redis.URL != "" {
		client, err := revocation.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		rl := revocation.NewRedis(client)
		revoked, redisCheck = rl, rl
		logg.Info("token revocation backed by redis")
	} else {
		logg.Warn("REDIS_URL not set, revoked tokens are kept in process memory")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		accountMailer accounts.Mailer
		codeSender    handlers.CodeSender
	)
	if cfg.IsEmailConfigured() {
		emailService := utils.NewEmailService(&cfg.Email)
		accountMailer, codeSender = emailService, emailService
	}

	svc := accounts.NewService(st, accountMailer, cfg.Account, logg.Named("accounts"), m)

	healthHandler := handlers.NewHealthHandler(st)
	if redisCheck != nil {
		healthHandler.WithCheck("redis", redisCheck)
	}

	h := routes.Handlers{
		Auth:           handlers.NewAuthHandler(svc, st, &cfg.JWT, revoked, logg, m),
		Registration:   handlers.NewRegistrationHandler(svc, &cfg.JWT, logg, m),
		Users:          handlers.NewUsersHandler(st, logg),
		CurrentUser:    handlers.NewCurrentUserHandler(svc, st, logg),
		ForgotPassword: handlers.NewForgotPasswordHandler(st, svc, codeSender, cfg, logg, m),
		Health:         healthHandler,
	}
	if cfg.IsGoogleOAuthConfigured() {
		h.Google = handlers.NewGoogleAuthHandler(svc, cfg, logg, m)
	}

	router := routes.SetupRoutes(h, routes.Options{
		JWT:     &cfg.JWT,
		Revoked: revoked,
		Logger:  logg.Named("http"),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logg.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logg.Info("server stopped")
	return nil
}
