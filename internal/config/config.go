package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// E-mail verification modes for newly registered accounts.
const (
	EmailVerificationNone      = "none"
	EmailVerificationOptional  = "optional"
	EmailVerificationMandatory = "mandatory"
)

// Config is the process configuration, read once at startup from the
// environment (optionally seeded by a .env file).
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Account     AccountConfig
	Email       EmailConfig
	GoogleOAuth GoogleOAuthConfig
	CORS        CORSConfig
	Redis       RedisConfig
	Log         LogConfig

	warnings []string
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int32
	MinConns     int32
	MaxLifetime  time.Duration
	ConnTimeout  time.Duration
	QueryTimeout time.Duration
	AutoMigrate  bool
}

type JWTConfig struct {
	Secret string
	// ExpirationDelta is the lifetime of an access token.
	ExpirationDelta time.Duration
	// RefreshExpirationDelta bounds how long after the original issue
	// time a token may still be refreshed.
	RefreshExpirationDelta time.Duration
	AllowRefresh           bool
	ResetTokenTTL          time.Duration
}

// AccountConfig is the registration and account policy.
type AccountConfig struct {
	UsernameMinLength       int
	UsernameMaxLength       int
	UniqueEmail             bool
	EmailVerification       string
	EmailConfirmationExpire time.Duration
	PasswordMinLength       int
	ResetCodeTTL            time.Duration
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	// ConfirmURL is formatted with the confirmation key.
	ConfirmURL string
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// RedisConfig configures the revocation list. An empty URL keeps revoked
// tokens in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

// Load reads ../.env or .env when present, then the environment, and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			cfg.warn("no .env file loaded: %v", err)
		}
	}

	cfg.Server = ServerConfig{
		Port:            getEnv("SERVER_PORT", "8080"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
	cfg.Database = DatabaseConfig{
		Host:         getEnv("DB_HOST", "localhost"),
		Port:         getEnv("DB_PORT", "5432"),
		User:         getEnv("DB_USER", "postgres"),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", "postgres"),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxConns:     getInt32Env("DB_MAX_CONNS", 5),
		MinConns:     getInt32Env("DB_MIN_CONNS", 0),
		MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", time.Hour),
		ConnTimeout:  getDurationEnv("DB_CONN_TIMEOUT", 10*time.Second),
		QueryTimeout: getDurationEnv("DB_QUERY_TIMEOUT", 30*time.Second),
		AutoMigrate:  getBoolEnv("DB_AUTO_MIGRATE", true),
	}
	cfg.JWT = JWTConfig{
		Secret:                 getEnv("JWT_SECRET", ""),
		ExpirationDelta:        getDurationEnv("JWT_EXPIRATION_DELTA", 5*time.Minute),
		RefreshExpirationDelta: getDurationEnv("JWT_REFRESH_EXPIRATION_DELTA", 7*24*time.Hour),
		AllowRefresh:           getBoolEnv("JWT_ALLOW_REFRESH", true),
		ResetTokenTTL:          getDurationEnv("JWT_RESET_TTL", 10*time.Minute),
	}
	cfg.Account = AccountConfig{
		UsernameMinLength:       getIntEnv("ACCOUNT_USERNAME_MIN_LENGTH", 1),
		UsernameMaxLength:       getIntEnv("ACCOUNT_USERNAME_MAX_LENGTH", 150),
		UniqueEmail:             getBoolEnv("ACCOUNT_UNIQUE_EMAIL", true),
		EmailVerification:       strings.ToLower(getEnv("ACCOUNT_EMAIL_VERIFICATION", EmailVerificationOptional)),
		EmailConfirmationExpire: getDurationEnv("ACCOUNT_EMAIL_CONFIRMATION_EXPIRE", 3*24*time.Hour),
		PasswordMinLength:       getIntEnv("ACCOUNT_PASSWORD_MIN_LENGTH", 8),
		ResetCodeTTL:            getDurationEnv("ACCOUNT_RESET_CODE_TTL", 3*time.Minute),
	}
	cfg.Email = EmailConfig{
		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("EMAIL_FROM", ""),
		FromName:     getEnv("EMAIL_FROM_NAME", "User Registration"),
		ConfirmURL:   getEnv("EMAIL_CONFIRM_URL", "http://localhost:8080/api/user/registration/verify-email/?key=%s"),
	}
	cfg.GoogleOAuth = GoogleOAuthConfig{
		ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		FrontendURL:  getEnv("GOOGLE_FRONTEND_URL", "http://localhost:8081/callback"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins:   getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AllowedMethods:   getStringSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders:   getStringSliceEnv("CORS_ALLOWED_HEADERS", []string{"*"}),
		AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
	}
	cfg.Redis = RedisConfig{
		URL:          getEnv("REDIS_URL", ""),
		PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
		DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
	cfg.Log = LogConfig{Level: strings.ToLower(getEnv("LOG_LEVEL", "info"))}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.IsEmailConfigured() {
		cfg.warn("SMTP credentials not set, confirmation and reset e-mails are disabled")
	}
	if !cfg.IsGoogleOAuthConfigured() {
		cfg.warn("Google OAuth credentials not set, Google login is disabled")
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	switch c.Account.EmailVerification {
	case EmailVerificationNone, EmailVerificationOptional, EmailVerificationMandatory:
	default:
		errs = append(errs, fmt.Errorf("ACCOUNT_EMAIL_VERIFICATION must be one of none, optional, mandatory (got %q)", c.Account.EmailVerification))
	}
	if c.Account.UsernameMinLength < 1 || c.Account.UsernameMaxLength < c.Account.UsernameMinLength {
		errs = append(errs, fmt.Errorf("invalid username length bounds %d..%d", c.Account.UsernameMinLength, c.Account.UsernameMaxLength))
	}
	return errors.Join(errs...)
}

// Warnings lists non-fatal problems found while loading. They are collected
// here because the logger is built from this config.
func (c *Config) Warnings() []string { return c.warnings }

func (c *Config) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// GetDSN returns the pgx connection URL.
func (c *Config) GetDSN() string {
	db := c.Database
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&connect_timeout=%d",
		db.User, db.Password, db.Host, db.Port, db.Name, db.SSLMode, int(db.ConnTimeout.Seconds()))
}

func (c *Config) IsEmailConfigured() bool {
	return c.Email.SMTPUsername != "" && c.Email.SMTPPassword != ""
}

func (c *Config) IsGoogleOAuthConfigured() bool {
	return c.GoogleOAuth.ClientID != "" && c.GoogleOAuth.ClientSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parsedEnv returns fallback when key is unset or does not parse.
func parsedEnv[T any](key string, fallback T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := parse(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getIntEnv(key string, fallback int) int {
	return parsedEnv(key, fallback, strconv.Atoi)
}

func getInt32Env(key string, fallback int32) int32 {
	return parsedEnv(key, fallback, func(s string) (int32, error) {
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), err
	})
}

func getBoolEnv(key string, fallback bool) bool {
	return parsedEnv(key, fallback, strconv.ParseBool)
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	return parsedEnv(key, fallback, time.ParseDuration)
}

func getStringSliceEnv(key string, fallback []string) []string {
	return parsedEnv(key, fallback, func(s string) ([]string, error) {
		var parts []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) == 0 {
			return nil, errors.New("empty list")
		}
		return parts, nil
	})
}
