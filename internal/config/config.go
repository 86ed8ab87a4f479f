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

const (
	BackendGorm   = "gorm"
	BackendSQL    = "sql"
	BackendMemory = "memory"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr             string
	AppEnv               string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	StoreBackend   string
	DatabaseDriver string
	DatabaseURL    string

	JWTSecret      string
	TokenTTL       time.Duration
	GoogleClientID string
	AuthTestMode   bool

	LoginRatePerMinute int
	LoginRateBurst     int

	LogLevel string
	LogFile  string
}

// Production reports whether the process runs with APP_ENV=production.
func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads .env files (when present) and the process environment.
// Extra files are loaded after the default .env and never override
// variables already set.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load()
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":3000"),
		AppEnv:               strings.ToLower(getenv("APP_ENV", "development")),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		StoreBackend:         strings.ToLower(getenv("STORE_BACKEND", BackendGorm)),
		DatabaseDriver:       strings.ToLower(getenv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		JWTSecret:            getenv("JWT_SECRET", ""),
		GoogleClientID:       getenv("GOOGLE_CLIENT_ID", ""),
		AuthTestMode:         getenv("AUTH_TEST_MODE", "false") == "true",
		LogLevel:             getenv("LOG_LEVEL", "info"),
		LogFile:              getenv("LOG_FILE", ""),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getenv("TOKEN_TTL", "0s")); err != nil {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.LoginRatePerMinute, err = getint("LOGIN_RATE_PER_MINUTE", 20); err != nil {
		return Config{}, err
	}
	if cfg.LoginRateBurst, err = getint("LOGIN_RATE_BURST", 5); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot be expressed per variable.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing env: JWT_SECRET"))
	}
	switch c.StoreBackend {
	case BackendGorm, BackendSQL:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("missing env: DATABASE_URL"))
		}
		if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
			errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_BACKEND %q", c.StoreBackend))
	}
	if c.AuthTestMode && c.Production() {
		errs = append(errs, errors.New("AUTH_TEST_MODE cannot be enabled when APP_ENV=production"))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getint(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}
