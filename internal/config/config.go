package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string

	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	SessionCookieName string
	SessionTTLDays    int
	CookieSecure      bool
	TrustProxy        bool

	CORSAllowedOrigins []string

	AuthProviderURL     string
	AuthProviderTimeout time.Duration

	PasswordMinLength int

	ExpiryWindowDays int
	BulkErrorPreview int

	SweepEnabled  bool
	SweepInterval time.Duration

	HTTPReadTimeoutSec       int
	HTTPReadHeaderTimeoutSec int
	HTTPWriteTimeoutSec      int
	HTTPIdleTimeoutSec       int

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:               env("LISTEN_ADDR", ":8080"),
		DBDriver:                 strings.ToLower(env("APP_DB_DRIVER", "sqlite")),
		DBDSN:                    env("APP_DB_DSN", "./data/roster.db"),
		DBMaxOpenConns:           envInt("APP_DB_MAX_OPEN_CONNS", 4),
		DBMaxIdleConns:           envInt("APP_DB_MAX_IDLE_CONNS", 2),
		DBConnMaxLifetime:        time.Duration(envInt("APP_DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
		SessionCookieName:        env("SESSION_COOKIE_NAME", "session_token"),
		SessionTTLDays:           envInt("SESSION_TTL_DAYS", 90),
		CookieSecure:             envBool("COOKIE_SECURE", false),
		TrustProxy:               envBool("TRUST_PROXY", false),
		CORSAllowedOrigins:       envCSV("CORS_ALLOWED_ORIGINS"),
		AuthProviderURL:          env("AUTH_PROVIDER_URL", ""),
		AuthProviderTimeout:      time.Duration(envInt("AUTH_PROVIDER_TIMEOUT_SEC", 10)) * time.Second,
		PasswordMinLength:        envInt("PASSWORD_MIN_LENGTH", 8),
		ExpiryWindowDays:         envInt("EXPIRY_WINDOW_DAYS", 60),
		BulkErrorPreview:         envInt("BULK_ERROR_PREVIEW", 10),
		SweepEnabled:             envBool("SWEEP_ENABLED", false),
		SweepInterval:            time.Duration(envInt("SWEEP_INTERVAL_HOURS", 24)) * time.Hour,
		HTTPReadTimeoutSec:       envInt("HTTP_READ_TIMEOUT_SEC", 10),
		HTTPReadHeaderTimeoutSec: envInt("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		HTTPWriteTimeoutSec:      envInt("HTTP_WRITE_TIMEOUT_SEC", 30),
		HTTPIdleTimeoutSec:       envInt("HTTP_IDLE_TIMEOUT_SEC", 60),
		BootstrapAdminEmail:      env("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword:   env("BOOTSTRAP_ADMIN_PASSWORD", ""),
		BootstrapAdminName:       env("BOOTSTRAP_ADMIN_NAME", "Administrator"),
	}

	switch cfg.DBDriver {
	case "sqlite", "pgx", "postgres", "mysql":
	default:
		return Config{}, fmt.Errorf("unsupported APP_DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBMaxOpenConns <= 0 || cfg.DBMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("invalid DB pool config")
	}
	if cfg.SessionTTLDays <= 0 {
		return Config{}, fmt.Errorf("session TTL must be positive")
	}
	if cfg.PasswordMinLength < 8 {
		return Config{}, fmt.Errorf("password min length must be >= 8")
	}
	if cfg.ExpiryWindowDays <= 0 {
		return Config{}, fmt.Errorf("expiry window must be positive")
	}
	if cfg.BulkErrorPreview <= 0 {
		return Config{}, fmt.Errorf("bulk error preview must be positive")
	}
	if cfg.SweepEnabled && cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("sweep interval must be positive")
	}
	return cfg, nil
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLDays) * 24 * time.Hour
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func envCSV(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
