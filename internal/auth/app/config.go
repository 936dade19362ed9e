package app

import (
	"os"
	"strconv"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/cryptox"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/jwtx"
)

type Config struct {
	Issuer string // Issuer claim for tokens and TOTP issuer name

	AccessTokenSecret  string        // Secret for signing access tokens
	AccessTokenTTL     time.Duration // Access token lifetime (default: 15m)
	RefreshTokenSecret string        // Secret for signing refresh tokens
	RefreshTokenTTL    time.Duration // Refresh token lifetime (default: 168h)

	DatabaseFile         string        // Path to SQLite database file (default: ./auth.db)
	PepperFile           string        // Path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired session cleanup interval (default: 1h)

	// GeneratedSecrets is true when one or both token secrets were absent
	// from the environment and had to be generated. Sessions will not
	// survive a restart in that mode.
	GeneratedSecrets bool
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "clinical-auth"),
		AccessTokenSecret:    os.Getenv("AUTH_ACCESS_TOKEN_SECRET"),
		AccessTokenTTL:       getEnvDurationOrDefault("AUTH_ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenSecret:   os.Getenv("AUTH_REFRESH_TOKEN_SECRET"),
		RefreshTokenTTL:      getEnvDurationOrDefault("AUTH_REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// Fall back to random secrets so dev setups still start, at the cost of
	// invalidating all tokens on restart.
	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = cryptox.MustGenerateToken(cryptox.TokenSize256)
		cfg.GeneratedSecrets = true
	}
	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = cryptox.MustGenerateToken(cryptox.TokenSize256)
		cfg.GeneratedSecrets = true
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
