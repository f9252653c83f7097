package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	minSessionMaxAgeDays = 7
	maxSessionMaxAgeDays = 30
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string

	JWTSecret           string
	SessionMaxAge       time.Duration
	RevalidateRole      bool
	GoogleClientID      string
	GoogleClientSecret  string
	OAuthRedirectURL    string
	AllowedOAuthDomains []string
	AdminEmails         []string

	RegisterRateMax    int
	RegisterRateWindow time.Duration
	LoginRateMax       int
	LoginRateWindow    time.Duration
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),

		JWTSecret:           getEnv("JWT_SECRET", "change-me"),
		SessionMaxAge:       sessionMaxAge(getEnvInt("SESSION_MAX_AGE", 30)),
		RevalidateRole:      getEnvBool("SESSION_REVALIDATE_ROLE", false),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:    getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/callback/google"),
		AllowedOAuthDomains: splitList(os.Getenv("ALLOWED_OAUTH_DOMAINS")),
		AdminEmails:         splitList(os.Getenv("ADMIN_EMAILS")),

		RegisterRateMax:    getEnvInt("REGISTER_RATE_MAX", 5),
		RegisterRateWindow: getEnvDuration("REGISTER_RATE_WINDOW", 15*time.Minute),
		LoginRateMax:       getEnvInt("LOGIN_RATE_MAX", 10),
		LoginRateWindow:    getEnvDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
	}
}

// sessionMaxAge clamps the configured day count into the supported window.
func sessionMaxAge(days int) time.Duration {
	if days < minSessionMaxAgeDays {
		days = minSessionMaxAgeDays
	}
	if days > maxSessionMaxAgeDays {
		days = maxSessionMaxAgeDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
