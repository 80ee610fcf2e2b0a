// internal/config/config.go
//
// Process configuration read from the environment (a .env file is loaded by
// main via godotenv before Load runs).
//
// Environment variables:
//   PORT              HTTP port (5175)
//   LOG_LEVEL         zerolog level (info)
//   STORE_BACKEND     memory | sqlite | postgres | mysql (sqlite)
//   DB_PATH           sqlite file (./data/wordibble.db)
//   DATABASE_URL      postgres/mysql DSN
//   PUZZLE_TIMEZONE   IANA zone the puzzle day rolls over in (America/New_York)
//   ARCHIVE_START     first archive date (2025-08-24)
//   COMPLETION_DELAY  won/lost transition delay (1500ms)
//   DAILY_SALT        key for the fallback daily word index
//   JWT_SECRET        HS256 signing key
//   JWT_EXPIRES_DAYS  token lifetime in days (14)
//   COOKIE_NAME       auth cookie name (wordibble_token)
//   CLIENT_ORIGIN     CORS origin (http://localhost:5173)
//   NODE_ENV          "production" enables Secure cookies
//   WORDS_DIR         optional directory overriding embedded word data

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/robalobadob/wordibble/internal/daily"
)

const devSecret = "dev_secret_change_me"

// Config holds application configuration.
type Config struct {
	Port     string
	LogLevel string

	StoreBackend string
	DBPath       string
	DatabaseURL  string

	Location        *time.Location
	ArchiveStart    string
	CompletionDelay time.Duration
	DailySalt       string
	WordsDir        string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
}

// Load reads configuration from environment variables with defaults.
// Malformed values are errors rather than silently defaulted.
func Load() (*Config, error) {
	c := &Config{
		Port:           getEnv("PORT", "5175"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StoreBackend:   getEnv("STORE_BACKEND", "sqlite"),
		DBPath:         getEnv("DB_PATH", "./data/wordibble.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ArchiveStart:   getEnv("ARCHIVE_START", "2025-08-24"),
		DailySalt:      getEnv("DAILY_SALT", "wordibble"),
		WordsDir:       os.Getenv("WORDS_DIR"),
		JWTSecret:      getEnv("JWT_SECRET", devSecret),
		CookieName:     getEnv("COOKIE_NAME", "wordibble_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     os.Getenv("NODE_ENV") == "production",
		JWTExpiresDays: 14,
	}

	loc, err := time.LoadLocation(getEnv("PUZZLE_TIMEZONE", "America/New_York"))
	if err != nil {
		return nil, fmt.Errorf("PUZZLE_TIMEZONE: %w", err)
	}
	c.Location = loc

	if c.CompletionDelay, err = time.ParseDuration(getEnv("COMPLETION_DELAY", "1500ms")); err != nil {
		return nil, fmt.Errorf("COMPLETION_DELAY: %w", err)
	}
	if c.CompletionDelay < 0 {
		return nil, fmt.Errorf("COMPLETION_DELAY: must not be negative")
	}
	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("JWT_EXPIRES_DAYS: %q is not a positive integer", v)
		}
		c.JWTExpiresDays = n
	}
	if _, err := daily.New(c.ArchiveStart, daily.MinWordLength); err != nil {
		return nil, fmt.Errorf("ARCHIVE_START: %w", err)
	}
	if c.Production && c.JWTSecret == devSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return c, nil
}

// JWTTTL is the auth token lifetime.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
