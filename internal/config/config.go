// Package config loads application configuration from environment
// variables.  main calls godotenv before Load, so a local .env file
// works the same as real environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Durations accept Go duration syntax
// ("5s", "2m").
type Config struct {
	Env  string // application environment (dev, prod)
	Port string // HTTP port to listen on

	JWTSecret string // secret used to verify access tokens

	// Upstream collaborators.  UpstreamToken is an optional static
	// service token forwarded on outbound calls.
	ShowtimeAPIURL  string
	InventoryAPIURL string
	BookingAPIURL   string
	UpstreamToken   string

	// Draft persistence.  Leaving DBHost empty disables the MySQL draft
	// store; sessions then run with in-memory drafts only.
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	FetchTimeout  time.Duration // bound on inventory/showtime fetches
	SubmitTimeout time.Duration // bound on booking submissions (longer)
	PollInterval  time.Duration // inventory refresh cadence, 0 disables
	SessionTTL    time.Duration // idle session lifetime
}

// Load reads configuration from the environment.  Required variables are
// enforced by must(); missing values exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             getenv("APP_ENV", "dev"),
		Port:            must("APP_PORT"),
		JWTSecret:       must("JWT_SECRET"),
		ShowtimeAPIURL:  must("SHOWTIME_API_URL"),
		InventoryAPIURL: must("INVENTORY_API_URL"),
		BookingAPIURL:   must("BOOKING_API_URL"),
		UpstreamToken:   os.Getenv("UPSTREAM_API_TOKEN"),
		DBUser:          os.Getenv("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          getenv("DB_PORT", "3306"),
		DBName:          os.Getenv("DB_NAME"),
		FetchTimeout:    envDur("FETCH_TIMEOUT", 5*time.Second),
		SubmitTimeout:   envDur("SUBMIT_TIMEOUT", 30*time.Second),
		PollInterval:    envDur("INVENTORY_POLL_INTERVAL", 10*time.Second),
		SessionTTL:      envDur("SESSION_TTL", 30*time.Minute),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	return def
}
