// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // containers ship without a zoneinfo database
)

// Config holds all runtime configuration for the visibility service.
type Config struct {
	Port        string
	GRPCPort    string
	DatabaseURL string
	RedisURL    string

	// Location is the zone in which "today" is taken for cooldown arithmetic.
	Location  *time.Location
	CacheTTL  time.Duration // 0 disables decision memoization
	PageLimit int           // upper bound on records per report page
	SweepSpec string        // cron spec of the cooldown sweep
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	tz := envOr("VISIBILITY_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("VISIBILITY_TIMEZONE %q: %w", tz, err)
	}

	ttl, err := nonNegativeInt("VISIBILITY_CACHE_TTL_MINUTES", 10)
	if err != nil {
		return nil, err
	}

	limit, err := nonNegativeInt("VISIBILITY_PAGE_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		return nil, fmt.Errorf("VISIBILITY_PAGE_LIMIT must be a positive integer, got 0")
	}

	return &Config{
		Port:        envOr("VISIBILITY_PORT", "8083"),
		GRPCPort:    envOr("VISIBILITY_GRPC_PORT", "9083"),
		DatabaseURL: dbURL,
		RedisURL:    redisURL,
		Location:    loc,
		CacheTTL:    time.Duration(ttl) * time.Minute,
		PageLimit:   limit,
		SweepSpec:   envOr("VISIBILITY_SWEEP_SPEC", "@daily"),
	}, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func nonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, s)
	}
	return v, nil
}
