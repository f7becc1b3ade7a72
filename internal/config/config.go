package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	CORSOrigin string

	// Upstream survey API. Empty APIKey or CollectorID switches the
	// pipeline to generated mock data.
	SurveyBaseURL string
	SurveyAPIKey  string
	CollectorID   string

	// Durable cache. Empty DatabaseURL and RedisURL disables caching
	// entirely (fetch-always mode).
	DatabaseURL string
	RedisURL    string

	// Optional text answer search.
	MeiliURL       string
	MeiliMasterKey string

	SnapshotTTL time.Duration
	CatalogTTL  time.Duration
}

func Load() Config {
	return Config{
		Addr:           getenv("API_ADDR", ":8686"),
		CORSOrigin:     getenv("PULSE_CORS_ORIGIN", "*"),
		SurveyBaseURL:  getenv("DRAGNSURVEY_API_BASE_URL", "https://developer.dragnsurvey.com/api/v2.0.0"),
		SurveyAPIKey:   getenv("DRAGNSURVEY_API_KEY", ""),
		CollectorID:    getenv("DRAGNSURVEY_COLLECTOR_ID", ""),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		RedisURL:       getenv("REDIS_URL", ""),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		SnapshotTTL:    time.Duration(getenvInt("PULSE_SNAPSHOT_TTL_SECONDS", 900)) * time.Second,
		CatalogTTL:     time.Duration(getenvInt("PULSE_CATALOG_TTL_SECONDS", 900)) * time.Second,
	}
}

// HasUpstreamCredentials reports whether live fetching is possible.
func (c Config) HasUpstreamCredentials() bool {
	return c.SurveyAPIKey != "" && c.CollectorID != ""
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
