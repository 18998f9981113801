package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend selects which event source implementation the poller uses.
type Backend string

const (
	BackendSOAP Backend = "soap"
	BackendSQL  Backend = "sql"
)

// Config holds all configuration for the application.
type Config struct {
	Port          string
	SourceBackend Backend

	PollInterval time.Duration
	FetchLimit   int

	// SOAP backend
	AEOSEndpointURL string
	AEOSUsername    string
	AEOSPassword    string

	// SQL backend and analytics view
	DatabaseURL string

	// Optional watermark persistence
	RedisURL string
}

// Load reads configuration from environment variables. Missing
// mandatory values are the only fatal condition in the process; the
// poll loop never is.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		SourceBackend:   Backend(getEnv("SOURCE_BACKEND", "soap")),
		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5)) * time.Second,
		FetchLimit:      getEnvInt("FETCH_LIMIT", 20),
		AEOSEndpointURL: getEnv("AEOS_WSDL_URL", ""),
		AEOSUsername:    getEnv("AEOS_WS_USER", ""),
		AEOSPassword:    getEnv("AEOS_WS_PASSWORD", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
	}

	switch cfg.SourceBackend {
	case BackendSOAP:
		if cfg.AEOSEndpointURL == "" {
			return nil, fmt.Errorf("AEOS_WSDL_URL is required with SOURCE_BACKEND=soap")
		}
	case BackendSQL:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required with SOURCE_BACKEND=sql")
		}
	default:
		return nil, fmt.Errorf("SOURCE_BACKEND must be %q or %q, got %q", BackendSOAP, BackendSQL, cfg.SourceBackend)
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if cfg.FetchLimit <= 0 {
		return nil, fmt.Errorf("FETCH_LIMIT must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
