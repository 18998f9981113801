package config

import (
	"testing"
	"time"
)

func TestLoad_SOAPDefaults(t *testing.T) {
	t.Setenv("SOURCE_BACKEND", "soap")
	t.Setenv("AEOS_WSDL_URL", "https://aeos.local:8443/aeosws")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want 8080", cfg.Port)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval: got %v, want 5s", cfg.PollInterval)
	}
	if cfg.FetchLimit != 20 {
		t.Errorf("FetchLimit: got %d, want 20", cfg.FetchLimit)
	}
}

func TestLoad_SOAPRequiresEndpoint(t *testing.T) {
	t.Setenv("SOURCE_BACKEND", "soap")
	t.Setenv("AEOS_WSDL_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing AEOS_WSDL_URL")
	}
}

func TestLoad_SQLRequiresDatabaseURL(t *testing.T) {
	t.Setenv("SOURCE_BACKEND", "sql")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoad_UnknownBackendRejected(t *testing.T) {
	t.Setenv("SOURCE_BACKEND", "ldap")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("SOURCE_BACKEND", "sql")
	t.Setenv("DATABASE_URL", "postgres://aeos:pw@localhost/aeosdb")
	t.Setenv("POLL_INTERVAL_SECONDS", "2")
	t.Setenv("FETCH_LIMIT", "100")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval: got %v, want 2s", cfg.PollInterval)
	}
	if cfg.FetchLimit != 100 {
		t.Errorf("FetchLimit: got %d, want 100", cfg.FetchLimit)
	}
	if cfg.RedisURL == "" {
		t.Error("RedisURL not picked up from env")
	}
}
