package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetsync")
	t.Setenv("APP_JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.LiveStoreBackend != LiveStoreRedis || cfg.ProfileBackend != ProfilePostgres {
		t.Errorf("unexpected backends %s/%s", cfg.LiveStoreBackend, cfg.ProfileBackend)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetsync")
	t.Setenv("APP_JWT_SECRET", "secret")
	t.Setenv("LIVESTORE_BACKEND", "Memory")
	t.Setenv("PROFILE_BACKEND", "firestore")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LiveStoreBackend != LiveStoreMemory {
		t.Errorf("expected memory live store, got %s", cfg.LiveStoreBackend)
	}
	if cfg.ProfileBackend != ProfileFirestore {
		t.Errorf("expected firestore profiles, got %s", cfg.ProfileBackend)
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_JWT_SECRET", "secret")
	if _, err := Load(); err == nil {
		t.Error("expected error without DATABASE_URL")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/fleetsync")
	t.Setenv("APP_JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("expected error without APP_JWT_SECRET")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetsync")
	t.Setenv("APP_JWT_SECRET", "secret")
	t.Setenv("PROFILE_BACKEND", "mongo")
	if _, err := Load(); err == nil {
		t.Error("expected error for unknown profile backend")
	}
}

func TestLoadAgent(t *testing.T) {
	t.Setenv("AGENT_API_URL", "http://api.example.com/")
	t.Setenv("AGENT_REGISTER", "true")
	t.Setenv("AGENT_LOCATION_PERMISSION", "false")

	cfg, err := LoadAgent()
	if err != nil {
		t.Fatalf("LoadAgent: %v", err)
	}
	if cfg.APIURL != "http://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.APIURL)
	}
	if !cfg.Register || cfg.LocationPermission {
		t.Errorf("unexpected flags register=%v permission=%v", cfg.Register, cfg.LocationPermission)
	}
}

func TestLoadAgent_Defaults(t *testing.T) {
	cfg, err := LoadAgent()
	if err != nil {
		t.Fatalf("LoadAgent: %v", err)
	}
	if cfg.LocationPushInterval != 7*time.Second {
		t.Errorf("expected 7s push interval, got %s", cfg.LocationPushInterval)
	}
	if cfg.AuthInitTimeout != 10*time.Second {
		t.Errorf("expected 10s auth timeout, got %s", cfg.AuthInitTimeout)
	}
	if cfg.Token != "" || !cfg.LocationPermission {
		t.Errorf("unexpected defaults token=%q permission=%v", cfg.Token, cfg.LocationPermission)
	}
}

func TestLoadAgent_SessionAndTimings(t *testing.T) {
	t.Setenv("AGENT_TOKEN", "token-1")
	t.Setenv("LOCATION_PUSH_INTERVAL", "2s")
	t.Setenv("AUTH_INIT_TIMEOUT", "500ms")

	cfg, err := LoadAgent()
	if err != nil {
		t.Fatalf("LoadAgent: %v", err)
	}
	if cfg.Token != "token-1" {
		t.Errorf("expected stored token, got %q", cfg.Token)
	}
	if cfg.LocationPushInterval != 2*time.Second || cfg.AuthInitTimeout != 500*time.Millisecond {
		t.Errorf("unexpected timings %s/%s", cfg.LocationPushInterval, cfg.AuthInitTimeout)
	}
}
