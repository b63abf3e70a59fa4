package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 8080 {
		t.Fatalf("unexpected port %d", cfg.AppPort)
	}
	if cfg.Backend.DatabaseID != "aora" || cfg.Backend.VideoCollectionID != "videos" {
		t.Fatalf("unexpected backend defaults: %+v", cfg.Backend)
	}
	if cfg.Store != StorePostgres {
		t.Fatalf("unexpected store %q", cfg.Store)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AORA_PORT", "9090")
	t.Setenv("AORA_PROJECT_ID", "project-1")
	t.Setenv("AORA_SESSION_TTL", "1h")
	t.Setenv("AORA_AUTH_RATE_BURST", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppPort != 9090 || cfg.Backend.ProjectID != "project-1" || cfg.SessionTTL != time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.AuthLimit.Burst != 5 {
		t.Fatalf("expected invalid int to fall back, got %d", cfg.AuthLimit.Burst)
	}
}

func TestLoadRejectsInvalidBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AORA_VIDEO_COLLECTION_ID", "videos;drop")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid collection id to be rejected")
	}
}

func TestLoadStore(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AORA_STORE", "Memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.Store)
	}

	t.Setenv("AORA_STORE", "redis")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown store to be rejected")
	}
}
