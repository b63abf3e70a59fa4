package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"

	"github.com/aora/backend/internal/backend"
	"github.com/aora/backend/internal/backend/memstore"
	"github.com/aora/backend/internal/config"
	"github.com/aora/backend/internal/models"
	"github.com/aora/backend/internal/service"
)

func testConfig() config.Config {
	return config.Config{
		Store: config.StoreMemory,
		Backend: backend.Config{
			Endpoint:          "https://backend.example.com/v1",
			ProjectID:         "project-1",
			PlatformID:        "com.example.aora",
			DatabaseID:        "aora",
			UserCollectionID:  "users",
			VideoCollectionID: "videos",
			StorageID:         "media",
		},
		HTTP:       config.HTTPConfig{MaxUploadBytes: 1 << 20},
		SessionTTL: time.Hour,
		AuthLimit:  config.RateLimitConfig{Requests: 5, Window: time.Minute, Burst: 5},
	}
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	if err := run(context.Background(), nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error without command")
	}
	if err := run(context.Background(), []string{"explode"}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "explode") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if err := run(context.Background(), []string{"saved", "only-email"}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), []string{"bookmark", "a", "b"}, &bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "usage") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestBuildServiceMemory(t *testing.T) {
	svc, cleanup, err := buildService(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	defer cleanup()

	if _, ok := svc.GetCurrentUser(context.Background()); ok {
		t.Fatal("expected no current user on an empty store")
	}

	deps := buildDependencies(svc, testConfig())
	if deps.Accounts == nil || deps.Videos == nil || deps.Files == nil || deps.AuthLimiter == nil {
		t.Fatalf("expected all dependencies configured, got %+v", deps)
	}
	if deps.MaxUploadBytes != 1<<20 || deps.PlatformID != "com.example.aora" {
		t.Fatalf("unexpected dependency settings %+v", deps)
	}
}

func TestBuildServiceRejectsInvalidBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Backend.StorageID = ""
	if _, _, err := buildService(context.Background(), cfg); err == nil {
		t.Fatal("expected invalid backend config to be rejected")
	}
}

func TestPostgresServices(t *testing.T) {
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer pool.Close()

	services := postgresServices(pool, memstore.NewFiles(), testConfig())
	if services.Accounts == nil || services.Sessions == nil || services.Users == nil || services.Videos == nil || services.Files == nil {
		t.Fatalf("expected all services configured, got %+v", services)
	}
	if _, err := newService(testConfig().Backend, services); err != nil {
		t.Fatalf("new service: %v", err)
	}
}

func TestSavedAndBookmarkCommands(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New(time.Hour)
	svc, err := newService(testConfig().Backend, mem.Services())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	creator, _, err := svc.CreateUser(ctx, "creator@example.com", "password123", "creator")
	if err != nil {
		t.Fatalf("create creator: %v", err)
	}
	if _, _, err := svc.CreateUser(ctx, "viewer@example.com", "password123", "viewer"); err != nil {
		t.Fatalf("create viewer: %v", err)
	}
	video, err := svc.CreateVideo(ctx, models.VideoForm{
		Title:     "Sunset timelapse",
		Thumbnail: &models.File{Name: "t.png", MimeType: "image/png", Body: strings.NewReader("png")},
		Video:     &models.File{Name: "v.mp4", MimeType: "video/mp4", Body: strings.NewReader("mp4")},
		CreatorID: creator.ID,
	})
	if err != nil {
		t.Fatalf("create video: %v", err)
	}

	var out bytes.Buffer
	if err := printSaved(ctx, svc, &out, "viewer@example.com", "password123"); err != nil {
		t.Fatalf("saved: %v", err)
	}
	if strings.TrimSpace(out.String()) != EmptySavedMessage {
		t.Fatalf("expected empty state, got %q", out.String())
	}

	out.Reset()
	if err := toggleBookmark(ctx, svc, &out, "viewer@example.com", "password123", video.ID); err != nil {
		t.Fatalf("bookmark: %v", err)
	}
	if !strings.HasPrefix(out.String(), "bookmarked") {
		t.Fatalf("unexpected bookmark output %q", out.String())
	}

	out.Reset()
	if err := printSaved(ctx, svc, &out, "viewer@example.com", "password123"); err != nil {
		t.Fatalf("saved: %v", err)
	}
	if !strings.Contains(out.String(), "Sunset timelapse") || !strings.Contains(out.String(), "creator") {
		t.Fatalf("expected saved listing, got %q", out.String())
	}

	out.Reset()
	if err := toggleBookmark(ctx, svc, &out, "viewer@example.com", "password123", video.ID); err != nil {
		t.Fatalf("unbookmark: %v", err)
	}
	if !strings.HasPrefix(out.String(), "removed bookmark") {
		t.Fatalf("unexpected unbookmark output %q", out.String())
	}

	if err := toggleBookmark(ctx, svc, &out, "viewer@example.com", "password123", "missing"); err == nil {
		t.Fatal("expected missing video error")
	}
	if err := printSaved(ctx, svc, &out, "viewer@example.com", "wrong-password"); !errors.Is(err, service.ErrAuth) {
		t.Fatalf("expected sign-in failure, got %v", err)
	}
	if mem.Files.Len() != 2 {
		t.Fatalf("expected thumbnail and video stored, got %d files", mem.Files.Len())
	}
}
