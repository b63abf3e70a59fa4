package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aora/backend/internal/auth"
	"github.com/aora/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	if os.Getenv("AORA_SKIP_INTEGRATION") != "" {
		os.Exit(m.Run())
	}

	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()
	os.Exit(code)
}

func requireIntegration(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("integration database disabled")
	}
}

func TestPostgresAccountAndUserRepositories(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()
	resetDatabase(t)

	accounts := NewPostgresAccountRepository(testPool, testTables())
	users := NewPostgresUserRepository(testPool, testTables())

	account := models.Account{
		ID:        uuid.NewString(),
		Email:     "alice@example.com",
		Password:  "secret-hash",
		Name:      "alice",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := accounts.Create(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	dup := account
	dup.ID = uuid.NewString()
	if err := accounts.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate email, got %v", err)
	}

	fetched, err := accounts.FindByEmail(ctx, account.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if fetched.ID != account.ID || fetched.Password != account.Password {
		t.Fatalf("unexpected account fetched: %+v", fetched)
	}

	if _, err := accounts.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing account, got %v", err)
	}

	user := models.User{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Email:     account.Email,
		Username:  "alice",
		Avatar:    "https://example.com/avatar",
		CreatedAt: time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	orphan := user
	orphan.ID = uuid.NewString()
	orphan.AccountID = uuid.NewString()
	if err := users.Create(ctx, orphan); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
	}

	loaded, err := users.FindByAccountID(ctx, account.ID)
	if err != nil {
		t.Fatalf("find user by account: %v", err)
	}
	if loaded.ID != user.ID || loaded.Username != "alice" {
		t.Fatalf("unexpected user loaded: %+v", loaded)
	}
}

func TestPostgresSessionStore_SaveFindAndDelete(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()
	resetDatabase(t)

	user := createTestUser(t, "owner@example.com")
	store := NewPostgresSessionStore(testPool, testTables())

	expires := time.Now().UTC().Add(24 * time.Hour)
	session := models.Session{
		Secret:    uuid.NewString(),
		AccountID: user.AccountID,
		ExpiresAt: expires,
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	loaded, err := store.Find(ctx, session.Secret)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if loaded.AccountID != session.AccountID || !timesClose(loaded.ExpiresAt, expires, time.Millisecond) {
		t.Fatalf("unexpected session loaded: %+v", loaded)
	}

	if err := store.Delete(ctx, session.Secret); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := store.Find(ctx, session.Secret); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, session.Secret); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound deleting twice, got %v", err)
	}
}

func TestPostgresVideoRepository_Queries(t *testing.T) {
	requireIntegration(t)
	ctx := context.Background()
	resetDatabase(t)

	videos := NewPostgresVideoRepository(testPool, testTables())
	alice := createTestUser(t, "alice@example.com")
	bob := createTestUser(t, "bob@example.com")

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	titles := []string{"Cats at play", "Dog run", "cat nap", "Sunset", "Rain", "Forest", "City", "Ocean", "Snow"}
	ids := make([]string, len(titles))
	for i, title := range titles {
		creator := alice.ID
		if i%2 == 1 {
			creator = bob.ID
		}
		var likedBy []string
		if i%3 == 0 {
			likedBy = []string{bob.ID}
		}
		ids[i] = uuid.NewString()
		video := models.Video{
			ID:        ids[i],
			Title:     title,
			Prompt:    "prompt",
			Thumbnail: "https://cdn.example.com/thumb",
			VideoURL:  "https://cdn.example.com/video",
			CreatorID: creator,
			LikedBy:   likedBy,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := videos.Create(ctx, video); err != nil {
			t.Fatalf("create video %q: %v", title, err)
		}
	}

	all, err := videos.List(ctx, models.VideoQuery{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != len(titles) || all[0].ID != ids[len(ids)-1] {
		t.Fatalf("expected newest first across %d videos, got %d starting %s", len(titles), len(all), all[0].Title)
	}

	latest, err := videos.List(ctx, models.VideoQuery{Limit: 7})
	if err != nil {
		t.Fatalf("list latest: %v", err)
	}
	if len(latest) != 7 {
		t.Fatalf("expected 7 latest videos, got %d", len(latest))
	}

	found, err := videos.List(ctx, models.VideoQuery{TitleSearch: "cat"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 || found[0].Title != "cat nap" || found[1].Title != "Cats at play" {
		t.Fatalf("unexpected search results: %+v", found)
	}

	mine, err := videos.List(ctx, models.VideoQuery{CreatorID: bob.ID})
	if err != nil {
		t.Fatalf("list by creator: %v", err)
	}
	for _, v := range mine {
		if v.CreatorID != bob.ID || v.Creator.ID != bob.ID {
			t.Fatalf("unexpected creator in %+v", v)
		}
	}

	saved, err := videos.List(ctx, models.VideoQuery{LikedBy: bob.ID})
	if err != nil {
		t.Fatalf("list saved: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("expected 3 saved videos, got %d", len(saved))
	}
	for i := 1; i < len(saved); i++ {
		if !saved[i-1].CreatedAt.After(saved[i].CreatedAt) {
			t.Fatalf("saved videos not strictly newest first: %+v", saved)
		}
	}

	liked := []string{alice.ID, alice.ID}
	updated, err := videos.Update(ctx, ids[1], models.VideoUpdate{LikedBy: &liked}, time.Now().UTC())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.LikedBy) != 1 || updated.LikedBy[0] != alice.ID {
		t.Fatalf("expected deduplicated likedBy, got %v", updated.LikedBy)
	}

	if _, err := videos.Update(ctx, uuid.NewString(), models.VideoUpdate{LikedBy: &liked}, time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing video, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	tables := testTables()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, tables.Render(string(contents))); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	tables := testTables()
	if _, err := testPool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s, %s, %s, %s CASCADE",
		tables.Videos, tables.Sessions, tables.Users, tables.Accounts)); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, email string) models.User {
	t.Helper()
	ctx := context.Background()
	account := models.Account{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  "password-hash",
		Name:      email,
		CreatedAt: time.Now().UTC(),
	}
	if err := NewPostgresAccountRepository(testPool, testTables()).Create(ctx, account); err != nil {
		t.Fatalf("create test account: %v", err)
	}
	user := models.User{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		Email:     email,
		Username:  email,
		CreatedAt: time.Now().UTC(),
	}
	if err := NewPostgresUserRepository(testPool, testTables()).Create(ctx, user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
