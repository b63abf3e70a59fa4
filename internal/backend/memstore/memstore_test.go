package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aora/backend/internal/models"
	"github.com/aora/backend/internal/repositories"
)

func TestVideosListSemantics(t *testing.T) {
	ctx := context.Background()
	b := New(time.Hour)
	if err := b.Users.Create(ctx, models.User{ID: "u1", AccountID: "a1", Username: "alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Cats at play", "Dog run", "CAT nap"} {
		video := models.Video{ID: title, Title: title, CreatorID: "u1", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if i != 1 {
			video.LikedBy = []string{"u2", "u2"}
		}
		if err := b.Videos.Create(ctx, video); err != nil {
			t.Fatalf("create video: %v", err)
		}
	}

	found, err := b.Videos.List(ctx, models.VideoQuery{TitleSearch: "cat"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(found) != 2 || found[0].Title != "CAT nap" {
		t.Fatalf("unexpected search results: %+v", found)
	}
	if found[0].Creator.Username != "alice" {
		t.Fatalf("expected creator resolved, got %+v", found[0].Creator)
	}
	if len(found[0].LikedBy) != 1 {
		t.Fatalf("expected deduplicated likedBy, got %v", found[0].LikedBy)
	}

	limited, err := b.Videos.List(ctx, models.VideoQuery{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Title != "CAT nap" {
		t.Fatalf("unexpected limited results: %+v", limited)
	}
}

func TestVideosCreateRequiresCreator(t *testing.T) {
	b := New(time.Hour)
	err := b.Videos.Create(context.Background(), models.Video{ID: "v1", CreatorID: "ghost"})
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVideosReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := New(time.Hour)
	_ = b.Users.Create(ctx, models.User{ID: "u1", AccountID: "a1"})
	_ = b.Videos.Create(ctx, models.Video{ID: "v1", CreatorID: "u1", LikedBy: []string{"u1"}})

	video, err := b.Videos.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	video.LikedBy[0] = "mutated"

	again, _ := b.Videos.Get(ctx, "v1")
	if again.LikedBy[0] != "u1" {
		t.Fatal("expected stored likedBy to be isolated from callers")
	}
}

func TestVideosToggleLikeConcurrent(t *testing.T) {
	ctx := context.Background()
	b := New(time.Hour)
	if err := b.Users.Create(ctx, models.User{ID: "u1", AccountID: "a1", Username: "alice"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := b.Videos.Create(ctx, models.Video{ID: "v1", Title: "Sunset", CreatorID: "u1"}); err != nil {
		t.Fatalf("create video: %v", err)
	}

	const users = 20
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := b.Videos.ToggleLike(ctx, "v1", fmt.Sprintf("user-%d", i), time.Now()); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}(i)
	}
	wg.Wait()

	video, err := b.Videos.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(video.LikedBy) != users {
		t.Fatalf("expected %d likes, got %d: %v", users, len(video.LikedBy), video.LikedBy)
	}

	video, err = b.Videos.ToggleLike(ctx, "v1", "user-0", time.Now())
	if err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	if len(video.LikedBy) != users-1 || contains(video.LikedBy, "user-0") {
		t.Fatalf("expected user-0 removed, got %v", video.LikedBy)
	}
	if _, err := b.Videos.ToggleLike(ctx, "missing", "user-0", time.Now()); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
