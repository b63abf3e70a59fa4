package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aora/backend/internal/models"
)

// ErrToggleInFlight is returned when a card is toggled while a previous toggle
// on it has not settled.
var ErrToggleInFlight = errors.New("bookmark toggle already in progress")

// VideoUpdater persists a partial post update.
type VideoUpdater interface {
	UpdateVideo(ctx context.Context, update models.VideoUpdate, videoID string) (models.Video, error)
}

// Card is the local view of one post with its bookmark state.
type Card struct {
	mu       sync.Mutex
	video    models.Video
	toggling bool
}

// NewCard wraps video for display.
func NewCard(video models.Video) *Card {
	video.LikedBy = models.UniqueIDs(video.LikedBy)
	return &Card{video: video}
}

// Video returns a copy of the post as currently shown.
func (c *Card) Video() models.Video {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.video
	v.LikedBy = append([]string{}, c.video.LikedBy...)
	return v
}

// Bookmarked reports whether userID is in the post's likedBy set.
func (c *Card) Bookmarked(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return containsID(c.video.LikedBy, userID)
}

// Toggling reports whether a toggle is in flight.
func (c *Card) Toggling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toggling
}

// Toggle flips userID's bookmark on card. The new membership is shown
// immediately, then persisted through updater, and refetch runs once the
// update succeeds. A failed update restores the previous membership.
// refetch may be nil.
func Toggle(ctx context.Context, card *Card, userID string, updater VideoUpdater, refetch func(context.Context) error) error {
	if userID == "" {
		return errors.New("feed: user id is required")
	}

	card.mu.Lock()
	if card.toggling {
		card.mu.Unlock()
		return ErrToggleInFlight
	}
	card.toggling = true
	previous := card.video.LikedBy
	next := ToggleMembership(previous, userID)
	card.video.LikedBy = next
	videoID := card.video.ID
	card.mu.Unlock()

	updated, err := updater.UpdateVideo(ctx, models.VideoUpdate{LikedBy: &next}, videoID)

	card.mu.Lock()
	card.toggling = false
	if err != nil {
		card.video.LikedBy = previous
		card.mu.Unlock()
		return fmt.Errorf("toggle bookmark on %s: %w", videoID, err)
	}
	card.video.LikedBy = models.UniqueIDs(updated.LikedBy)
	card.mu.Unlock()

	if refetch != nil {
		if err := refetch(ctx); err != nil {
			return fmt.Errorf("refetch after bookmark: %w", err)
		}
	}
	return nil
}

// ToggleMembership returns set with id removed when present and appended
// otherwise. set is not modified and the result never holds duplicates.
func ToggleMembership(set []string, id string) []string {
	set = models.UniqueIDs(set)
	if containsID(set, id) {
		out := make([]string, 0, len(set)-1)
		for _, existing := range set {
			if existing != id {
				out = append(out, existing)
			}
		}
		return out
	}
	return append(set, id)
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
