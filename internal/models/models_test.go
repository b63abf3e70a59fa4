package models

import "testing"

func TestUniqueIDs(t *testing.T) {
	got := UniqueIDs([]string{"a", "b", "a", "", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("unexpected ids: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected id at %d: got %q want %q", i, got[i], want[i])
		}
	}

	if got := UniqueIDs(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestVideoUpdateEmpty(t *testing.T) {
	if !(VideoUpdate{}).Empty() {
		t.Fatal("expected zero update to be empty")
	}
	title := "new"
	if (VideoUpdate{Title: &title}).Empty() {
		t.Fatal("expected update with title to be non-empty")
	}
	liked := []string{}
	if (VideoUpdate{LikedBy: &liked}).Empty() {
		t.Fatal("expected update clearing likedBy to be non-empty")
	}
}

func TestVideoUpdateChangesContent(t *testing.T) {
	liked := []string{"u1"}
	if (VideoUpdate{LikedBy: &liked}).ChangesContent() {
		t.Fatal("expected likedBy-only update to leave content alone")
	}
	prompt := "new prompt"
	if !(VideoUpdate{Prompt: &prompt, LikedBy: &liked}).ChangesContent() {
		t.Fatal("expected prompt update to change content")
	}
}
