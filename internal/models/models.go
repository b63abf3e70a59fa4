package models

import (
	"io"
	"time"
)

// Account is the credential record sessions are issued against.
type Account struct {
	ID        string
	Email     string
	Password  string
	Name      string
	CreatedAt time.Time
}

// User is the public profile document linked to an account.
type User struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// Video is a published post. Creator is resolved from CreatorID on reads.
type Video struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Prompt    string    `json:"prompt"`
	Thumbnail string    `json:"thumbnail"`
	VideoURL  string    `json:"video"`
	CreatorID string    `json:"creatorId"`
	Creator   User      `json:"creator"`
	LikedBy   []string  `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VideoUpdate carries the fields of a partial video update. Nil fields are left untouched.
type VideoUpdate struct {
	Title     *string   `json:"title,omitempty"`
	Prompt    *string   `json:"prompt,omitempty"`
	Thumbnail *string   `json:"thumbnail,omitempty"`
	VideoURL  *string   `json:"video,omitempty"`
	LikedBy   *[]string `json:"likedBy,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u VideoUpdate) Empty() bool {
	return u.Title == nil && u.Prompt == nil && u.Thumbnail == nil && u.VideoURL == nil && u.LikedBy == nil
}

// ChangesContent reports whether the update touches anything besides likedBy.
func (u VideoUpdate) ChangesContent() bool {
	return u.Title != nil || u.Prompt != nil || u.Thumbnail != nil || u.VideoURL != nil
}

// Session is an authenticated connection identified by an opaque secret.
type Session struct {
	Secret    string    `json:"secret"`
	AccountID string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileKind selects how an uploaded file is exposed.
type FileKind string

const (
	FileKindImage FileKind = "image"
	FileKindVideo FileKind = "video"
)

// File describes an upload picked on the device.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// VideoForm is the input of the create video flow.
type VideoForm struct {
	Title     string
	Prompt    string
	Thumbnail *File
	Video     *File
	CreatorID string
}

// UniqueIDs returns ids with duplicates and empty values removed, keeping first occurrences in order.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// VideoQuery filters a video listing. Results are always ordered newest first.
type VideoQuery struct {
	// CreatorID restricts results to an exact creator match.
	CreatorID string
	// TitleSearch restricts results to titles containing the text, ignoring case.
	TitleSearch string
	// LikedBy restricts results to videos whose likedBy set contains the id.
	LikedBy string
	// Limit caps the result count when positive.
	Limit int
}
