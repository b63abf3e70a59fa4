package handlers

import (
	"context"

	"github.com/aora/backend/internal/models"
)

// AccountService captures the account operations behind the account endpoints.
type AccountService interface {
	CreateUser(ctx context.Context, email, password, username string) (models.User, models.Session, error)
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	GetCurrentUser(ctx context.Context) (models.User, bool)
	SignOut(ctx context.Context) error
}

// VideoService captures the post listings and writes behind the video endpoints.
type VideoService interface {
	GetCurrentUser(ctx context.Context) (models.User, bool)
	GetAllPosts(ctx context.Context) ([]models.Video, error)
	GetLatestPosts(ctx context.Context) ([]models.Video, error)
	SearchPosts(ctx context.Context, query string) ([]models.Video, error)
	GetUserPosts(ctx context.Context, userID string) ([]models.Video, error)
	GetSavedVideos(ctx context.Context, userID string) ([]models.Video, error)
	GetVideo(ctx context.Context, videoID string) (models.Video, error)
	CreateVideo(ctx context.Context, form models.VideoForm) (models.Video, error)
	UpdateVideo(ctx context.Context, update models.VideoUpdate, videoID string) (models.Video, error)
	ToggleBookmark(ctx context.Context, videoID, userID string) (models.Video, error)
}

// FileUploader stores uploaded files.
type FileUploader interface {
	GetCurrentUser(ctx context.Context) (models.User, bool)
	UploadFile(ctx context.Context, file *models.File, kind models.FileKind) (string, error)
}
