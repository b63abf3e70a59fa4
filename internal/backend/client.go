package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aora/backend/internal/models"
)

// AccountStore persists credential records.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	Delete(ctx context.Context, id string) error
}

// SessionManager opens, resolves and closes sessions.
type SessionManager interface {
	Create(ctx context.Context, accountID string) (models.Session, error)
	Resolve(ctx context.Context, secret string) (models.Session, error)
	Delete(ctx context.Context, secret string) error
}

// UserStore persists user profile documents.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByAccountID(ctx context.Context, accountID string) (models.User, error)
}

// VideoStore persists video documents.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, id string, update models.VideoUpdate, updatedAt time.Time) (models.Video, error)
	// ToggleLike adds userID to the post's likedBy set or removes it, in one
	// atomic step against concurrent toggles.
	ToggleLike(ctx context.Context, id, userID string, updatedAt time.Time) (models.Video, error)
	List(ctx context.Context, query models.VideoQuery) ([]models.Video, error)
}

// FileStorage stores file bodies under a key in the configured bucket.
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// Services groups the concrete handles a Client forwards to.
type Services struct {
	Accounts AccountStore
	Sessions SessionManager
	Users    UserStore
	Videos   VideoStore
	Files    FileStorage
}

// Client is a configured handle to the backend project.
type Client struct {
	cfg Config

	Accounts AccountStore
	Sessions SessionManager
	Users    UserStore
	Videos   VideoStore
	Files    FileStorage
}

// New validates cfg and binds the provided services to it.
func New(cfg Config, svc Services) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if svc.Accounts == nil || svc.Sessions == nil || svc.Users == nil || svc.Videos == nil || svc.Files == nil {
		return nil, errors.New("backend: all services must be provided")
	}

	cfg.Endpoint = strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/")

	return &Client{
		cfg:      cfg,
		Accounts: svc.Accounts,
		Sessions: svc.Sessions,
		Users:    svc.Users,
		Videos:   svc.Videos,
		Files:    svc.Files,
	}, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// InitialsURL returns the avatar URL rendering the initials of name.
func (c *Client) InitialsURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("project", c.cfg.ProjectID)
	return fmt.Sprintf("%s/avatars/initials?%s", c.cfg.Endpoint, q.Encode())
}

// Preview dimensions applied to every image URL.
const (
	PreviewWidth   = 2000
	PreviewHeight  = 2000
	PreviewGravity = "top"
	PreviewQuality = 100
)

// PreviewURL returns the cropped image preview URL of a stored file.
func (c *Client) PreviewURL(fileID string) string {
	q := url.Values{}
	q.Set("width", fmt.Sprint(PreviewWidth))
	q.Set("height", fmt.Sprint(PreviewHeight))
	q.Set("gravity", PreviewGravity)
	q.Set("quality", fmt.Sprint(PreviewQuality))
	q.Set("project", c.cfg.ProjectID)
	return fmt.Sprintf("%s/preview?%s", c.fileBase(fileID), q.Encode())
}

// ViewURL returns the direct view URL of a stored file.
func (c *Client) ViewURL(fileID string) string {
	q := url.Values{}
	q.Set("project", c.cfg.ProjectID)
	return fmt.Sprintf("%s/view?%s", c.fileBase(fileID), q.Encode())
}

func (c *Client) fileBase(fileID string) string {
	return fmt.Sprintf("%s/storage/buckets/%s/files/%s", c.cfg.Endpoint, url.PathEscape(c.cfg.StorageID), url.PathEscape(fileID))
}
