package memstore

import (
	"time"

	"github.com/aora/backend/internal/auth"
	"github.com/aora/backend/internal/backend"
)

// Backend bundles one of each in-memory store.
type Backend struct {
	Accounts *Accounts
	Users    *Users
	Videos   *Videos
	Files    *Files
	Sessions *auth.Manager
	Store    *auth.InMemorySessionStore
}

// New returns an empty in-memory backend whose sessions live for sessionTTL.
func New(sessionTTL time.Duration) *Backend {
	users := NewUsers()
	store := auth.NewInMemorySessionStore()
	return &Backend{
		Accounts: NewAccounts(),
		Users:    users,
		Videos:   NewVideos(users),
		Files:    NewFiles(),
		Sessions: auth.NewManager(sessionTTL, store),
		Store:    store,
	}
}

// Services exposes the stores as backend service handles.
func (b *Backend) Services() backend.Services {
	return backend.Services{
		Accounts: b.Accounts,
		Sessions: b.Sessions,
		Users:    b.Users,
		Videos:   b.Videos,
		Files:    b.Files,
	}
}

var (
	_ backend.AccountStore   = (*Accounts)(nil)
	_ backend.UserStore      = (*Users)(nil)
	_ backend.VideoStore     = (*Videos)(nil)
	_ backend.FileStorage    = (*Files)(nil)
	_ backend.SessionManager = (*auth.Manager)(nil)
)
