package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/aora/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the provided secret does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates the session outlived its TTL and was discarded.
	ErrSessionExpired = errors.New("session expired")
)

// SessionStore persists open sessions so they can survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Find(ctx context.Context, secret string) (models.Session, error)
	Delete(ctx context.Context, secret string) error
}

// Manager manages the lifecycle of sessions backed by a persistent store.
type Manager struct {
	ttl   time.Duration
	store SessionStore
	now   func() time.Time
}

// NewManager constructs a Manager that opens sessions valid for ttl.
func NewManager(ttl time.Duration, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		ttl:   ttl,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a new session for the provided account.
func (m *Manager) Create(ctx context.Context, accountID string) (models.Session, error) {
	if accountID == "" {
		return models.Session{}, errors.New("account id must be provided")
	}

	secret, err := randomToken()
	if err != nil {
		return models.Session{}, err
	}

	session := models.Session{
		Secret:    secret,
		AccountID: accountID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.Save(ctx, session); err != nil {
		return models.Session{}, err
	}

	return session, nil
}

// Resolve returns the active session for secret. Expired sessions are removed.
func (m *Manager) Resolve(ctx context.Context, secret string) (models.Session, error) {
	if secret == "" {
		return models.Session{}, ErrSessionNotFound
	}

	session, err := m.store.Find(ctx, secret)
	if err != nil {
		return models.Session{}, err
	}

	if m.now().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, secret)
		return models.Session{}, ErrSessionExpired
	}

	return session, nil
}

// Delete closes the session identified by secret.
func (m *Manager) Delete(ctx context.Context, secret string) error {
	if secret == "" {
		return ErrSessionNotFound
	}
	return m.store.Delete(ctx, secret)
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
