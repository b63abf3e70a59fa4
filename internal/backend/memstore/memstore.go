// Package memstore implements the backend service handles in memory, for tests
// and for running the server without a database.
package memstore

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aora/backend/internal/models"
	"github.com/aora/backend/internal/repositories"
)

// Accounts is an in-memory backend.AccountStore keyed by email.
type Accounts struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

// NewAccounts returns an empty account store.
func NewAccounts() *Accounts {
	return &Accounts{accounts: make(map[string]models.Account)}
}

func (s *Accounts) Create(_ context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Email]; ok {
		return repositories.ErrConflict
	}
	s.accounts[account.Email] = account
	return nil
}

func (s *Accounts) FindByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[email]
	if !ok {
		return models.Account{}, repositories.ErrNotFound
	}
	return account, nil
}

func (s *Accounts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, account := range s.accounts {
		if account.ID == id {
			delete(s.accounts, email)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// Users is an in-memory backend.UserStore.
type Users struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewUsers returns an empty user store.
func NewUsers() *Users {
	return &Users{users: make(map[string]models.User)}
}

func (s *Users) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.AccountID == user.AccountID {
			return repositories.ErrConflict
		}
	}
	if _, ok := s.users[user.ID]; ok {
		return repositories.ErrConflict
	}
	s.users[user.ID] = user
	return nil
}

func (s *Users) FindByAccountID(_ context.Context, accountID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.AccountID == accountID {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *Users) byID(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok
}

// Videos is an in-memory backend.VideoStore. Creators are resolved through users.
type Videos struct {
	users *Users

	mu     sync.RWMutex
	videos map[string]models.Video
}

// NewVideos returns an empty video store resolving creators from users.
func NewVideos(users *Users) *Videos {
	return &Videos{users: users, videos: make(map[string]models.Video)}
}

func (s *Videos) Create(_ context.Context, video models.Video) error {
	if _, ok := s.users.byID(video.CreatorID); !ok {
		return repositories.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[video.ID]; ok {
		return repositories.ErrConflict
	}
	video.LikedBy = models.UniqueIDs(video.LikedBy)
	video.Creator = models.User{}
	s.videos[video.ID] = video
	return nil
}

func (s *Videos) Get(_ context.Context, id string) (models.Video, error) {
	s.mu.RLock()
	video, ok := s.videos[id]
	s.mu.RUnlock()
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return s.resolve(video), nil
}

func (s *Videos) Update(ctx context.Context, id string, update models.VideoUpdate, updatedAt time.Time) (models.Video, error) {
	s.mu.Lock()
	video, ok := s.videos[id]
	if !ok {
		s.mu.Unlock()
		return models.Video{}, repositories.ErrNotFound
	}
	if update.Title != nil {
		video.Title = *update.Title
	}
	if update.Prompt != nil {
		video.Prompt = *update.Prompt
	}
	if update.Thumbnail != nil {
		video.Thumbnail = *update.Thumbnail
	}
	if update.VideoURL != nil {
		video.VideoURL = *update.VideoURL
	}
	if update.LikedBy != nil {
		video.LikedBy = models.UniqueIDs(*update.LikedBy)
	}
	video.UpdatedAt = updatedAt
	s.videos[id] = video
	s.mu.Unlock()

	return s.Get(ctx, id)
}

func (s *Videos) ToggleLike(ctx context.Context, id, userID string, updatedAt time.Time) (models.Video, error) {
	s.mu.Lock()
	video, ok := s.videos[id]
	if !ok {
		s.mu.Unlock()
		return models.Video{}, repositories.ErrNotFound
	}
	if contains(video.LikedBy, userID) {
		kept := make([]string, 0, len(video.LikedBy))
		for _, liked := range video.LikedBy {
			if liked != userID {
				kept = append(kept, liked)
			}
		}
		video.LikedBy = kept
	} else {
		video.LikedBy = append(append([]string{}, video.LikedBy...), userID)
	}
	video.UpdatedAt = updatedAt
	s.videos[id] = video
	s.mu.Unlock()

	return s.Get(ctx, id)
}

func (s *Videos) List(_ context.Context, query models.VideoQuery) ([]models.Video, error) {
	search := strings.ToLower(query.TitleSearch)

	s.mu.RLock()
	out := []models.Video{}
	for _, video := range s.videos {
		if query.CreatorID != "" && video.CreatorID != query.CreatorID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(video.Title), search) {
			continue
		}
		if query.LikedBy != "" && !contains(video.LikedBy, query.LikedBy) {
			continue
		}
		out = append(out, video)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	for i := range out {
		out[i] = s.resolve(out[i])
	}
	return out, nil
}

func (s *Videos) resolve(video models.Video) models.Video {
	if user, ok := s.users.byID(video.CreatorID); ok {
		video.Creator = user
	}
	video.LikedBy = append([]string{}, video.LikedBy...)
	return video
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Files is an in-memory backend.FileStorage.
type Files struct {
	mu    sync.RWMutex
	files map[string]StoredFile
}

// StoredFile is a file body kept by Files.
type StoredFile struct {
	ContentType string
	Data        []byte
}

// NewFiles returns an empty file store.
func NewFiles() *Files {
	return &Files{files: make(map[string]StoredFile)}
}

func (s *Files) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, readerWithContext{ctx: ctx, r: r}); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.files[key] = StoredFile{ContentType: contentType, Data: buf.Bytes()}
	s.mu.Unlock()
	return key, nil
}

// Get returns a stored file.
func (s *Files) Get(key string) (StoredFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[key]
	return f, ok
}

// Len reports how many files are stored.
func (s *Files) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
