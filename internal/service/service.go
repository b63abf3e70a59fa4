// Package service holds the data access functions the app's screens call. Each
// function maps one user intent to one or two backend calls and reports
// failures as a *Error of a fixed kind.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/aora/backend/internal/auth"
	"github.com/aora/backend/internal/backend"
	"github.com/aora/backend/internal/logging"
	"github.com/aora/backend/internal/models"
	"github.com/aora/backend/internal/repositories"
)

// LatestPostsLimit caps the latest posts listing.
const LatestPostsLimit = 7

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 8

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errUnsupportedKind    = fmt.Errorf("%w: unsupported file type", ErrInvalidInput)
	errMissingFile        = fmt.Errorf("%w: file is required", ErrInvalidInput)
)

// Service forwards user intents to the backend client.
type Service struct {
	client *backend.Client
	now    func() time.Time
	newID  func() string
}

// New constructs a Service bound to client.
func New(client *backend.Client) *Service {
	if client == nil {
		panic("service: backend client must not be nil")
	}
	return &Service{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// CreateUser registers an account, opens a session for it and stores the user document.
func (s *Service) CreateUser(ctx context.Context, email, password, username string) (user models.User, session models.Session, err error) {
	const op = "createUser"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if _, perr := mail.ParseAddress(email); perr != nil || email == "" {
		return models.User{}, models.Session{}, wrap(op, ErrCreation, fmt.Errorf("%w: invalid email address %q", ErrInvalidInput, email))
	}
	if len(password) < MinPasswordLength {
		return models.User{}, models.Session{}, wrap(op, ErrCreation, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength))
	}
	if username == "" {
		return models.User{}, models.Session{}, wrap(op, ErrCreation, invalid("username is required"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, models.Session{}, wrap(op, ErrCreation, fmt.Errorf("hash password: %w", err))
	}

	now := s.now()
	account := models.Account{
		ID:        s.newID(),
		Email:     email,
		Password:  string(hashed),
		Name:      username,
		CreatedAt: now,
	}
	if err := s.client.Accounts.Create(ctx, account); err != nil {
		return models.User{}, models.Session{}, wrap(op, ErrCreation, fmt.Errorf("create account: %w", err))
	}

	session, err = s.SignIn(ctx, email, password)
	if err != nil {
		s.discardAccount(ctx, account.ID, "")
		return models.User{}, models.Session{}, wrap(op, ErrCreation, err)
	}

	user = models.User{
		ID:        s.newID(),
		AccountID: account.ID,
		Email:     email,
		Username:  username,
		Avatar:    s.client.InitialsURL(username),
		CreatedAt: now,
	}
	if err := s.client.Users.Create(ctx, user); err != nil {
		s.discardAccount(ctx, account.ID, session.Secret)
		return models.User{}, models.Session{}, wrap(op, ErrCreation, fmt.Errorf("create user document: %w", err))
	}

	return user, session, nil
}

// discardAccount undoes a partial sign-up so the email can register again.
// Cleanup failures are logged; the caller reports the original error.
func (s *Service) discardAccount(ctx context.Context, accountID, secret string) {
	logger := logging.FromContext(ctx)
	if secret != "" {
		if err := s.client.Sessions.Delete(ctx, secret); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			logger.Error("discard sign-up session", "accountId", accountID, "error", err)
		}
	}
	if err := s.client.Accounts.Delete(ctx, accountID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("discard sign-up account", "accountId", accountID, "error", err)
	}
}

// SignIn opens a session for the account matching the credentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (session models.Session, err error) {
	const op = "signIn"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return models.Session{}, wrap(op, ErrAuth, errInvalidCredentials)
	}

	account, err := s.client.Accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Session{}, wrap(op, ErrAuth, errInvalidCredentials)
		}
		return models.Session{}, wrap(op, ErrAuth, fmt.Errorf("lookup account: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return models.Session{}, wrap(op, ErrAuth, errInvalidCredentials)
	}

	session, err = s.client.Sessions.Create(ctx, account.ID)
	if err != nil {
		return models.Session{}, wrap(op, ErrAuth, fmt.Errorf("create session: %w", err))
	}

	return session, nil
}

// GetCurrentUser resolves the session carried by ctx to its user document.
// Failures are logged and reported as ok == false.
func (s *Service) GetCurrentUser(ctx context.Context) (models.User, bool) {
	ctx, span := logging.StartSpan(ctx, "getCurrentUser")
	defer span.End(nil)
	logger := logging.FromContext(ctx)

	secret := auth.SessionSecretFromContext(ctx)
	if secret == "" {
		logger.Debug("no session on request")
		return models.User{}, false
	}

	session, err := s.client.Sessions.Resolve(ctx, secret)
	if err != nil {
		logger.Info("current session unavailable", "error", err)
		return models.User{}, false
	}

	user, err := s.client.Users.FindByAccountID(ctx, session.AccountID)
	if err != nil {
		logger.Warn("current user lookup failed", "accountId", session.AccountID, "error", err)
		return models.User{}, false
	}

	return user, true
}

// SignOut closes the session carried by ctx.
func (s *Service) SignOut(ctx context.Context) (err error) {
	const op = "signOut"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	secret := auth.SessionSecretFromContext(ctx)
	if secret == "" {
		return wrap(op, ErrAuth, auth.ErrSessionNotFound)
	}
	if err := s.client.Sessions.Delete(ctx, secret); err != nil {
		return wrap(op, ErrAuth, err)
	}
	return nil
}

// GetAllPosts lists every post, newest first.
func (s *Service) GetAllPosts(ctx context.Context) ([]models.Video, error) {
	return s.list(ctx, "getAllPosts", models.VideoQuery{})
}

// GetLatestPosts lists up to LatestPostsLimit posts, newest first.
func (s *Service) GetLatestPosts(ctx context.Context) ([]models.Video, error) {
	return s.list(ctx, "getLatestPosts", models.VideoQuery{Limit: LatestPostsLimit})
}

// SearchPosts lists posts whose title contains query, newest first.
func (s *Service) SearchPosts(ctx context.Context, query string) ([]models.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Video{}, nil
	}
	return s.list(ctx, "searchPosts", models.VideoQuery{TitleSearch: query})
}

// GetUserPosts lists the posts created by userID, newest first.
func (s *Service) GetUserPosts(ctx context.Context, userID string) ([]models.Video, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, wrap("getUserPosts", ErrFetch, invalid("user id is required"))
	}
	return s.list(ctx, "getUserPosts", models.VideoQuery{CreatorID: userID})
}

// GetSavedVideos lists the posts bookmarked by userID, newest first.
func (s *Service) GetSavedVideos(ctx context.Context, userID string) ([]models.Video, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, wrap("getSavedVideos", ErrFetch, invalid("user id is required"))
	}
	return s.list(ctx, "getSavedVideos", models.VideoQuery{LikedBy: userID})
}

// GetVideo loads one post.
func (s *Service) GetVideo(ctx context.Context, videoID string) (video models.Video, err error) {
	const op = "getVideo"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	video, err = s.client.Videos.Get(ctx, videoID)
	if err != nil {
		return models.Video{}, wrap(op, ErrFetch, err)
	}
	return video, nil
}

func (s *Service) list(ctx context.Context, op string, query models.VideoQuery) (videos []models.Video, err error) {
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	videos, err = s.client.Videos.List(ctx, query)
	if err != nil {
		return nil, wrap(op, ErrFetch, err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, nil
}

// FilePreview returns the public URL of a stored file: a cropped preview for
// images and the direct view URL for videos.
func (s *Service) FilePreview(fileID string, kind models.FileKind) (string, error) {
	switch kind {
	case models.FileKindVideo:
		return s.client.ViewURL(fileID), nil
	case models.FileKindImage:
		return s.client.PreviewURL(fileID), nil
	default:
		return "", wrap("getFilePreview", ErrUpload, fmt.Errorf("%w %q", errUnsupportedKind, kind))
	}
}

// UploadFile stores file and returns its public URL. Unsupported kinds are
// rejected before anything is stored.
func (s *Service) UploadFile(ctx context.Context, file *models.File, kind models.FileKind) (fileURL string, err error) {
	const op = "uploadFile"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	if kind != models.FileKindImage && kind != models.FileKindVideo {
		return "", wrap(op, ErrUpload, fmt.Errorf("%w %q", errUnsupportedKind, kind))
	}
	if file == nil || file.Body == nil {
		return "", wrap(op, ErrUpload, errMissingFile)
	}

	fileID, err := s.client.Files.Save(ctx, s.newID(), file.Body, file.MimeType)
	if err != nil {
		return "", wrap(op, ErrUpload, err)
	}

	return s.FilePreview(fileID, kind)
}

// CreateVideo uploads the thumbnail and video concurrently and then stores the
// post. The post is never written unless both uploads succeed.
func (s *Service) CreateVideo(ctx context.Context, form models.VideoForm) (video models.Video, err error) {
	const op = "createVideo"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	form.Title = strings.TrimSpace(form.Title)
	switch {
	case form.Title == "":
		return models.Video{}, wrap(op, ErrCreation, invalid("title is required"))
	case form.CreatorID == "":
		return models.Video{}, wrap(op, ErrCreation, invalid("creator id is required"))
	case form.Thumbnail == nil:
		return models.Video{}, wrap(op, ErrCreation, fmt.Errorf("thumbnail: %w", errMissingFile))
	case form.Video == nil:
		return models.Video{}, wrap(op, ErrCreation, fmt.Errorf("video: %w", errMissingFile))
	}

	var thumbnailURL, videoURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.UploadFile(gctx, form.Thumbnail, models.FileKindImage)
		thumbnailURL = u
		return err
	})
	g.Go(func() error {
		u, err := s.UploadFile(gctx, form.Video, models.FileKindVideo)
		videoURL = u
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Video{}, wrap(op, ErrCreation, err)
	}

	now := s.now()
	video = models.Video{
		ID:        s.newID(),
		Title:     form.Title,
		Prompt:    form.Prompt,
		Thumbnail: thumbnailURL,
		VideoURL:  videoURL,
		CreatorID: form.CreatorID,
		LikedBy:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.client.Videos.Create(ctx, video); err != nil {
		return models.Video{}, wrap(op, ErrCreation, err)
	}

	return video, nil
}

// UpdateVideo applies a partial update to the post identified by videoID.
func (s *Service) UpdateVideo(ctx context.Context, update models.VideoUpdate, videoID string) (video models.Video, err error) {
	const op = "updateVideo"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	if strings.TrimSpace(videoID) == "" {
		return models.Video{}, wrap(op, ErrUpdate, invalid("video id is required"))
	}
	if update.Empty() {
		return models.Video{}, wrap(op, ErrUpdate, invalid("no fields to update"))
	}
	if update.LikedBy != nil {
		liked := models.UniqueIDs(*update.LikedBy)
		update.LikedBy = &liked
	}

	video, err = s.client.Videos.Update(ctx, videoID, update, s.now())
	if err != nil {
		return models.Video{}, wrap(op, ErrUpdate, err)
	}
	return video, nil
}

// ToggleBookmark adds userID to the post's likedBy set or removes it. The
// store applies the flip atomically, so concurrent bookmarks on one post
// from different users are all kept.
func (s *Service) ToggleBookmark(ctx context.Context, videoID, userID string) (video models.Video, err error) {
	const op = "toggleBookmark"
	ctx, span := logging.StartSpan(ctx, op)
	defer func() { span.End(err) }()

	if strings.TrimSpace(videoID) == "" {
		return models.Video{}, wrap(op, ErrUpdate, invalid("video id is required"))
	}
	if strings.TrimSpace(userID) == "" {
		return models.Video{}, wrap(op, ErrUpdate, invalid("user id is required"))
	}

	video, err = s.client.Videos.ToggleLike(ctx, videoID, userID, s.now())
	if err != nil {
		return models.Video{}, wrap(op, ErrUpdate, err)
	}
	return video, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
