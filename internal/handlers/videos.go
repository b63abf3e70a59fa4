package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"

	"github.com/aora/backend/internal/logging"
	"github.com/aora/backend/internal/models"
)

// DefaultMaxUploadBytes bounds multipart bodies when no limit is configured.
const DefaultMaxUploadBytes int64 = 64 << 20

const multipartMemory = 8 << 20

// VideoHandler provides the post listing, creation and update endpoints.
type VideoHandler struct {
	Videos         VideoService
	MaxUploadBytes int64
}

type bookmarkResponse struct {
	Video      models.Video `json:"video"`
	Bookmarked bool         `json:"bookmarked"`
}

// Collection handles GET and POST /api/v1/videos.
func (h VideoHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		videos, err := h.Videos.GetAllPosts(r.Context())
		h.respondList(w, r, videos, err)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Latest handles GET /api/v1/videos/latest.
func (h VideoHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	videos, err := h.Videos.GetLatestPosts(r.Context())
	h.respondList(w, r, videos, err)
}

// Search handles GET /api/v1/videos/search?q=.
func (h VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	videos, err := h.Videos.SearchPosts(r.Context(), r.URL.Query().Get("q"))
	h.respondList(w, r, videos, err)
}

// UserPosts handles GET /api/v1/users/{id}/videos.
func (h VideoHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	videos, err := h.Videos.GetUserPosts(r.Context(), r.PathValue("id"))
	h.respondList(w, r, videos, err)
}

// UserSaved handles GET /api/v1/users/{id}/saved.
func (h VideoHandler) UserSaved(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	videos, err := h.Videos.GetSavedVideos(r.Context(), r.PathValue("id"))
	h.respondList(w, r, videos, err)
}

// Item handles GET and PATCH /api/v1/videos/{id}.
func (h VideoHandler) Item(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		video, err := h.Videos.GetVideo(ctx, id)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		respondJSON(ctx, w, http.StatusOK, video)
	case http.MethodPatch:
		user, ok := h.Videos.GetCurrentUser(ctx)
		if !ok {
			respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "not signed in"})
			return
		}

		var update models.VideoUpdate
		if err := decodeJSON(r, &update); err != nil {
			logging.FromContext(ctx).Warn("invalid video update payload", "videoId", id, "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		// Anyone signed in may change likedBy; other fields belong to the creator.
		if update.ChangesContent() {
			current, err := h.Videos.GetVideo(ctx, id)
			if err != nil {
				respondError(ctx, w, err)
				return
			}
			if current.CreatorID != user.ID {
				logging.FromContext(ctx).Warn("video update by non-creator", "videoId", id, "userId", user.ID)
				respondJSON(ctx, w, http.StatusForbidden, errorResponse{Error: "only the creator can edit this post"})
				return
			}
		}

		video, err := h.Videos.UpdateVideo(ctx, update, id)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		respondJSON(ctx, w, http.StatusOK, video)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Bookmark handles POST /api/v1/videos/{id}/bookmark, flipping the current
// user's membership in the post's likedBy set in the store.
func (h VideoHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	user, ok := h.Videos.GetCurrentUser(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "not signed in"})
		return
	}

	video, err := h.Videos.ToggleBookmark(ctx, r.PathValue("id"), user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	bookmarked := slices.Contains(video.LikedBy, user.ID)
	logging.FromContext(ctx).Info("bookmark toggled", "videoId", video.ID, "userId", user.ID, "bookmarked", bookmarked)
	respondJSON(ctx, w, http.StatusOK, bookmarkResponse{Video: video, Bookmarked: bookmarked})
}

func (h VideoHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	user, ok := h.Videos.GetCurrentUser(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "not signed in"})
		return
	}

	if !parseMultipart(w, r, h.MaxUploadBytes) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	thumbnail, closeThumb, err := formFile(r, "thumbnail")
	if err != nil {
		logger.Warn("invalid thumbnail part", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "thumbnail is required"})
		return
	}
	defer closeThumb()

	video, closeVideo, err := formFile(r, "video")
	if err != nil {
		logger.Warn("invalid video part", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "video is required"})
		return
	}
	defer closeVideo()

	created, err := h.Videos.CreateVideo(ctx, models.VideoForm{
		Title:     r.FormValue("title"),
		Prompt:    r.FormValue("prompt"),
		Thumbnail: thumbnail,
		Video:     video,
		CreatorID: user.ID,
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logger.Info("video created", "videoId", created.ID, "creatorId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, created)
}

func (h VideoHandler) respondList(w http.ResponseWriter, r *http.Request, videos []models.Video, err error) {
	ctx := r.Context()
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	respondJSON(ctx, w, http.StatusOK, map[string][]models.Video{"videos": videos})
}

// parseMultipart bounds and parses a multipart body, writing the error
// response itself when parsing fails.
func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) bool {
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		ctx := r.Context()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(ctx, w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
			return false
		}
		logging.FromContext(ctx).Warn("invalid multipart payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid multipart body"})
		return false
	}
	return true
}

func formFile(r *http.Request, field string) (*models.File, func(), error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, func() {}, err
	}
	return newFile(f, header), func() { _ = f.Close() }, nil
}

func newFile(body io.Reader, header *multipart.FileHeader) *models.File {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			contentType = byExt
		}
	}
	return &models.File{
		Name:     header.Filename,
		MimeType: contentType,
		Size:     header.Size,
		Body:     body,
	}
}
