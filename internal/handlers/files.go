package handlers

import (
	"net/http"

	"github.com/aora/backend/internal/logging"
	"github.com/aora/backend/internal/models"
)

// FileHandler stores single uploads and returns their public URL.
type FileHandler struct {
	Files          FileUploader
	MaxUploadBytes int64
}

// Upload handles POST /api/v1/files?type=image|video.
func (h FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if _, ok := h.Files.GetCurrentUser(ctx); !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "not signed in"})
		return
	}

	if !parseMultipart(w, r, h.MaxUploadBytes) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	var file *models.File
	if f, closeFile, err := formFile(r, "file"); err == nil {
		defer closeFile()
		file = f
	} else {
		logging.FromContext(ctx).Warn("upload without file part", "error", err)
	}

	url, err := h.Files.UploadFile(ctx, file, models.FileKind(r.URL.Query().Get("type")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, map[string]string{"url": url})
}
