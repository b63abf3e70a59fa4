package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aora/backend/internal/logging"
	"github.com/aora/backend/internal/repositories"
	"github.com/aora/backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	if kind := service.KindOf(err); kind != nil {
		resp.Kind = kind.Error()
	}
	respondJSON(ctx, w, statusFor(err), resp)
}

// statusFor maps a data access failure to its HTTP status. Causes are checked
// before kinds so a missing record reads as 404 whichever operation hit it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUpload):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrCreation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrFetch), errors.Is(err, service.ErrUpdate):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
