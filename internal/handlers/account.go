package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/aora/backend/internal/logging"
	"github.com/aora/backend/internal/models"
)

// AccountHandler implements sign-up, sign-in, sign-out and the session check.
type AccountHandler struct {
	Accounts AccountService
	Limiter  RateLimiter
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Secret    string `json:"secret"`
	ExpiresAt string `json:"expiresAt"`
}

type signUpResponse struct {
	User    models.User     `json:"user"`
	Session sessionResponse `json:"session"`
}

func newSessionResponse(s models.Session) sessionResponse {
	return sessionResponse{Secret: s.Secret, ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339)}
}

// Account handles GET and POST /api/v1/account.
func (h AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.signUp(w, r)
	case http.MethodGet:
		h.current(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h AccountHandler) signUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "signup") {
		logger.Warn("signup rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, errorResponse{Error: "too many sign-up attempts"})
		return
	}

	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.Warn("invalid signup payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, session, err := h.Accounts.CreateUser(ctx, req.Email, req.Password, req.Username)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logger.Info("account created", "userId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, signUpResponse{User: user, Session: newSessionResponse(session)})
}

func (h AccountHandler) current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.Accounts.GetCurrentUser(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "not signed in"})
		return
	}
	respondJSON(ctx, w, http.StatusOK, user)
}

// Sessions handles POST /api/v1/account/sessions.
func (h AccountHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "signin") {
		logger.Warn("signin rate limited", "ip", clientIP(r))
		respondJSON(ctx, w, http.StatusTooManyRequests, errorResponse{Error: "too many sign-in attempts"})
		return
	}

	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		logger.Warn("invalid signin payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.Accounts.SignIn(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]sessionResponse{"session": newSessionResponse(session)})
}

// CurrentSession handles DELETE /api/v1/account/sessions/current.
func (h AccountHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if err := h.Accounts.SignOut(ctx); err != nil {
		respondError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
