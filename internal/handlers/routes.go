package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{PlatformID: deps.PlatformID}
	account := AccountHandler{Accounts: deps.Accounts, Limiter: deps.AuthLimiter}
	videos := VideoHandler{Videos: deps.Videos, MaxUploadBytes: deps.MaxUploadBytes}
	files := FileHandler{Files: deps.Files, MaxUploadBytes: deps.MaxUploadBytes}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/account", account.Account)
	mux.HandleFunc("/api/v1/account/sessions", account.Sessions)
	mux.HandleFunc("/api/v1/account/sessions/current", account.CurrentSession)
	mux.HandleFunc("/api/v1/videos", videos.Collection)
	mux.HandleFunc("/api/v1/videos/latest", videos.Latest)
	mux.HandleFunc("/api/v1/videos/search", videos.Search)
	mux.HandleFunc("/api/v1/videos/{id}", videos.Item)
	mux.HandleFunc("/api/v1/videos/{id}/bookmark", videos.Bookmark)
	mux.HandleFunc("/api/v1/users/{id}/videos", videos.UserPosts)
	mux.HandleFunc("/api/v1/users/{id}/saved", videos.UserSaved)
	mux.HandleFunc("/api/v1/files", files.Upload)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts       AccountService
	Videos         VideoService
	Files          FileUploader
	AuthLimiter    RateLimiter
	MaxUploadBytes int64
	PlatformID     string
}
