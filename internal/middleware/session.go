package middleware

import (
	"net/http"
	"strings"

	"github.com/aora/backend/internal/auth"
)

// SessionHeader carries the session secret issued at sign-in.
const SessionHeader = "X-Aora-Session"

// Session copies the request's session secret onto its context. The secret is
// read from SessionHeader, falling back to an Authorization bearer token.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := SessionSecret(r)
		if secret == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSessionSecret(r.Context(), secret)))
	})
}

// SessionSecret extracts the session secret from r's headers.
func SessionSecret(r *http.Request) string {
	if secret := strings.TrimSpace(r.Header.Get(SessionHeader)); secret != "" {
		return secret
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
