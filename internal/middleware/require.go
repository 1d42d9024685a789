package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/fslsm-tutor/internal/identity"
)

// RequireParticipant redirects browsers without an active session to the
// homepage. Use it on page routes.
func RequireParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.ParticipantFromContext(r.Context()) == nil {
			slog.Debug("No active session, redirecting home", "path", r.URL.Path)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireParticipantAPI rejects requests without an active session with a
// JSON error. Use it on API routes.
func RequireParticipantAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.ParticipantFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"no active session"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
