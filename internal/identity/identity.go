// Package identity binds a browser to its participant session through a
// signed cookie.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/ashureev/fslsm-tutor/internal/store"
)

const (
	// CookieName carries the signed session token.
	CookieName = "tutor_session"
)

type contextKey int

const (
	sessionIDKey contextKey = iota
	participantKey
)

// SessionIDFromContext extracts the session ID from the request context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// ParticipantFromContext returns the participant loaded for this request,
// or nil when the browser has no active session.
func ParticipantFromContext(ctx context.Context) *domain.Participant {
	if v, ok := ctx.Value(participantKey).(*domain.Participant); ok {
		return v
	}
	return nil
}

// WithParticipant returns a context carrying sessionID and p.
func WithParticipant(ctx context.Context, sessionID string, p *domain.Participant) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return context.WithValue(ctx, participantKey, p)
}

// Manager loads, creates, persists and destroys participant sessions.
type Manager struct {
	store    store.SessionStore
	signer   *Signer
	lifetime time.Duration
	isDev    bool
	now      func() time.Time
}

// NewManager creates a session manager.
func NewManager(sessions store.SessionStore, signer *Signer, lifetime time.Duration, isDev bool) *Manager {
	return &Manager{
		store:    sessions,
		signer:   signer,
		lifetime: lifetime,
		isDev:    isDev,
		now:      time.Now,
	}
}

// Lifetime returns the fixed session lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time {
	return m.now()
}

func (m *Manager) sessionIDFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	sid, err := m.signer.Verify(c.Value)
	if err != nil {
		slog.Debug("Ignoring invalid session cookie", "error", err)
		return ""
	}
	return sid
}

// Middleware loads the participant for every request and places it in the
// request context. Requests without a valid session proceed with no participant.
// A stored session that no longer decodes is cleared and treated as absent.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := m.sessionIDFromRequest(r)

		var p *domain.Participant
		if sid != "" {
			loaded, err := m.store.Load(r.Context(), sid)
			if errors.Is(err, store.ErrCorruptSession) {
				slog.Warn("Discarding unreadable participant session", "session_id", sid, "error", err)
				if clearErr := m.store.Clear(r.Context(), sid); clearErr != nil {
					slog.Error("Failed to clear unreadable session", "session_id", sid, "error", clearErr)
				}
				loaded, err = nil, nil
			}
			if err != nil {
				slog.Error("Failed to load participant session", "session_id", sid, "error", err)
				http.Error(w, `{"error":"failed to load session"}`, http.StatusInternalServerError)
				return
			}
			p = loaded
			if p == nil {
				sid = ""
			}
		}

		next.ServeHTTP(w, r.WithContext(WithParticipant(r.Context(), sid, p)))
	})
}

// Start creates a new session for p, persists it and sets the session cookie.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, p *domain.Participant) (string, error) {
	if old := SessionIDFromContext(r.Context()); old != "" {
		if err := m.store.Clear(r.Context(), old); err != nil {
			slog.Warn("Failed to clear previous session", "session_id", old, "error", err)
		}
	}

	sid := NewSessionID()
	token, err := m.signer.Sign(sid, p.CreatedAt, p.ExpiresAt)
	if err != nil {
		return "", err
	}
	if err := m.store.Save(r.Context(), sid, p); err != nil {
		return "", fmt.Errorf("save new session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  p.ExpiresAt,
		MaxAge:   int(p.ExpiresAt.Sub(m.now()).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !m.isDev,
	})
	return sid, nil
}

// Save persists the participant attached to the request.
func (m *Manager) Save(r *http.Request, p *domain.Participant) error {
	sid := SessionIDFromContext(r.Context())
	if sid == "" || p == nil {
		return nil
	}
	return m.store.Save(r.Context(), sid, p)
}

// End discards the request's session entirely and expires the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !m.isDev,
	})

	sid := SessionIDFromContext(r.Context())
	if sid == "" {
		return nil
	}
	if err := m.store.Clear(r.Context(), sid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
