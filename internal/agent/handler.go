package agent

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/fslsm-tutor/internal/api"
	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/ashureev/fslsm-tutor/internal/identity"
	"github.com/ashureev/fslsm-tutor/internal/middleware"
	"github.com/ashureev/fslsm-tutor/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// defaultMaxRequestBodySize is the maximum allowed chat request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20 // 1MB

// SessionSaver persists the participant bound to a request.
type SessionSaver interface {
	Save(r *http.Request, p *domain.Participant) error
}

// Handler serves the chat API.
type Handler struct {
	agent    *Service
	sessions SessionSaver
}

// NewHandler creates a new chat handler.
func NewHandler(agentService *Service, sessions SessionSaver) *Handler {
	return &Handler{agent: agentService, sessions: sessions}
}

// HandleChat handles POST /api/chat.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	p := identity.ParticipantFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slog.Info("Chat request",
		"session_id", sessionID,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"message_length", len(req.Message),
	)

	reply, err := h.agent.Chat(r.Context(), p, req.Message)
	if errors.Is(err, ErrEmptyMessage) {
		api.Error(w, http.StatusBadRequest, "Empty message")
		return
	}
	if err != nil {
		slog.Error("Chat turn failed", "session_id", sessionID, "error", err)
		api.Error(w, http.StatusInternalServerError, "chat failed")
		return
	}

	if err := h.sessions.Save(r, p); err != nil {
		slog.Error("Failed to save session after chat", "session_id", sessionID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	api.JSON(w, http.StatusOK, ChatResponse{Reply: reply, HTML: web.RenderMarkdown(reply)})
}

// HandleParticipant handles GET /participant.
func (h *Handler) HandleParticipant(w http.ResponseWriter, r *http.Request) {
	p := identity.ParticipantFromContext(r.Context())
	api.JSON(w, http.StatusOK, map[string]string{
		"name":  p.Name,
		"group": string(p.Group),
	})
}

// HandleHistory handles GET /history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	p := identity.ParticipantFromContext(r.Context())
	turns := p.History()
	entries := make([]HistoryEntry, len(turns))
	for i, t := range turns {
		entries[i] = HistoryEntry{Role: t.Role, Content: t.Content, HTML: web.RenderMarkdown(t.Content)}
	}
	api.JSON(w, http.StatusOK, map[string][]HistoryEntry{
		"history": entries,
	})
}

// RegisterRoutes registers chat routes. Every route requires an active session.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireParticipantAPI)
		r.Post("/api/chat", h.HandleChat)
		r.Get("/participant", h.HandleParticipant)
		r.Get("/history", h.HandleHistory)
	})
}
