// Package api provides the HTTP handlers for the experiment pages.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/ashureev/fslsm-tutor/internal/experiment"
	"github.com/ashureev/fslsm-tutor/internal/identity"
	"github.com/ashureev/fslsm-tutor/web"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// GroupObserver is notified when a participant is assigned a condition.
type GroupObserver interface {
	ObserveGroupAssigned(group domain.Group)
}

// Handler serves the experiment pages and form submissions.
type Handler struct {
	sessions *identity.Manager
	machine  *experiment.Machine
	assigner *experiment.Assigner
	pages    *web.Renderer
	groups   GroupObserver
}

// NewHandler creates a page handler. groups may be nil.
func NewHandler(sessions *identity.Manager, machine *experiment.Machine, assigner *experiment.Assigner, pages *web.Renderer, groups GroupObserver) *Handler {
	return &Handler{
		sessions: sessions,
		machine:  machine,
		assigner: assigner,
		pages:    pages,
		groups:   groups,
	}
}

func (h *Handler) render(w http.ResponseWriter, name string, page web.Page) {
	body, err := h.pages.RenderBytes(name, page)
	if err != nil {
		slog.Error("Failed to render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, body)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Debug("Failed to write page", "error", err)
	}
}

func timeline(stage domain.Stage) []web.TimelineSegment {
	entries := experiment.RenderTimeline(stage)
	out := make([]web.TimelineSegment, 0, len(entries))
	for _, e := range entries {
		out = append(out, web.TimelineSegment{Label: e.Label, Status: string(e.Status)})
	}
	return out
}

func fallbackURL(f experiment.Fallback) string {
	if f == experiment.FallbackChat {
		return "/chat"
	}
	return "/"
}
