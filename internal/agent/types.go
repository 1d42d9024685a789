// Package agent implements the AI tutoring assistant gateway.
package agent

import (
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

// ErrorMarker prefixes replies produced when the completion call fails.
const ErrorMarker = "**[LLM Error]**"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned for a completed chat turn.
type ChatResponse struct {
	Reply string `json:"reply"`
	HTML  string `json:"html"`
}

// HistoryEntry is one conversation turn as returned by GET /history.
type HistoryEntry struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
	HTML    string      `json:"html"`
}

// Config holds gateway configuration. It is read-only after startup.
type Config struct {
	BaseURL     string
	APIKey      string
	ModelName   string
	Temperature float32
	MaxTokens   int
}

// DefaultConfig returns the default completion parameters.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.avalai.ir/v1",
		ModelName:   "grok-3-mini-latest",
		Temperature: 0.2,
		MaxTokens:   5000,
	}
}

// CompletionObserver is notified after every completion call.
type CompletionObserver interface {
	ObserveCompletion(d time.Duration, ok bool)
}

// TurnObserver is notified after every chat turn.
type TurnObserver interface {
	ObserveChatTurn(group domain.Group, ok bool)
}
