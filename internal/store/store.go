// Package store provides participant session persistence interfaces and implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

// SessionStore persists one participant session per session ID.
type SessionStore interface {
	// Load retrieves a session. It returns (nil, nil) when the session does
	// not exist or has expired.
	Load(ctx context.Context, id string) (*domain.Participant, error)

	// Save creates or replaces a session.
	Save(ctx context.Context, id string, p *domain.Participant) error

	// Clear removes a session entirely. Clearing a missing session is not an error.
	Clear(ctx context.Context, id string) error

	// Ping verifies backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ErrCorruptSession reports stored session data that no longer decodes into
// a valid participant.
var ErrCorruptSession = errors.New("corrupt participant session")

func encodeParticipant(p *domain.Participant) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode participant: %w", err)
	}
	return data, nil
}

func decodeParticipant(data []byte) (*domain.Participant, error) {
	var p domain.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}
	stage, err := domain.ParseStage(string(p.Stage))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}
	p.Stage = stage
	if p.Conversation == nil {
		p.Conversation = []domain.Turn{}
	}
	return &p, nil
}
