package store

import (
	"context"
	"sync"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Participant
	now      func() time.Time
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Participant),
		now:      time.Now,
	}
}

// Load returns a copy of the stored participant.
func (s *MemoryStore) Load(_ context.Context, id string) (*domain.Participant, error) {
	s.mu.RLock()
	p, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if p.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, nil
	}
	return p.Clone(), nil
}

// Save stores a copy of p.
func (s *MemoryStore) Save(_ context.Context, id string, p *domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = p.Clone()
	return nil
}

// Clear removes the session.
func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
