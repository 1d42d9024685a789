package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single chat message.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Participant holds the full state of one experiment run.
//
// Name, Group and Profile are set once by NewParticipant. Stage changes only
// through SetStage and Conversation only grows through Append.
type Participant struct {
	Name            string    `json:"name"`
	Group           Group     `json:"group"`
	Profile         Profile   `json:"profile"`
	OriginalProfile Profile   `json:"original_profile"`
	Stage           Stage     `json:"stage"`
	Conversation    []Turn    `json:"conversation"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

var (
	errEmptyName    = errors.New("participant name is required")
	errInvalidGroup = errors.New("participant group is invalid")
)

// NewParticipant creates a participant positioned at the first chat stage.
// profile is the profile exposed to the assistant; computed is the
// questionnaire result retained for analysis.
func NewParticipant(name string, group Group, profile, computed Profile, now time.Time, lifetime time.Duration) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errEmptyName
	}
	if !group.Valid() {
		return nil, fmt.Errorf("%w: %q", errInvalidGroup, group)
	}
	return &Participant{
		Name:            name,
		Group:           group,
		Profile:         profile.Clone(),
		OriginalProfile: computed.Clone(),
		Stage:           StageChat1,
		Conversation:    []Turn{},
		CreatedAt:       now,
		ExpiresAt:       now.Add(lifetime),
	}, nil
}

// SetStage overwrites the current stage. Unknown stages are rejected.
func (p *Participant) SetStage(s Stage) error {
	if !s.Valid() {
		return fmt.Errorf("set stage: unknown stage %q", s)
	}
	p.Stage = s
	return nil
}

// Append adds a turn to the end of the conversation.
func (p *Participant) Append(role Role, content string) {
	p.Conversation = append(p.Conversation, Turn{Role: role, Content: content})
}

// RecentWindow returns the last n turns in original order.
func (p *Participant) RecentWindow(n int) []Turn {
	if n <= 0 {
		return []Turn{}
	}
	start := 0
	if n < len(p.Conversation) {
		start = len(p.Conversation) - n
	}
	out := make([]Turn, len(p.Conversation)-start)
	copy(out, p.Conversation[start:])
	return out
}

// History returns the entire conversation.
func (p *Participant) History() []Turn {
	out := make([]Turn, len(p.Conversation))
	copy(out, p.Conversation)
	return out
}

// Expired reports whether the session lifetime has elapsed at now.
func (p *Participant) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// Clone returns a deep copy of p.
func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	c := *p
	c.Profile = p.Profile.Clone()
	c.OriginalProfile = p.OriginalProfile.Clone()
	c.Conversation = p.History()
	return &c
}
