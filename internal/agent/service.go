package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/ashureev/fslsm-tutor/internal/prompt"
)

// ErrEmptyMessage is returned for blank chat messages.
var ErrEmptyMessage = errors.New("empty message")

// Service runs chat turns for a participant.
type Service struct {
	completer Completer
	logger    *slog.Logger
	observer  TurnObserver
}

// NewService creates a chat service backed by completer.
func NewService(completer Completer, logger *slog.Logger, observer TurnObserver) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		completer: completer,
		logger:    logger,
		observer:  observer,
	}
}

// Chat sends message to the assistant and records both the user turn and the
// reply in the participant's conversation. The prompt is built from the
// conversation as it was before this turn. A failed completion still
// produces a reply (the error text) and two new turns.
func (s *Service) Chat(ctx context.Context, p *domain.Participant, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	messages := prompt.BuildTurnMessages(p, message)
	reply := s.completer.Complete(ctx, messages)
	failed := IsErrorReply(reply)

	p.Append(domain.RoleUser, message)
	p.Append(domain.RoleAssistant, reply)

	if s.observer != nil {
		s.observer.ObserveChatTurn(p.Group, !failed)
	}
	s.logger.Info("Chat turn completed",
		"group", p.Group,
		"stage", p.Stage,
		"message_length", len(message),
		"reply_length", len(reply),
		"history_turns", len(messages)-2,
		"failed", failed,
	)
	return reply, nil
}
