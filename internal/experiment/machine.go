// Package experiment implements participant progression through the
// experiment stages and the condition-assignment policy.
package experiment

import (
	"fmt"
	"log/slog"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

// Fallback names where a denied participant should be sent.
type Fallback int

const (
	// FallbackNone means access was granted.
	FallbackNone Fallback = iota
	// FallbackChat sends the participant back to the chat page.
	FallbackChat
	// FallbackHome sends the participant to the homepage.
	FallbackHome
)

// Access is the outcome of a stage check.
type Access struct {
	Granted  bool
	Promoted bool // chatN was advanced to examN during the check
	Fallback Fallback
}

// TransitionObserver is notified after every stage change.
type TransitionObserver interface {
	ObserveTransition(from, to domain.Stage)
}

// Machine validates and performs stage transitions on a participant.
// A nil participant means no session exists.
type Machine struct {
	logger   *slog.Logger
	observer TransitionObserver
}

// NewMachine creates a stage machine. Both arguments are optional.
func NewMachine(logger *slog.Logger, observer TransitionObserver) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{logger: logger, observer: observer}
}

// CurrentStage returns the participant's stage, or false when there is no session.
func (m *Machine) CurrentStage(p *domain.Participant) (domain.Stage, bool) {
	if p == nil {
		return domain.StageNone, false
	}
	return p.Stage, true
}

// SetStage overwrites the current stage. It is a no-op without a session.
func (m *Machine) SetStage(p *domain.Participant, stage domain.Stage) error {
	if p == nil {
		return nil
	}
	from := p.Stage
	if err := p.SetStage(stage); err != nil {
		return err
	}
	if from != stage {
		m.logger.Info("Stage transition", "from", from, "to", stage, "group", p.Group)
		if m.observer != nil {
			m.observer.ObserveTransition(from, stage)
		}
	}
	return nil
}

// RequireStage grants access only when the participant is on expected.
// Visiting examN while still on chatN promotes the participant to examN first.
// Denied participants are directed to the chat page when mid-chat and to the
// homepage otherwise.
func (m *Machine) RequireStage(p *domain.Participant, expected domain.Stage) Access {
	if p == nil {
		return Access{Fallback: FallbackHome}
	}

	promoted := false
	if expected.IsExamStage() && p.Stage == domain.ChatStage(expected.Round()) {
		if err := m.SetStage(p, expected); err != nil {
			return Access{Fallback: FallbackHome}
		}
		promoted = true
	}

	if p.Stage == expected {
		return Access{Granted: true, Promoted: promoted}
	}
	if p.Stage.IsChatStage() {
		return Access{Fallback: FallbackChat}
	}
	return Access{Fallback: FallbackHome}
}

// AdvanceAfterExam moves the participant past exam examID: to chat{examID+1}
// for the first two exams and to post_test after the last one.
func (m *Machine) AdvanceAfterExam(p *domain.Participant, examID int) error {
	if examID < 1 || examID > domain.ExamCount {
		return fmt.Errorf("advance after exam: invalid exam id %d", examID)
	}
	if examID == domain.ExamCount {
		return m.SetStage(p, domain.StagePostTest)
	}
	return m.SetStage(p, domain.ChatStage(examID+1))
}

// AdvanceAfterPostTest moves the participant to the terminal stage.
func (m *Machine) AdvanceAfterPostTest(p *domain.Participant) error {
	return m.SetStage(p, domain.StageEnd)
}

// CheckStage is RequireStage without the chatN to examN promotion. Form
// submissions use it so a stale tab cannot skip a stage.
func (m *Machine) CheckStage(p *domain.Participant, expected domain.Stage) Access {
	switch {
	case p == nil:
		return Access{Fallback: FallbackHome}
	case p.Stage == expected:
		return Access{Granted: true}
	case p.Stage.IsChatStage():
		return Access{Fallback: FallbackChat}
	default:
		return Access{Fallback: FallbackHome}
	}
}
