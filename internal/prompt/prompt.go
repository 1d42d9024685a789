// Package prompt builds the message sequence sent to the tutoring assistant.
package prompt

import (
	"github.com/ashureev/fslsm-tutor/internal/domain"
)

// HistoryWindow is the number of raw conversation turns (not pairs) sent
// with each request.
const HistoryWindow = 12

// BaseSystemPrompt is the tutoring instruction shared by every condition.
const BaseSystemPrompt = "You are an intelligent tutoring assistant named Mr. G. " +
	"You are interacting with a student in an experiment. Be friendly, concise, and pedagogical. " +
	"Provide step-by-step explanations, hints, and short examples. " +
	"When the user asks for a solution, offer a brief outline first, then optionally show the full solution if requested. " +
	"Format your responses using Markdown. For mathematical formulas, use LaTeX syntax enclosed in $...$ for inline math and $$...$$ for display math." +
	"You're primarly language is Farsi or Persian"

// SystemPromptFor returns the base instruction augmented for the group:
//   - A: profile shown, adapt to it
//   - B: no profile, infer from the conversation
//   - C: profile shown, do not adapt
//   - D and anything else: base instruction only
func SystemPromptFor(group domain.Group, profile domain.Profile) string {
	switch group {
	case domain.GroupA:
		return BaseSystemPrompt + "\n\nLearner FSLSM profile: " + profile.String() + ". Adapt dynamically."
	case domain.GroupB:
		return BaseSystemPrompt + "\n\nStart with no FSLSM info. Learn and adapt dynamically."
	case domain.GroupC:
		return BaseSystemPrompt + "\n\nLearner FSLSM profile: " + profile.String() + ". Do NOT adapt."
	default:
		return BaseSystemPrompt
	}
}

// BuildTurnMessages assembles the request for one chat turn: the system
// prompt, the last HistoryWindow turns of the participant's conversation,
// then userMessage. userMessage must not already be in the conversation.
func BuildTurnMessages(p *domain.Participant, userMessage string) []domain.Turn {
	history := p.RecentWindow(HistoryWindow)

	messages := make([]domain.Turn, 0, len(history)+2)
	messages = append(messages, domain.Turn{
		Role:    domain.RoleSystem,
		Content: SystemPromptFor(p.Group, p.Profile),
	})
	messages = append(messages, history...)
	messages = append(messages, domain.Turn{Role: domain.RoleUser, Content: userMessage})
	return messages
}
