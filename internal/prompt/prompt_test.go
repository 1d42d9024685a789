package prompt

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

var sampleProfile = domain.Profile{
	domain.ActiveReflective: 3,
	domain.SensingIntuitive: -1,
	domain.VisualVerbal:     5,
	domain.SequentialGlobal: 1,
}

func TestSystemPromptFor(t *testing.T) {
	const rendered = "{'Active-Reflective': 3, 'Sensing-Intuitive': -1, 'Visual-Verbal': 5, 'Sequential-Global': 1}"
	tests := []struct {
		group  domain.Group
		suffix string
	}{
		{domain.GroupA, "\n\nLearner FSLSM profile: " + rendered + ". Adapt dynamically."},
		{domain.GroupB, "\n\nStart with no FSLSM info. Learn and adapt dynamically."},
		{domain.GroupC, "\n\nLearner FSLSM profile: " + rendered + ". Do NOT adapt."},
		{domain.GroupD, ""},
		{domain.Group(""), ""},
	}

	for _, tt := range tests {
		t.Run("group_"+string(tt.group), func(t *testing.T) {
			got := SystemPromptFor(tt.group, sampleProfile)
			if got != BaseSystemPrompt+tt.suffix {
				t.Errorf("unexpected prompt:\n%s", got)
			}
		})
	}
}

func TestSystemPromptForGroupBOmitsProfile(t *testing.T) {
	got := SystemPromptFor(domain.GroupB, sampleProfile)
	if strings.Contains(got, "Active-Reflective") {
		t.Fatalf("group B prompt leaked the profile: %s", got)
	}
}

func newParticipant(t *testing.T, group domain.Group, turns int) *domain.Participant {
	t.Helper()
	p, err := domain.NewParticipant("Sara", group, sampleProfile, sampleProfile, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("NewParticipant failed: %v", err)
	}
	for i := 0; i < turns; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		p.Append(role, "turn-"+strconv.Itoa(i))
	}
	return p
}

func TestBuildTurnMessagesShape(t *testing.T) {
	for _, turns := range []int{0, 1, 11, 12, 13, 40} {
		p := newParticipant(t, domain.GroupA, turns)
		msgs := BuildTurnMessages(p, "what is a derivative?")

		wantHistory := turns
		if wantHistory > HistoryWindow {
			wantHistory = HistoryWindow
		}
		if len(msgs) != wantHistory+2 {
			t.Fatalf("turns=%d: expected %d messages, got %d", turns, wantHistory+2, len(msgs))
		}
		if msgs[0].Role != domain.RoleSystem || msgs[0].Content != SystemPromptFor(domain.GroupA, sampleProfile) {
			t.Fatalf("turns=%d: first message is not the system prompt: %+v", turns, msgs[0])
		}
		last := msgs[len(msgs)-1]
		if last.Role != domain.RoleUser || last.Content != "what is a derivative?" {
			t.Fatalf("turns=%d: last message is not the user message: %+v", turns, last)
		}

		for i, m := range msgs[1 : len(msgs)-1] {
			want := "turn-" + strconv.Itoa(turns-wantHistory+i)
			if m.Content != want {
				t.Errorf("turns=%d: history[%d] = %q, want %q", turns, i, m.Content, want)
			}
		}
	}
}

func TestBuildTurnMessagesDoesNotMutateConversation(t *testing.T) {
	p := newParticipant(t, domain.GroupD, 3)
	_ = BuildTurnMessages(p, "hello")
	if len(p.Conversation) != 3 {
		t.Fatalf("conversation changed: %d turns", len(p.Conversation))
	}
}
