package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

type fakeCompleter struct {
	reply string
	got   []domain.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, messages []domain.Turn) string {
	f.got = messages
	return f.reply
}

type turnRecorder struct {
	group domain.Group
	ok    bool
	calls int
}

func (r *turnRecorder) ObserveChatTurn(group domain.Group, ok bool) {
	r.group = group
	r.ok = ok
	r.calls++
}

func newChatParticipant(t *testing.T) *domain.Participant {
	t.Helper()
	p, err := domain.NewParticipant("Maryam", domain.GroupA, domain.ZeroProfile(), domain.ZeroProfile(), time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("NewParticipant: %v", err)
	}
	return p
}

func TestServiceChat(t *testing.T) {
	fc := &fakeCompleter{reply: "answer"}
	rec := &turnRecorder{}
	svc := NewService(fc, nil, rec)
	p := newChatParticipant(t)
	p.Append(domain.RoleUser, "earlier")
	p.Append(domain.RoleAssistant, "earlier reply")

	reply, err := svc.Chat(context.Background(), p, "  what is a derivative?  ")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "answer" {
		t.Errorf("reply = %q", reply)
	}

	// system + 2 history + new user message; the new message is not duplicated.
	if len(fc.got) != 4 {
		t.Fatalf("prompt has %d messages, want 4", len(fc.got))
	}
	if fc.got[0].Role != domain.RoleSystem || fc.got[3].Content != "what is a derivative?" {
		t.Errorf("unexpected prompt: %+v", fc.got)
	}

	history := p.History()
	if len(history) != 4 {
		t.Fatalf("history has %d turns, want 4", len(history))
	}
	if history[2] != (domain.Turn{Role: domain.RoleUser, Content: "what is a derivative?"}) {
		t.Errorf("user turn = %+v", history[2])
	}
	if history[3] != (domain.Turn{Role: domain.RoleAssistant, Content: "answer"}) {
		t.Errorf("assistant turn = %+v", history[3])
	}
	if rec.calls != 1 || !rec.ok || rec.group != domain.GroupA {
		t.Errorf("observer = %+v", rec)
	}
}

func TestServiceChatEmptyMessage(t *testing.T) {
	fc := &fakeCompleter{reply: "unused"}
	svc := NewService(fc, nil, nil)
	p := newChatParticipant(t)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.Chat(context.Background(), p, msg)
		if !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Chat(%q) error = %v, want ErrEmptyMessage", msg, err)
		}
	}
	if fc.got != nil {
		t.Error("completer called for empty message")
	}
	if len(p.History()) != 0 {
		t.Error("empty message mutated the conversation")
	}
}

func TestServiceChatGatewayFailureStillRecordsTurns(t *testing.T) {
	fc := &fakeCompleter{reply: ErrorReply(errors.New("timeout"))}
	rec := &turnRecorder{}
	svc := NewService(fc, nil, rec)
	p := newChatParticipant(t)

	reply, err := svc.Chat(context.Background(), p, "hello")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !IsErrorReply(reply) {
		t.Errorf("reply %q lacks error marker", reply)
	}
	if got := len(p.History()); got != 2 {
		t.Errorf("history has %d turns, want 2", got)
	}
	if p.Stage != domain.StageChat1 {
		t.Errorf("stage changed to %q", p.Stage)
	}
	if rec.ok {
		t.Error("failed turn observed as ok")
	}
}
