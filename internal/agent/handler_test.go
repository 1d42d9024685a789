package agent

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	"github.com/ashureev/fslsm-tutor/internal/identity"
	"github.com/go-chi/chi/v5"
)

type fakeSaver struct {
	saved int
	err   error
}

func (f *fakeSaver) Save(_ *http.Request, _ *domain.Participant) error {
	f.saved++
	return f.err
}

func newRouter(h *Handler, p *domain.Participant) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p != nil {
				req = req.WithContext(identity.WithParticipant(req.Context(), "sid", p))
			}
			next.ServeHTTP(w, req)
		})
	})
	h.RegisterRoutes(r)
	return r
}

func TestHandleChat(t *testing.T) {
	saver := &fakeSaver{}
	h := NewHandler(NewService(&fakeCompleter{reply: "hi"}, nil, nil), saver)
	p := newChatParticipant(t)
	router := newRouter(h, p)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"salam"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "hi" {
		t.Errorf("reply = %q", resp.Reply)
	}
	if !strings.Contains(resp.HTML, "<p>hi</p>") {
		t.Errorf("html = %q", resp.HTML)
	}
	if saver.saved != 1 {
		t.Errorf("saved %d times, want 1", saver.saved)
	}
	if len(p.History()) != 2 {
		t.Errorf("history has %d turns", len(p.History()))
	}
}

func TestHandleChatRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", `{"message":""}`, "Empty message"},
		{"whitespace", `{"message":"   "}`, "Empty message"},
		{"invalid json", `{`, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := &fakeSaver{}
			h := NewHandler(NewService(&fakeCompleter{reply: "x"}, nil, nil), saver)
			p := newChatParticipant(t)

			rec := httptest.NewRecorder()
			newRouter(h, p).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body = %s, want %q", rec.Body.String(), tt.want)
			}
			if saver.saved != 0 || len(p.History()) != 0 || p.Stage != domain.StageChat1 {
				t.Error("rejected request mutated the session")
			}
		})
	}
}

func TestHandleChatTooLarge(t *testing.T) {
	h := NewHandler(NewService(&fakeCompleter{reply: "x"}, nil, nil), &fakeSaver{})
	body := `{"message":"` + strings.Repeat("a", defaultMaxRequestBodySize) + `"}`

	rec := httptest.NewRecorder()
	newRouter(h, newChatParticipant(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandleChatSaveFailure(t *testing.T) {
	h := NewHandler(NewService(&fakeCompleter{reply: "x"}, nil, nil), &fakeSaver{err: errors.New("disk full")})

	rec := httptest.NewRecorder()
	newRouter(h, newChatParticipant(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestParticipantAndHistory(t *testing.T) {
	h := NewHandler(NewService(&fakeCompleter{reply: "x"}, nil, nil), &fakeSaver{})
	p := newChatParticipant(t)
	p.Append(domain.RoleUser, "q")
	p.Append(domain.RoleAssistant, "**a**")
	router := newRouter(h, p)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/participant", nil))
	var info map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode participant: %v", err)
	}
	if info["name"] != "Maryam" || info["group"] != "A" {
		t.Errorf("participant = %v", info)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	var hist struct {
		History []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.History) != 2 || hist.History[0].Content != "q" || hist.History[1].Role != domain.RoleAssistant {
		t.Fatalf("history = %+v", hist.History)
	}
	if hist.History[1].Content != "**a**" || !strings.Contains(hist.History[1].HTML, "<strong>a</strong>") {
		t.Errorf("assistant turn = %+v", hist.History[1])
	}
}

func TestRoutesRequireSession(t *testing.T) {
	h := NewHandler(NewService(&fakeCompleter{reply: "x"}, nil, nil), &fakeSaver{})
	router := newRouter(h, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/chat"},
		{http.MethodGet, "/participant"},
		{http.MethodGet, "/history"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"message":"hi"}`)))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}
