package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRenderAllPages(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	data := Page{
		Title:    "t",
		Timeline: []TimelineSegment{{Label: "a", Status: "completed"}, {Label: "b", Status: "current"}},
	}
	for _, name := range pageNames {
		t.Run(name, func(t *testing.T) {
			out, err := r.RenderBytes(name, data)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(string(out), `timeline-segment current`) {
				t.Error("timeline not rendered")
			}
		})
	}
}

func TestRenderEscapesName(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out, err := r.RenderBytes(PageChat, Page{Title: "chat", NextURL: "/exam/1", NextLabel: "<b>next</b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "<b>next</b>") {
		t.Error("label was not escaped")
	}
	if !strings.Contains(s, `href="/exam/1"`) {
		t.Error("next link missing")
	}
	if !strings.Contains(s, "/static/chat.js") {
		t.Error("chat script missing")
	}
}

func TestRenderQuestionnaireItems(t *testing.T) {
	r, _ := NewRenderer()
	out, err := r.RenderBytes(PageFSLSM, Page{Items: []QuestionItem{{Number: 1, Field: "q0"}, {Number: 2, Field: "q1"}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(string(out), `name="q1"`); got != 2 {
		t.Errorf("q1 radios = %d, want 2", got)
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r, _ := NewRenderer()
	if _, err := r.RenderBytes("missing", Page{}); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestStaticHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
