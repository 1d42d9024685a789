// Package web holds the embedded HTML presentation layer. Handlers pass a
// Page; nothing here knows about sessions or stages beyond display strings.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	PageHome     = "home"
	PageFSLSM    = "fslsm"
	PageChat     = "chat"
	PageExam     = "exam"
	PagePostTest = "post_test"
	PageEnd      = "end"
)

var pageNames = []string{PageHome, PageFSLSM, PageChat, PageExam, PagePostTest, PageEnd}

// TimelineSegment is one cell of the progress bar.
type TimelineSegment struct {
	Label  string
	Status string
}

// QuestionItem is one two-option questionnaire item.
type QuestionItem struct {
	Number int
	Field  string
}

// Page is the view model shared by all templates.
type Page struct {
	Title     string
	Timeline  []TimelineSegment
	Name      string
	Group     string
	NextURL   string
	NextLabel string
	ExamID    int
	SubmitURL string
	Items     []QuestionItem
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template against the shared layout.
func NewRenderer() (*Renderer, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		t, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render writes page name to w.
func (r *Renderer) Render(w io.Writer, name string, data Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// RenderBytes renders page name into memory so callers can finish side
// effects before writing the response.
func (r *Renderer) RenderBytes(name string, data Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StaticHandler serves the embedded stylesheet and scripts under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
