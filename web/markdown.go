package web

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts chat text to sanitized HTML for display. On a
// conversion failure the text is returned HTML-escaped.
func RenderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		slog.Warn("Markdown conversion failed", "error", err)
		return template.HTMLEscapeString(src)
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes()))
}
