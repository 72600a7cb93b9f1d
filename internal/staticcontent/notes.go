package staticcontent

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	notesMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	notesPolicy   = bluemonday.UGCPolicy()
)

// RenderNotes converts editor notes from Markdown to sanitized HTML.
func RenderNotes(notes string) string {
	if notes == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := notesMarkdown.Convert([]byte(notes), &buf); err != nil {
		return notesPolicy.Sanitize(notes)
	}
	return notesPolicy.Sanitize(buf.String())
}
