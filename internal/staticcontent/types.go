package staticcontent

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DivIDPrefix prefixes every container id handed out for embedding.
const DivIDPrefix = "elementor-"

// StaticPage is one stored static snapshot of a source page.
type StaticPage struct {
	ID             int64     `json:"id"`
	PageID         int64     `json:"page_id"`
	Content        string    `json:"content"`
	ElementorDivID string    `json:"elementor_div_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	Notes          string    `json:"notes"`
	Styles         []string  `json:"styles"`
	Scripts        []string  `json:"scripts"`
}

// Fragment is the content API payload.
type Fragment struct {
	Content        string   `json:"content"`
	Styles         []string `json:"styles"`
	Scripts        []string `json:"scripts"`
	ElementorDivID string   `json:"elementor_div_id,omitempty"`
	GeneratedAt    string   `json:"generated_at,omitempty"`
	Notes          string   `json:"notes"`
}

// Fragment converts the stored page into its API payload.
func (p StaticPage) Fragment() Fragment {
	styles, scripts := p.Styles, p.Scripts
	if styles == nil {
		styles = []string{}
	}
	if scripts == nil {
		scripts = []string{}
	}
	return Fragment{
		Content:        p.Content,
		Styles:         styles,
		Scripts:        scripts,
		ElementorDivID: p.ElementorDivID,
		GeneratedAt:    p.GeneratedAt.UTC().Format(time.DateTime),
		Notes:          p.Notes,
	}
}

// EmbedCode is the snippet an editor pastes into the dealership site.
func (p StaticPage) EmbedCode() string {
	return fmt.Sprintf(`<div id="%s"></div>`, p.ElementorDivID)
}

// DivID returns the container id for a page id.
func DivID(pageID int64) string {
	return DivIDPrefix + strconv.FormatInt(pageID, 10)
}

// NormalizePageID strips a leading "elementor-" from a container page id.
func NormalizePageID(raw string) string {
	return strings.TrimPrefix(raw, DivIDPrefix)
}

// ListItem is one row of the admin listing.
type ListItem struct {
	ID             int64     `json:"id"`
	PageID         int64     `json:"page_id"`
	PageTitle      string    `json:"page_title"`
	ElementorDivID string    `json:"elementor_div_id"`
	EmbedCode      string    `json:"embed_code"`
	GeneratedAt    time.Time `json:"generated_at"`
	Notes          string    `json:"notes"`
	NotesHTML      string    `json:"notes_html"`
	StyleCount     int       `json:"style_count"`
	ScriptCount    int       `json:"script_count"`
}
