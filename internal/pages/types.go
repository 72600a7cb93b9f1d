package pages

import "time"

// Status is the publication state of a source page.
type Status string

const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
	StatusPrivate Status = "private"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPublish, StatusDraft, StatusPrivate:
		return true
	}
	return false
}

// Page is a source page that can be scraped into static content.
type Page struct {
	ID        int64     `json:"page_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Published reports whether the page is live.
func (p Page) Published() bool { return p.Status == StatusPublish }
