package reports

import "time"

// Report is the error payload posted to the webhook when a fragment fails
// to load. Field names match what the webhook consumer already parses.
type Report struct {
	ID        string    `json:"-"`
	Error     string    `json:"error"`
	Status    int       `json:"status,omitempty"`
	PageID    string    `json:"pageId"`
	PageURL   string    `json:"pageUrl"`
	Timestamp time.Time `json:"timestamp"`
	Stack     string    `json:"stack,omitempty"`
}

// Record is a persisted report plus its delivery state.
type Record struct {
	Report
	ID        string `json:"id"`
	Delivered bool   `json:"delivered"`
}
