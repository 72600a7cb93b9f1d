package audit

import "time"

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
)

// Action describes what was done to a page's static content.
type Action string

const (
	ActionGenerated    Action = "generated"
	ActionRegenerated  Action = "regenerated"
	ActionNotesUpdated Action = "notes_updated"
	ActionDeleted      Action = "deleted"
	ActionFailed       Action = "generation_failed"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorType ActorType `json:"actor_type"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	PageID    int64     `json:"page_id"`
	Summary   string    `json:"summary"`
	Detail    string    `json:"detail,omitempty"`
}
