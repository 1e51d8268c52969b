package models

import "time"

// Chat turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one entry in a review session transcript. Transcripts are
// append-only: turns are never reordered or edited in place.
type ChatTurn struct {
	Role      string    `json:"role"` // user | assistant
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
