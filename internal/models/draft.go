package models

import (
	"time"

	"github.com/google/uuid"
)

// Draft is the single in-progress, unpublished entry a user may hold.
// UNIQUE(user_id) in the schema enforces the singleton; a successful publish
// deletes it. Mood is the raw keyword, unresolved until publish.
type Draft struct {
	ID        uuid.UUID `json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID  uuid.UUID `json:"user_id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Mood    string    `json:"mood,omitempty"`
}
