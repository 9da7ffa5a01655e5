package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one published journal post with its mood metadata resolved at
// write time. Mood and MoodScore are copied from the catalog, not referenced,
// so later catalog edits never rewrite history.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Mood         string     `json:"mood"`
	MoodScore    int        `json:"mood_score"`
	MoodImageURL string     `json:"mood_image_url,omitempty"`
	UserID       uuid.UUID  `json:"user_id"`
	CollectionID *uuid.UUID `json:"collection_id,omitempty"` // nil = unorganized
}
