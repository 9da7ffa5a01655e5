package models

import (
	"time"

	"github.com/google/uuid"
)

// UnorganizedCollectionID is the reserved pseudo-id for entries that belong
// to no collection. It never corresponds to a stored row.
const UnorganizedCollectionID = "unorganized"

// Collection is a named grouping of one user's entries. Deleting a collection
// cascades to its entries.
type Collection struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      uuid.UUID `json:"user_id"`
}
