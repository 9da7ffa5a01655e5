package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a journal owner. Rows are provisioned by the identity sync job
// when a new external account first signs in; this service only reads them.
type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ExternalID is the identity provider's opaque user handle (unique).
	ExternalID string `json:"external_id"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
}
