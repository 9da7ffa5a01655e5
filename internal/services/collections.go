package services

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/reveriehq/reverie-backend/internal/apperrors"
	"github.com/reveriehq/reverie-backend/internal/database"
	"github.com/reveriehq/reverie-backend/internal/models"
	"github.com/reveriehq/reverie-backend/internal/ratelimit"
)

// CollectionInput is the payload for creating a collection.
type CollectionInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
}

// CollectionWithEntries is a collection page payload. For the "unorganized"
// pseudo-collection the Collection carries only the reserved id and name.
type CollectionWithEntries struct {
	Collection *models.Collection `json:"collection,omitempty"`
	Virtual    bool               `json:"virtual,omitempty"`
	Entries    []*models.Entry    `json:"entries"`
}

// CollectionService manages named entry groupings. All operations are scoped
// to the authenticated owner.
type CollectionService struct {
	limiter *ratelimit.Bucket
	journal *JournalService
}

// NewCollectionService wires the collection manager.
func NewCollectionService(limiter *ratelimit.Bucket, journal *JournalService) *CollectionService {
	return &CollectionService{limiter: limiter, journal: journal}
}

// admit runs the shared write-budget check for collection mutations.
func (s *CollectionService) admit(ctx context.Context, externalID string) error {
	decision, err := s.limiter.Admit(ctx, externalID, 1)
	if err != nil {
		return apperrors.Internal("Failed to check rate limit", err)
	}
	if decision.Blocked {
		return apperrors.RequestBlocked("Request blocked. Contact support if you believe this is a mistake.")
	}
	if !decision.Allowed {
		return apperrors.RateLimited(decision.Remaining, decision.RetryAfter)
	}
	return nil
}

// Create adds a collection. Names are unique per user, case-insensitively.
func (s *CollectionService) Create(ctx context.Context, sessionToken string, input *CollectionInput) (*models.Collection, error) {
	externalID, ok, err := ValidateSession(sessionToken)
	if err != nil {
		return nil, apperrors.Internal("Failed to validate session", err)
	}
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.admit(ctx, externalID); err != nil {
		return nil, err
	}

	user, err := ResolveUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.Validation("Collection name is required")
	}

	// Ensure collection name is unique for this user (case-insensitive)
	var exists bool
	err = database.PostgresDB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM collections WHERE user_id = $1 AND LOWER(name) = LOWER($2))
	`, user.ID, input.Name).Scan(&exists)
	if err != nil {
		return nil, apperrors.Internal("Failed to validate collection name", err)
	}
	if exists {
		return nil, apperrors.Validation("A collection with this name already exists")
	}

	collection := &models.Collection{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		UserID:      user.ID,
	}

	err = database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO collections (name, description, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, collection.Name, nullString(collection.Description), collection.UserID,
	).Scan(&collection.ID, &collection.CreatedAt, &collection.UpdatedAt)
	if err != nil {
		return nil, apperrors.Internal("Failed to create collection", err)
	}

	if err := Views.InvalidateUser(ctx, user.ID.String()); err != nil {
		log.Printf("⚠️  View invalidation failed for user %s: %v", user.ID, err)
	}
	return collection, nil
}

// List returns the caller's collections in creation order.
func (s *CollectionService) List(ctx context.Context, sessionToken string) ([]*models.Collection, error) {
	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, created_at, updated_at, name, description, user_id
		FROM collections WHERE user_id = $1
		ORDER BY created_at ASC
	`, user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load collections", err)
	}
	defer rows.Close()

	collections := make([]*models.Collection, 0)
	for rows.Next() {
		collection, scanErr := scanCollection(rows)
		if scanErr != nil {
			return nil, apperrors.Internal("Failed to load collections", scanErr)
		}
		collections = append(collections, collection)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to load collections", err)
	}
	return collections, nil
}

// Get returns one collection page: the collection (or the virtual
// "unorganized" grouping) plus its entries, newest first.
func (s *CollectionService) Get(ctx context.Context, sessionToken string, collectionID string) (*CollectionWithEntries, error) {
	if collectionID == models.UnorganizedCollectionID {
		entries, err := s.journal.ListEntries(ctx, sessionToken, EntryFilter{CollectionID: models.UnorganizedCollectionID})
		if err != nil {
			return nil, err
		}
		return &CollectionWithEntries{Virtual: true, Entries: entries}, nil
	}

	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(collectionID)
	if err != nil {
		return nil, apperrors.Validation("Invalid collection ID")
	}

	row := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, name, description, user_id
		FROM collections WHERE id = $1 AND user_id = $2
	`, parsed, user.ID)

	collection, err := scanCollection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Collection not found")
		}
		return nil, apperrors.Internal("Failed to load collection", err)
	}

	entries, err := s.journal.ListEntries(ctx, sessionToken, EntryFilter{CollectionID: collectionID})
	if err != nil {
		return nil, err
	}

	return &CollectionWithEntries{Collection: collection, Entries: entries}, nil
}

// Delete removes a collection the caller owns. Entries in it are deleted by
// the cascade; their count is taken in the same transaction and returned so
// the caller can show an accurate confirmation.
func (s *CollectionService) Delete(ctx context.Context, sessionToken string, collectionID uuid.UUID) (int, error) {
	externalID, ok, err := ValidateSession(sessionToken)
	if err != nil {
		return 0, apperrors.Internal("Failed to validate session", err)
	}
	if !ok {
		return 0, apperrors.ErrUnauthorized
	}
	if err := s.admit(ctx, externalID); err != nil {
		return 0, err
	}

	user, err := ResolveUserByExternalID(ctx, externalID)
	if err != nil {
		return 0, err
	}

	tx, err := database.PostgresDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.Internal("Failed to delete collection", err)
	}
	defer tx.Rollback()

	var entryCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries WHERE collection_id = $1
	`, collectionID).Scan(&entryCount)
	if err != nil {
		return 0, apperrors.Internal("Failed to delete collection", err)
	}

	// Delete only if owner matches
	res, err := tx.ExecContext(ctx, `
		DELETE FROM collections WHERE id = $1 AND user_id = $2
	`, collectionID, user.ID)
	if err != nil {
		return 0, apperrors.Internal("Failed to delete collection", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return 0, apperrors.NotFound("Collection not found")
	}

	if err = tx.Commit(); err != nil {
		return 0, apperrors.Internal("Failed to delete collection", err)
	}

	if err := Views.InvalidateUser(ctx, user.ID.String()); err != nil {
		log.Printf("⚠️  View invalidation failed for user %s: %v", user.ID, err)
	}
	return entryCount, nil
}

// scanCollection scans a sql.Row (or sql.Rows via its Scan method) into a Collection.
func scanCollection(scanner interface{ Scan(dest ...any) error }) (*models.Collection, error) {
	var c models.Collection
	var description sql.NullString

	err := scanner.Scan(
		&c.ID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.Name,
		&description,
		&c.UserID,
	)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	return &c, nil
}
