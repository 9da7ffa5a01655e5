package services

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/reveriehq/reverie-backend/internal/apperrors"
	"github.com/reveriehq/reverie-backend/internal/database"
	"github.com/reveriehq/reverie-backend/internal/models"
	"github.com/reveriehq/reverie-backend/internal/moods"
	"github.com/reveriehq/reverie-backend/internal/ratelimit"
)

var validate = validator.New()

// imageLookupTimeout bounds the image-provider call so a slow provider can
// never block publication.
const imageLookupTimeout = 2 * time.Second

// JournalInput is the payload for creating or updating an entry.
type JournalInput struct {
	Title        string `json:"title" validate:"required,max=255"`
	Content      string `json:"content" validate:"required"`
	Mood         string `json:"mood" validate:"required"`
	CollectionID string `json:"collection_id,omitempty" validate:"omitempty,uuid"`
}

// DraftInput is the payload for autosaving the draft. All fields optional;
// an all-blank payload clears the draft.
type DraftInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood,omitempty"`
}

// EntryFilter narrows ListEntries. CollectionID may be a collection id, empty
// (everything), or the reserved "unorganized" pseudo-id.
type EntryFilter struct {
	CollectionID string
	Mood         string
	Limit        int
	Skip         int
}

// JournalService is the entry write pipeline plus the draft store. Every
// publish runs admission → identity → validation → mood → image → transaction
// → invalidation, failing whole at each step; no partial entry is persisted.
type JournalService struct {
	limiter *ratelimit.Bucket
	images  *PixabayService
}

// NewJournalService wires the write pipeline.
func NewJournalService(limiter *ratelimit.Bucket, images *PixabayService) *JournalService {
	return &JournalService{limiter: limiter, images: images}
}

// prepared is the outcome of the shared create/update front half.
type prepared struct {
	user     *models.User
	mood     moods.Definition
	imageURL string
}

// prepare runs the steps create and update share: admission, identity,
// input validation, mood resolution, image resolution.
func (s *JournalService) prepare(ctx context.Context, sessionToken string, input *JournalInput) (*prepared, error) {
	externalID, ok, err := ValidateSession(sessionToken)
	if err != nil {
		return nil, apperrors.Internal("Failed to validate session", err)
	}
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	// Admission is keyed by the identity handle so the budget applies even
	// before the local user row exists.
	decision, err := s.limiter.Admit(ctx, externalID, 1)
	if err != nil {
		return nil, apperrors.Internal("Failed to check rate limit", err)
	}
	if decision.Blocked {
		return nil, apperrors.RequestBlocked("Request blocked. Contact support if you believe this is a mistake.")
	}
	if !decision.Allowed {
		return nil, apperrors.RateLimited(decision.Remaining, decision.RetryAfter)
	}

	user, err := ResolveUserByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(input); err != nil {
		return nil, apperrors.Validation("Title, content and mood are required")
	}

	mood, ok := moods.Lookup(input.Mood)
	if !ok {
		return nil, apperrors.InvalidMood(input.Mood)
	}

	// Best-effort enrichment: a provider failure or timeout degrades to an
	// empty image URL, never aborts the write.
	imgCtx, cancel := context.WithTimeout(ctx, imageLookupTimeout)
	defer cancel()
	imageURL, err := s.images.SearchImage(imgCtx, mood.SearchQuery)
	if err != nil {
		log.Printf("⚠️  Image provider degraded (mood=%s): %v", mood.ID, err)
		imageURL = ""
	}

	return &prepared{user: user, mood: mood, imageURL: imageURL}, nil
}

// CreateEntry publishes a journal entry. The entry insert and the draft
// delete share one transaction: a published entry and a stale draft can never
// both survive.
func (s *JournalService) CreateEntry(ctx context.Context, sessionToken string, input *JournalInput) (*models.Entry, error) {
	prep, err := s.prepare(ctx, sessionToken, input)
	if err != nil {
		return nil, err
	}

	tx, err := database.PostgresDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Internal("Failed to create journal entry", err)
	}
	defer tx.Rollback()

	var collectionID *uuid.UUID
	if input.CollectionID != "" {
		parsed, parseErr := uuid.Parse(input.CollectionID)
		if parseErr != nil {
			return nil, apperrors.Validation("Invalid collection ID")
		}

		// The collection must belong to the author.
		var ownerID uuid.UUID
		err = tx.QueryRowContext(ctx, `
			SELECT user_id FROM collections WHERE id = $1
		`, parsed).Scan(&ownerID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, apperrors.NotFound("Collection not found")
			}
			return nil, apperrors.Internal("Failed to create journal entry", err)
		}
		if ownerID != prep.user.ID {
			return nil, apperrors.Forbidden("Collection does not belong to you")
		}
		collectionID = &parsed
	}

	entry := &models.Entry{
		Title:        input.Title,
		Content:      input.Content,
		Mood:         prep.mood.ID,
		MoodScore:    prep.mood.Score,
		MoodImageURL: prep.imageURL,
		UserID:       prep.user.ID,
		CollectionID: collectionID,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO entries (title, content, mood, mood_score, mood_image_url, user_id, collection_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, entry.Title, entry.Content, entry.Mood, entry.MoodScore, nullString(entry.MoodImageURL),
		entry.UserID, nullUUID(collectionID),
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, apperrors.Internal("Failed to create journal entry", err)
	}

	// The published entry supersedes the draft.
	if _, err = tx.ExecContext(ctx, `DELETE FROM drafts WHERE user_id = $1`, prep.user.ID); err != nil {
		return nil, apperrors.Internal("Failed to create journal entry", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, apperrors.Internal("Failed to create journal entry", err)
	}

	if err := Views.InvalidateUser(ctx, prep.user.ID.String()); err != nil {
		log.Printf("⚠️  View invalidation failed for user %s: %v", prep.user.ID, err)
	}

	return entry, nil
}

// UpdateEntry edits an existing entry the caller owns. It shares the create
// pipeline's front half but never touches the draft.
func (s *JournalService) UpdateEntry(ctx context.Context, sessionToken string, entryID uuid.UUID, input *JournalInput) (*models.Entry, error) {
	prep, err := s.prepare(ctx, sessionToken, input)
	if err != nil {
		return nil, err
	}

	// Ownership check. A mismatch reads as NotFound so non-owners cannot
	// probe for entry existence.
	var ownerID uuid.UUID
	err = database.PostgresDB.QueryRowContext(ctx, `
		SELECT user_id FROM entries WHERE id = $1
	`, entryID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Entry not found")
		}
		return nil, apperrors.Internal("Failed to update journal entry", err)
	}
	if ownerID != prep.user.ID {
		return nil, apperrors.NotFound("Entry not found")
	}

	entry := &models.Entry{
		Title:        input.Title,
		Content:      input.Content,
		Mood:         prep.mood.ID,
		MoodScore:    prep.mood.Score,
		MoodImageURL: prep.imageURL,
		UserID:       prep.user.ID,
	}

	err = database.PostgresDB.QueryRowContext(ctx, `
		UPDATE entries
		SET title = $1,
		    content = $2,
		    mood = $3,
		    mood_score = $4,
		    mood_image_url = $5,
		    updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING id, collection_id, created_at, updated_at
	`, entry.Title, entry.Content, entry.Mood, entry.MoodScore, nullString(entry.MoodImageURL),
		entryID, prep.user.ID,
	).Scan(&entry.ID, &entry.CollectionID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, apperrors.Internal("Failed to update journal entry", err)
	}

	if err := Views.InvalidateUser(ctx, prep.user.ID.String()); err != nil {
		log.Printf("⚠️  View invalidation failed for user %s: %v", prep.user.ID, err)
	}

	return entry, nil
}

// DeleteEntry removes an entry the caller owns.
func (s *JournalService) DeleteEntry(ctx context.Context, sessionToken string, entryID uuid.UUID) error {
	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return err
	}

	res, err := database.PostgresDB.ExecContext(ctx, `
		DELETE FROM entries WHERE id = $1 AND user_id = $2
	`, entryID, user.ID)
	if err != nil {
		return apperrors.Internal("Failed to delete journal entry", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return apperrors.NotFound("Entry not found")
	}

	if err := Views.InvalidateUser(ctx, user.ID.String()); err != nil {
		log.Printf("⚠️  View invalidation failed for user %s: %v", user.ID, err)
	}
	return nil
}

// GetEntry returns a single entry the caller owns.
func (s *JournalService) GetEntry(ctx context.Context, sessionToken string, entryID uuid.UUID) (*models.Entry, error) {
	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	row := database.PostgresDB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries WHERE id = $1 AND user_id = $2
	`, entryID, user.ID)

	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("Entry not found")
		}
		return nil, apperrors.Internal("Failed to load journal entry", err)
	}
	return entry, nil
}

// ListEntries returns the caller's entries, newest first, optionally filtered
// by collection (including the "unorganized" pseudo-collection) and mood.
func (s *JournalService) ListEntries(ctx context.Context, sessionToken string, filter EntryFilter) ([]*models.Entry, error) {
	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	// Unfiltered and collection-page reads go through the view cache; write
	// paths invalidate it.
	view := ""
	if filter.Mood == "" && filter.Limit == 0 && filter.Skip == 0 {
		if filter.CollectionID == "" {
			view = "dashboard"
		} else {
			view = "collection:" + filter.CollectionID
		}
		var cached []*models.Entry
		if hit, _ := Views.Get(ctx, view, user.ID.String(), &cached); hit {
			return cached, nil
		}
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE user_id = $1`
	args := []interface{}{user.ID}

	switch filter.CollectionID {
	case "":
	case models.UnorganizedCollectionID:
		query += ` AND collection_id IS NULL`
	default:
		collectionID, parseErr := uuid.Parse(filter.CollectionID)
		if parseErr != nil {
			return nil, apperrors.Validation("Invalid collection ID")
		}
		args = append(args, collectionID)
		query += ` AND collection_id = $2`
	}

	if filter.Mood != "" {
		mood, ok := moods.Lookup(filter.Mood)
		if !ok {
			return nil, apperrors.InvalidMood(filter.Mood)
		}
		args = append(args, mood.ID)
		query += ` AND mood = $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := database.PostgresDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Internal("Failed to load journal entries", err)
	}
	defer rows.Close()

	entries := make([]*models.Entry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, apperrors.Internal("Failed to load journal entries", scanErr)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("Failed to load journal entries", err)
	}

	if view != "" {
		if err := Views.Set(ctx, view, user.ID.String(), entries); err != nil {
			log.Printf("⚠️  View cache write failed for user %s: %v", user.ID, err)
		}
	}
	return entries, nil
}

// SaveDraft upserts the caller's single draft slot. Saving an all-blank
// payload clears it. Autosave traffic is never rate limited.
func (s *JournalService) SaveDraft(ctx context.Context, sessionToken string, input *DraftInput) (*models.Draft, error) {
	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	if input.Title == "" && input.Content == "" && input.Mood == "" {
		_, err = database.PostgresDB.ExecContext(ctx, `DELETE FROM drafts WHERE user_id = $1`, user.ID)
		if err != nil {
			return nil, apperrors.Internal("Failed to clear draft", err)
		}
		return nil, nil
	}

	draft := &models.Draft{
		UserID:  user.ID,
		Title:   input.Title,
		Content: input.Content,
		Mood:    input.Mood,
	}

	err = database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO drafts (user_id, title, content, mood, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET title = EXCLUDED.title,
		    content = EXCLUDED.content,
		    mood = EXCLUDED.mood,
		    updated_at = NOW()
		RETURNING id, updated_at
	`, draft.UserID, draft.Title, draft.Content, draft.Mood).Scan(&draft.ID, &draft.UpdatedAt)
	if err != nil {
		return nil, apperrors.Internal("Failed to save draft", err)
	}
	return draft, nil
}

// GetDraft returns the caller's draft, or nil when none exists.
func (s *JournalService) GetDraft(ctx context.Context, sessionToken string) (*models.Draft, error) {
	user, err := ResolveUser(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	var draft models.Draft
	var title, content, mood sql.NullString
	err = database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, user_id, title, content, mood, updated_at
		FROM drafts WHERE user_id = $1
	`, user.ID).Scan(&draft.ID, &draft.UserID, &title, &content, &mood, &draft.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to load draft", err)
	}

	draft.Title = title.String
	draft.Content = content.String
	draft.Mood = mood.String
	return &draft, nil
}

// entryColumns is the ordered column list for entry queries.
// Must match the scan order in scanEntry.
const entryColumns = `id, created_at, updated_at, title, content, mood, mood_score, mood_image_url, user_id, collection_id`

// scanEntry scans a sql.Row (or sql.Rows via its Scan method) into an Entry.
func scanEntry(scanner interface{ Scan(dest ...any) error }) (*models.Entry, error) {
	var e models.Entry
	var imageURL sql.NullString
	var collectionID uuid.NullUUID

	err := scanner.Scan(
		&e.ID,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.Title,
		&e.Content,
		&e.Mood,
		&e.MoodScore,
		&imageURL,
		&e.UserID,
		&collectionID,
	)
	if err != nil {
		return nil, err
	}

	e.MoodImageURL = imageURL.String
	if collectionID.Valid {
		id := collectionID.UUID
		e.CollectionID = &id
	}
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
