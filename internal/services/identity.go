package services

import (
	"context"
	"database/sql"

	"github.com/reveriehq/reverie-backend/internal/apperrors"
	"github.com/reveriehq/reverie-backend/internal/database"
	"github.com/reveriehq/reverie-backend/internal/models"
)

// ResolveUser maps a session token to the local user record.
//
// Two distinct failures: Unauthorized means there is no usable session at all;
// UserNotFound means the session is valid but the identity sync job has not
// provisioned a local row yet. Callers surface these differently.
func ResolveUser(ctx context.Context, sessionToken string) (*models.User, error) {
	externalID, ok, err := ValidateSession(sessionToken)
	if err != nil {
		return nil, apperrors.Internal("Failed to validate session", err)
	}
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	return ResolveUserByExternalID(ctx, externalID)
}

// ResolveUserByExternalID looks up the local user by the identity provider's
// handle. Never creates users; provisioning happens elsewhere.
func ResolveUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	var email, name sql.NullString

	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, external_id, email, name, created_at, updated_at
		FROM users WHERE external_id = $1
	`, externalID).Scan(&user.ID, &user.ExternalID, &email, &name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal("Failed to load user", err)
	}

	user.Email = email.String
	user.Name = name.String
	return &user, nil
}
