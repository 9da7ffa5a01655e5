package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reveriehq/reverie-backend/internal/apperrors"
)

func TestSessionLifecycle(t *testing.T) {
	setupRedis(t)

	token, err := CreateSession("ext_9zQ4mB")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	externalID, ok, err := ValidateSession(token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ext_9zQ4mB", externalID)

	require.NoError(t, InvalidateSession(token))

	_, ok, err = ValidateSession(token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateSessionRejects(t *testing.T) {
	setupRedis(t)

	_, ok, err := ValidateSession("")
	require.NoError(t, err)
	assert.False(t, ok, "empty token must never validate")

	_, ok, err = ValidateSession("never-issued")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateSessionReplacesPrior(t *testing.T) {
	setupRedis(t)

	first, err := CreateSession("ext_9zQ4mB")
	require.NoError(t, err)
	second, err := CreateSession("ext_9zQ4mB")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Only the newest session for a handle survives.
	_, ok, _ := ValidateSession(first)
	assert.False(t, ok)
	_, ok, _ = ValidateSession(second)
	assert.True(t, ok)
}

func TestRefreshSessionExtendsTTL(t *testing.T) {
	mr := setupRedis(t)

	token, err := CreateSession("ext_9zQ4mB")
	require.NoError(t, err)

	mr.FastForward(SessionDuration / 2)
	require.NoError(t, RefreshSession(token))
	mr.FastForward(SessionDuration / 2)

	// Without the refresh the session would have expired by now.
	_, ok, _ := ValidateSession(token)
	assert.True(t, ok)
}

func TestValidateSessionSurfacesBackendFailure(t *testing.T) {
	mr := setupRedis(t)

	token, err := CreateSession("ext_9zQ4mB")
	require.NoError(t, err)

	mr.Close()

	// A store outage is an error, not an invalid session.
	_, ok, err := ValidateSession(token)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestResolveUserBackendFailureIsNotUnauthorized(t *testing.T) {
	mr := setupRedis(t)
	setupPostgresMock(t)
	seedSession(t, mr, testToken, testExternalID)

	mr.Close()

	_, err := ResolveUser(context.Background(), testToken)
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrUnauthorized),
		"a session-store outage must not read as a logged-out user")
}
