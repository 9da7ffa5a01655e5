package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reveriehq/reverie-backend/internal/database"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for external-id->session mapping
	UserSessionKeyPrefix = "user_session:"
)

// CreateSession creates a new session bound to an identity-provider handle and
// stores it in Redis. The provisioning layer calls this after the provider
// confirms a sign-in; any prior session for the same handle is invalidated so
// the 7-day timer resets from the current login. Returns the session token.
func CreateSession(externalID string) (string, error) {
	InvalidateUserSessions(externalID)

	// Generate secure session token
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + externalID

	// Store session with 7-day expiration
	err := database.RedisClient.Set(ctx, sessionKey, externalID, SessionDuration).Err()
	if err != nil {
		return "", err
	}

	// Store handle->session mapping
	err = database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err()
	if err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks if a session token is valid and returns the external
// identity handle it is bound to. An empty token fails without touching Redis.
// A Redis failure is returned as an error, not as an invalid session, so an
// outage never reads as a mass logout.
func ValidateSession(sessionToken string) (string, bool, error) {
	if sessionToken == "" {
		return "", false, nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	externalID, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == redis.Nil || (err == nil && externalID == "") {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return externalID, true, nil
}

// RefreshSession extends the session expiration by 7 days from now.
func RefreshSession(sessionToken string) error {
	if sessionToken == "" {
		return fmt.Errorf("session token is empty")
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	externalID, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		return err
	}

	userSessionKey := UserSessionKeyPrefix + externalID

	if err := database.RedisClient.Expire(ctx, sessionKey, SessionDuration).Err(); err != nil {
		return err
	}
	return database.RedisClient.Expire(ctx, userSessionKey, SessionDuration).Err()
}

// InvalidateSession removes a session from Redis.
func InvalidateSession(sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	ctx := context.Background()
	sessionKey := SessionKeyPrefix + sessionToken

	// Get handle before deleting
	externalID, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && externalID != "" {
		database.RedisClient.Del(ctx, UserSessionKeyPrefix+externalID)
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions invalidates the session held by an identity handle.
func InvalidateUserSessions(externalID string) error {
	ctx := context.Background()
	userSessionKey := UserSessionKeyPrefix + externalID

	sessionToken, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+sessionToken)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}
