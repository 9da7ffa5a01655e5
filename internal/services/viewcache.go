package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reveriehq/reverie-backend/internal/database"
)

const (
	// ViewKeyPrefix is the Redis key prefix for cached view payloads
	ViewKeyPrefix = "view:"
	// ViewCacheTTL bounds staleness if an invalidation is ever missed
	ViewCacheTTL = 10 * time.Minute
)

// ViewCache caches rendered view payloads (dashboard, collection pages) in
// Redis and carries the invalidation signal the write pipeline fires after
// every mutation. Reads recompute on miss.
type ViewCache struct{}

// ViewKey builds the cache key for a named view scoped to one user.
func ViewKey(view, userID string) string {
	return fmt.Sprintf("%s%s:u:%s", ViewKeyPrefix, view, userID)
}

// Get retrieves a cached view payload. A miss is not an error.
func (v *ViewCache) Get(ctx context.Context, view, userID string, dest interface{}) (bool, error) {
	val, err := database.RedisClient.Get(ctx, ViewKey(view, userID)).Result()
	if err != nil {
		return false, nil // Cache miss
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a view payload.
func (v *ViewCache) Set(ctx context.Context, view, userID string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, ViewKey(view, userID), jsonData, ViewCacheTTL).Err()
}

// InvalidateUser marks every view depending on the user's entry list stale:
// the dashboard key plus any collection page keys.
func (v *ViewCache) InvalidateUser(ctx context.Context, userID string) error {
	keys := []string{ViewKey("dashboard", userID)}

	// Collection views are keyed view:collection:<id>:u:<userID>; sweep them.
	pattern := ViewKeyPrefix + "collection:*:u:" + userID
	iter := database.RedisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	return database.RedisClient.Del(ctx, keys...).Err()
}

// Global view cache instance
var Views = &ViewCache{}
