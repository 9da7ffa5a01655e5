package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	localCleanupEvery = 5 * time.Minute
	localLimiterTTL   = 30 * time.Minute
)

type localEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// KeyedLimiter manages per-key in-process rate limiting. It backs the Redis
// bucket when the shared store is unreachable; limits then hold per process
// rather than fleet-wide.
type KeyedLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	limit   rate.Limit
	burst   int

	cleanupOnce sync.Once
}

// NewKeyedLimiter creates a keyed limiter allowing rps requests per second
// with the given burst.
func NewKeyedLimiter(rps float64, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		entries: make(map[string]*localEntry),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

// Allow reports whether a request for key should be admitted right now.
func (kl *KeyedLimiter) Allow(key string) bool {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	kl.cleanupOnce.Do(kl.startCleanup)

	e, ok := kl.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(kl.limit, kl.burst)}
		kl.entries[key] = e
	}
	e.lastUse = time.Now()
	return e.limiter.Allow()
}

// startCleanup evicts limiters idle longer than localLimiterTTL.
func (kl *KeyedLimiter) startCleanup() {
	go func() {
		ticker := time.NewTicker(localCleanupEvery)
		defer ticker.Stop()
		for range ticker.C {
			kl.mu.Lock()
			now := time.Now()
			for k, e := range kl.entries {
				if now.Sub(e.lastUse) > localLimiterTTL {
					delete(kl.entries, k)
				}
			}
			kl.mu.Unlock()
		}
	}()
}
