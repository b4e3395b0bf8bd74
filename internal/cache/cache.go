// Package cache provides the session token cache.
//
// Every operation is best-effort: implementations never return errors to the
// caller. A failed read is reported as a miss and a failed write as false.
package cache

import (
	"context"
	"time"
)

// TokenCache maps session tokens to serialized user snapshots.
type TokenCache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) (string, bool)
	// SetWithExpiry stores value under key for ttl. It reports whether the
	// write succeeded.
	SetWithExpiry(ctx context.Context, key string, ttl time.Duration, value string) bool
	// Delete removes key and reports whether the call succeeded.
	Delete(ctx context.Context, key string) bool
}

// Noop is used when no cache is configured. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool) {
	return "", false
}

func (Noop) SetWithExpiry(context.Context, string, time.Duration, string) bool {
	return false
}

func (Noop) Delete(context.Context, string) bool {
	return false
}
