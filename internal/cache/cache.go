// Package cache holds short lived values, such as the outcome of a notification, until the next page that
// displays them.
package cache

import (
	"context"
	"time"
)

type Ephemeral interface {
	// Set stores value under key, replacing any previous value. The entry expires after ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Take returns the value stored under key and deletes it. ok is false if there is no live entry.
	Take(ctx context.Context, key string) (value string, ok bool, err error)
	// Close releases the connection, if any. The cache must not be used afterwards.
	Close() error
}
