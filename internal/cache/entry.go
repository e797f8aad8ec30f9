package cache

import (
	"encoding/json"
	"time"
)

// Entry is a single cached value with TTL metadata.
type Entry struct {
	// Key is the cache key (content hash of the source file).
	Key string `json:"key"`

	// Source records where the cached value came from, for humans reading the file.
	Source string `json:"source,omitempty"`

	// Data is the cached value.
	Data json.RawMessage `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newEntry(key, source string, data json.RawMessage, ttl time.Duration, now time.Time) *Entry {
	return &Entry{
		Key:       key,
		Source:    source,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// ExpiredAt reports whether the entry has expired at t.
func (e *Entry) ExpiredAt(t time.Time) bool {
	return t.After(e.ExpiresAt)
}

// Age returns how long before t the entry was created.
func (e *Entry) Age(t time.Time) time.Duration {
	return t.Sub(e.CreatedAt)
}
