// Package cache keeps parsed datasets on disk between invocations.
//
// Entries are JSON files named after their key with a TTL. The dataset cache
// keys each snapshot by the SHA-256 and size of the source CSV, so an edited
// file never matches a stale entry.
package cache
