// Package elemcache is a persistent, conditionally-revalidated cache for
// orbital element text. Entries are keyed by source URL and never deleted;
// freshness is TTL-based, and a network failure degrades to serving whatever
// body was stored last rather than failing the caller.
package elemcache

import "time"

// Entry is one persisted cache record. Body always holds the last
// successfully retrieved or validated content; FetchedAt only moves forward.
type Entry struct {
	URL          string        `json:"url"`
	Body         string        `json:"body"`
	ETag         string        `json:"etag,omitempty"`
	LastModified string        `json:"last_modified,omitempty"`
	FetchedAt    time.Time     `json:"fetched_at"`
	TTL          time.Duration `json:"ttl"`
}

// Fresh reports whether the entry is still inside its TTL window.
func (e Entry) Fresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}
