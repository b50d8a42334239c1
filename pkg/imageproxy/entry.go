// Package imageproxy fetches, optionally resizes, and caches product
// images so clients never hit the image origin directly. Images are
// best-effort: any fetch or transform failure resolves to ErrUnavailable,
// which callers turn into a placeholder redirect rather than a hard error.
package imageproxy

import "time"

// Entry is a cached image payload. Entries are immutable once stored;
// re-fetching after expiry overwrites the whole entry.
type Entry struct {
	Data        []byte
	ContentType string
	CachedAt    time.Time
}

// Age returns how long ago the entry was cached.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}

// IsExpired reports whether the entry is older than ttl.
func (e *Entry) IsExpired(ttl time.Duration) bool {
	return e.Age() >= ttl
}

// cacheKey builds the deterministic cache key for a URL and size variant.
func cacheKey(rawURL, variant string) string {
	return rawURL + "#" + variant
}
