package model

import "time"

// ResumeTTL is how long a cached résumé is used before it is refetched.
const ResumeTTL = time.Hour

// CachedResume is the device-local copy of the user's résumé text.
type CachedResume struct {
	Text      string
	FetchedAt time.Time
}

// IsFresh reports whether the cached text may still be used at now.
// An empty text or zero timestamp is never fresh.
func (r CachedResume) IsFresh(now time.Time) bool {
	if r.Text == "" || r.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(r.FetchedAt) < ResumeTTL
}
