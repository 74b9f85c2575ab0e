package domain

import "time"

// Session represents a login session stored in Redis and referenced by the sid claim of access tokens.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	ExpiresAt time.Time         `json:"expiresAt"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// TTL returns the remaining lifetime relative to reference, never negative.
func (s *Session) TTL(reference time.Time) time.Duration {
	if s.IsExpired(reference) {
		return 0
	}
	return s.ExpiresAt.Sub(reference)
}
