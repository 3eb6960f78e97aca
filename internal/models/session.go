package models

import "time"

// UnknownSessionID is returned when the composite was stored but the
// metadata row could not be written. The user keeps the storage URL.
const UnknownSessionID = "unknown"

// StripSession is one persisted photostrip-creation event.
type StripSession struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	PhotoURLs     []string   `json:"photo_urls"`
	PhotostripURL string     `json:"photostrip_url"`
	Captions      string     `json:"captions"`
	MemoryNotes   string     `json:"memory_notes"`
	UserID        *string    `json:"user_id,omitempty"`
}

// OwnedBy reports whether the session may be mutated under the given
// identity. Rows without a user id are legacy/anonymous and stay writable.
func (s *StripSession) OwnedBy(userID *string) bool {
	if s.UserID == nil {
		return true
	}
	return userID != nil && *userID == *s.UserID
}
