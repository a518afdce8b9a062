package domain

import "time"

// WaitlistEntry represents a user queued for a station that had no free slot.
// Position is a derived display value (dense 1..N per station); the ordering
// key for promotion is CreatedAt, not Position.
type WaitlistEntry struct {
	ID        int64
	UserID    int64
	StationID int64
	Position  int
	Notified  bool
	CreatedAt time.Time
}
