package domain

import "time"

// PenaltyReason classifies why penalty points were added
type PenaltyReason string

const (
	PenaltyReasonNoShow     PenaltyReason = "no_show"
	PenaltyReasonLateCancel PenaltyReason = "late_cancel"
)

// UserPenalty accumulates penalty points per user and derives temporary blocks
type UserPenalty struct {
	UserID          int64
	PenaltyPoints   int
	NoShowCount     int
	LateCancelCount int
	BlockedUntil    *time.Time
	UpdatedAt       time.Time
}

// IsBlocked returns true if the user is currently blocked from booking
func (p *UserPenalty) IsBlocked(now time.Time) bool {
	return p.BlockedUntil != nil && p.BlockedUntil.After(now)
}
