package domain

import "time"

// Penalty policy constants. One canonical policy for both the cancellation
// path and the reconciliation sweep.
const (
	// LateCancelWindow cancellation closer to the start than this adds a point
	LateCancelWindow = 10 * time.Minute

	// NoShowGracePeriod time after start within which the session must begin
	NoShowGracePeriod = 10 * time.Minute

	// BlockThresholdShort points at which a short block is applied
	BlockThresholdShort = 3
	// BlockThresholdLong points at which a long block is applied
	BlockThresholdLong = 5

	// BlockDurationShort block duration after crossing the short threshold
	BlockDurationShort = 24 * time.Hour
	// BlockDurationLong block duration after crossing the long threshold
	BlockDurationLong = 7 * 24 * time.Hour
)

// Waitlist promotion constants. A promotion grants a fresh short session
// rather than the originally requested window, which is presumed stale.
const (
	// PromotionLeadTime how soon after promotion the granted session starts
	PromotionLeadTime = 5 * time.Minute

	// PromotionSessionDuration length of the granted session
	PromotionSessionDuration = 30 * time.Minute
)

// Reconciliation constants
const (
	// ReminderWindow how far ahead the reminder sweep looks
	ReminderWindow = 10 * time.Minute
)

// Wait estimation constants
const (
	// WaitEstimateSampleSize how many recent completed bookings feed the
	// average-duration heuristic
	WaitEstimateSampleSize = 10

	// DefaultAvgDurationMinutes fallback when a station has no history
	DefaultAvgDurationMinutes = 30
)
