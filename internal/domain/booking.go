package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a charging slot reservation at a station
type Booking struct {
	ID        int64
	UserID    int64
	StationID int64
	StartTime time.Time
	EndTime   time.Time
	Status    BookingStatus
	CreatedAt time.Time
}

// IsActive returns true if the booking still holds a slot
func (b *Booking) IsActive() bool {
	return b.Status == StatusActive
}

// CanBeCancelled returns true if the booking can be cancelled by its owner.
// Only active bookings that have not started yet can be cancelled.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	return b.Status == StatusActive && b.StartTime.After(now)
}

// IsLateCancel returns true if cancelling at `now` falls inside the
// late-cancellation window before the booking start
func (b *Booking) IsLateCancel(now time.Time) bool {
	return b.StartTime.Sub(now) <= LateCancelWindow
}

// IsNoShow returns true if the holder never started the session within the
// grace period after the booking start
func (b *Booking) IsNoShow(now time.Time) bool {
	return b.StartTime.Add(NoShowGracePeriod).Before(now)
}

// Duration returns the booked window length
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Overlaps reports whether [b.StartTime, b.EndTime) intersects [start, end).
// Half-open semantics: touching boundaries do not count as overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
