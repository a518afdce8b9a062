package domain

import "time"

// DeviceSubscription represents a web push subscription registered by a
// user's device. Notifications fan out to every subscription of the user.
type DeviceSubscription struct {
	ID        int64
	UserID    int64
	Endpoint  string
	P256DH    string
	Auth      string
	CreatedAt time.Time
}
