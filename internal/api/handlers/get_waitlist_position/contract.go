package get_waitlist_position

import (
	"context"

	waitlistSvc "github.com/m04kA/SMC-StationBookingService/internal/service/waitlist"
)

type WaitlistService interface {
	GetInfo(ctx context.Context, userID, stationID int64) (*waitlistSvc.Info, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
