package list_stations

import (
	"context"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

type StationService interface {
	List(ctx context.Context) ([]*domain.Station, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
