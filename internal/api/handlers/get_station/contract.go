package get_station

import (
	"context"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

type StationService interface {
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
