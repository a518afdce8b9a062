package register_device

import (
	"context"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.DeviceSubscription) (*domain.DeviceSubscription, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
