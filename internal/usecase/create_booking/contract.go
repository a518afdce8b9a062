package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	waitlistSvc "github.com/m04kA/SMC-StationBookingService/internal/service/waitlist"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CountOverlapping(ctx context.Context, stationID int64, start, end time.Time) (int, error)
}

// StationRepository интерфейс репозитория станций
type StationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	AdjustAvailableSlots(ctx context.Context, id int64, delta int) error
}

// WaitlistRepository интерфейс репозитория очереди ожидания
type WaitlistRepository interface {
	GetByUserAndStation(ctx context.Context, userID, stationID int64) (*domain.WaitlistEntry, error)
	Create(ctx context.Context, userID, stationID int64) (*domain.WaitlistEntry, error)
}

// PenaltyService интерфейс сервиса штрафов
type PenaltyService interface {
	CheckBlocked(ctx context.Context, userID int64) (bool, *time.Time, error)
}

// WaitlistInfoProvider интерфейс оценки времени ожидания в очереди
type WaitlistInfoProvider interface {
	GetInfo(ctx context.Context, userID, stationID int64) (*waitlistSvc.Info, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier fire-and-forget отправка уведомлений
type Notifier interface {
	Notify(userID int64, title, body string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
