package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
}

// StationRepository интерфейс репозитория станций
type StationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	AdjustAvailableSlots(ctx context.Context, id int64, delta int) error
}

// PenaltyService интерфейс сервиса штрафов
type PenaltyService interface {
	AddPoints(ctx context.Context, userID int64, points int, reason domain.PenaltyReason) (*domain.UserPenalty, error)
}

// WaitlistPromoter продвижение очереди после освобождения слота
type WaitlistPromoter interface {
	PromoteForStation(ctx context.Context, stationID int64, notify bool, maxPromote int) ([]*domain.Booking, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
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
