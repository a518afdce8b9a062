package waitlist

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

// WaitlistRepository интерфейс репозитория очереди ожидания
type WaitlistRepository interface {
	GetByUserAndStation(ctx context.Context, userID, stationID int64) (*domain.WaitlistEntry, error)
	ListByStation(ctx context.Context, stationID int64) ([]*domain.WaitlistEntry, error)
	Delete(ctx context.Context, id int64) error
	UpdatePosition(ctx context.Context, id int64, position int) error
	MarkNotified(ctx context.Context, id int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CountActive(ctx context.Context, stationID int64) (int, error)
	RecentCompletedDurations(ctx context.Context, stationID int64, limit int) ([]float64, error)
}

// StationRepository интерфейс репозитория станций
type StationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	AdjustAvailableSlots(ctx context.Context, id int64, delta int) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier fire-and-forget отправка уведомлений; никогда не блокирует
// и не возвращает ошибку в вызывающий код
type Notifier interface {
	Notify(userID int64, title, body string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
