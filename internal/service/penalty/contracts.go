package penalty

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

// PenaltyRepository интерфейс репозитория штрафов
type PenaltyRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.UserPenalty, error)
	Upsert(ctx context.Context, p *domain.UserPenalty) error
	Reset(ctx context.Context, userID int64) error
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
