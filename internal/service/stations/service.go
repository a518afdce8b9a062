package stations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	stationRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/station"
)

// StationRepository интерфейс репозитория станций
type StationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Station, error)
	List(ctx context.Context) ([]*domain.Station, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

var (
	// ErrStationNotFound возвращается, когда станция не найдена
	ErrStationNotFound = errors.New("station not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("stations service: internal error")
)

// Service сервис чтения станций
type Service struct {
	stationRepo StationRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса станций
func NewService(stationRepo StationRepository, logger Logger) *Service {
	return &Service{stationRepo: stationRepo, logger: logger}
}

// List возвращает все станции с денормализованной доступностью слотов
func (s *Service) List(ctx context.Context) ([]*domain.Station, error) {
	stations, err := s.stationRepo.List(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return stations, nil
}

// GetByID возвращает станцию по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Station, error) {
	st, err := s.stationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, stationRepo.ErrStationNotFound) {
			s.logger.Warn("GetByID: station id=%d not found", id)
			return nil, ErrStationNotFound
		}
		s.logger.Error("GetByID: repository error for station id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return st, nil
}
