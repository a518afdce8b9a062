package penalty

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	penaltyRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/penalty"
)

// Service единая точка применения штрафной политики.
// Используется и путем отмены бронирования, и expiry sweep планировщика —
// пороги и длительности блокировок у обоих вызывающих путей одинаковые.
type Service struct {
	repo         PenaltyRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса штрафов
func NewService(repo PenaltyRepository, logger Logger) *Service {
	return &Service{
		repo:         repo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// AddPoints начисляет пользователю штрафные очки и применяет пороги
// блокировки. Очки только накапливаются; сброс — отдельная
// административная операция.
func (s *Service) AddPoints(ctx context.Context, userID int64, points int, reason domain.PenaltyReason) (*domain.UserPenalty, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", ErrInvalidInput)
	}

	pen, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, penaltyRepo.ErrPenaltyNotFound) {
			s.logger.Error("AddPoints: failed to get penalty for user=%d: %v", userID, err)
			return nil, fmt.Errorf("%w: AddPoints - repository error: %v", ErrInternal, err)
		}
		pen = &domain.UserPenalty{UserID: userID}
	}

	pen.PenaltyPoints += points
	switch reason {
	case domain.PenaltyReasonNoShow:
		pen.NoShowCount++
	case domain.PenaltyReasonLateCancel:
		pen.LateCancelCount++
	default:
		return nil, fmt.Errorf("%w: unknown penalty reason %q", ErrInvalidInput, reason)
	}

	s.applyBlockThresholds(pen)

	if err := s.repo.Upsert(ctx, pen); err != nil {
		s.logger.Error("AddPoints: failed to save penalty for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: AddPoints - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddPoints: user=%d reason=%s total=%d blocked_until=%v",
		userID, reason, pen.PenaltyPoints, pen.BlockedUntil)
	return pen, nil
}

// applyBlockThresholds выставляет blocked_until по накопленным очкам.
// Каждое новое нарушение после порога продлевает блокировку заново.
func (s *Service) applyBlockThresholds(pen *domain.UserPenalty) {
	now := s.timeProvider.Now()

	var until time.Time
	switch {
	case pen.PenaltyPoints >= domain.BlockThresholdLong:
		until = now.Add(domain.BlockDurationLong)
	case pen.PenaltyPoints >= domain.BlockThresholdShort:
		until = now.Add(domain.BlockDurationShort)
	default:
		return
	}

	pen.BlockedUntil = &until
}

// CheckBlocked возвращает признак блокировки пользователя и время её
// окончания. Отсутствие записи штрафов означает отсутствие блокировки.
func (s *Service) CheckBlocked(ctx context.Context, userID int64) (bool, *time.Time, error) {
	pen, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, penaltyRepo.ErrPenaltyNotFound) {
			return false, nil, nil
		}
		s.logger.Error("CheckBlocked: failed to get penalty for user=%d: %v", userID, err)
		return false, nil, fmt.Errorf("%w: CheckBlocked - repository error: %v", ErrInternal, err)
	}

	if pen.IsBlocked(s.timeProvider.Now()) {
		return true, pen.BlockedUntil, nil
	}
	return false, nil, nil
}

// Reset сбрасывает штрафы пользователя (административная операция)
func (s *Service) Reset(ctx context.Context, userID int64) error {
	if err := s.repo.Reset(ctx, userID); err != nil {
		if errors.Is(err, penaltyRepo.ErrPenaltyNotFound) {
			return ErrPenaltyNotFound
		}
		s.logger.Error("Reset: failed to reset penalty for user=%d: %v", userID, err)
		return fmt.Errorf("%w: Reset - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Reset: penalties cleared for user=%d", userID)
	return nil
}
