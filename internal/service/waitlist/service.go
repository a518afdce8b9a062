package waitlist

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	waitlistRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/waitlist"
)

// TTL кэша средней длительности сессии по станции
const avgDurationCacheTTL = time.Minute

// Service сервис продвижения очереди ожидания.
// Общая точка для пути отмены бронирования и expiry sweep планировщика:
// оба вызывают PromoteForStation, и продвижение атомарно per-station —
// повторная проверка свободных слотов идет в той же транзакции, что
// удаление записи очереди и создание бронирования.
type Service struct {
	waitlistRepo WaitlistRepository
	bookingRepo  BookingRepository
	stationRepo  StationRepository
	txManager    TransactionManager
	notifier     Notifier
	timeProvider TimeProvider
	cache        *gocache.Cache
	logger       Logger
}

// NewService создает новый экземпляр сервиса очереди
func NewService(
	waitlistRepo WaitlistRepository,
	bookingRepo BookingRepository,
	stationRepo StationRepository,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *Service {
	return &Service{
		waitlistRepo: waitlistRepo,
		bookingRepo:  bookingRepo,
		stationRepo:  stationRepo,
		txManager:    txManager,
		notifier:     notifier,
		timeProvider: &RealTimeProvider{},
		cache:        gocache.New(avgDurationCacheTTL, 5*time.Minute),
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// promotion результат продвижения одной записи, для уведомления после commit
type promotion struct {
	booking *domain.Booking
	station *domain.Station
}

// PromoteForStation продвигает головные записи очереди станции в новые
// бронирования, пока есть свободные слоты. maxPromote <= 0 означает
// "все свободные слоты". Продвинутому пользователю выдаётся свежее короткое
// окно (исходно запрошенное считается устаревшим). Возвращает созданные
// бронирования в порядке продвижения.
func (s *Service) PromoteForStation(ctx context.Context, stationID int64, notify bool, maxPromote int) ([]*domain.Booking, error) {
	var promoted []promotion
	var nextHead *domain.WaitlistEntry
	var stationName string

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		promoted = promoted[:0]
		nextHead = nil

		// Блокируем строку станции — сериализация per-station
		station, err := s.stationRepo.GetByID(txCtx, stationID)
		if err != nil {
			return fmt.Errorf("%w: PromoteForStation - get station: %v", ErrInternal, err)
		}
		stationName = station.Name

		activeCount, err := s.bookingRepo.CountActive(txCtx, stationID)
		if err != nil {
			return fmt.Errorf("%w: PromoteForStation - count active: %v", ErrInternal, err)
		}

		freeSlots := station.TotalSlots - activeCount
		if freeSlots <= 0 {
			return nil
		}

		toPromote := freeSlots
		if maxPromote > 0 && maxPromote < toPromote {
			toPromote = maxPromote
		}

		// Очередь в порядке FIFO по created_at, строки заблокированы
		entries, err := s.waitlistRepo.ListByStation(txCtx, stationID)
		if err != nil {
			return fmt.Errorf("%w: PromoteForStation - list waitlist: %v", ErrInternal, err)
		}
		if len(entries) == 0 {
			return nil
		}
		if toPromote > len(entries) {
			toPromote = len(entries)
		}

		now := s.timeProvider.Now()
		for _, entry := range entries[:toPromote] {
			start := now.Add(domain.PromotionLeadTime)
			booking := &domain.Booking{
				UserID:    entry.UserID,
				StationID: stationID,
				StartTime: start,
				EndTime:   start.Add(domain.PromotionSessionDuration),
				Status:    domain.StatusActive,
			}

			created, err := s.bookingRepo.Create(txCtx, booking)
			if err != nil {
				return fmt.Errorf("%w: PromoteForStation - create booking: %v", ErrInternal, err)
			}

			if err := s.waitlistRepo.Delete(txCtx, entry.ID); err != nil {
				return fmt.Errorf("%w: PromoteForStation - delete entry: %v", ErrInternal, err)
			}

			if err := s.stationRepo.AdjustAvailableSlots(txCtx, stationID, -1); err != nil {
				return fmt.Errorf("%w: PromoteForStation - adjust slots: %v", ErrInternal, err)
			}

			promoted = append(promoted, promotion{booking: created, station: station})
		}

		// Оставшиеся записи перенумеровываем плотно 1..N
		remaining := entries[toPromote:]
		if err := s.renumber(txCtx, remaining); err != nil {
			return err
		}

		// Новая голова очереди получает heads-up один раз: флаг notified
		// живёт до продвижения (запись удаляется вместе с ним)
		if notify && len(remaining) > 0 && !remaining[0].Notified {
			if err := s.waitlistRepo.MarkNotified(txCtx, remaining[0].ID); err != nil {
				return fmt.Errorf("%w: PromoteForStation - mark notified: %v", ErrInternal, err)
			}
			remaining[0].Notified = true
			nextHead = remaining[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	bookings := make([]*domain.Booking, 0, len(promoted))
	for _, p := range promoted {
		bookings = append(bookings, p.booking)

		s.logger.Info("PromoteForStation: promoted user=%d station=%d booking=%d",
			p.booking.UserID, stationID, p.booking.ID)

		// Уведомления вне транзакции: fire-and-forget
		if notify {
			s.notifier.Notify(p.booking.UserID,
				"Slot Available",
				fmt.Sprintf("You have been promoted from the waitlist at %s. Slot from %s to %s.",
					p.station.Name,
					p.booking.StartTime.Format("15:04"),
					p.booking.EndTime.Format("15:04")),
			)
		}
	}

	if nextHead != nil {
		s.notifier.Notify(nextHead.UserID,
			"Next in Line",
			fmt.Sprintf("You are now first in the waitlist at %s.", stationName),
		)
	}

	return bookings, nil
}

// Reorder перенумеровывает позиции очереди станции плотно 1..N по created_at.
// Идемпотентна — безопасно вызывать после append, не менявшего порядок.
func (s *Service) Reorder(ctx context.Context, stationID int64) error {
	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		entries, err := s.waitlistRepo.ListByStation(txCtx, stationID)
		if err != nil {
			return fmt.Errorf("%w: Reorder - list waitlist: %v", ErrInternal, err)
		}
		return s.renumber(txCtx, entries)
	})
}

// renumber присваивает записям позиции 1..N в порядке их следования.
// Пропускает записи, чья позиция уже корректна.
func (s *Service) renumber(ctx context.Context, entries []*domain.WaitlistEntry) error {
	for idx, entry := range entries {
		want := idx + 1
		if entry.Position == want {
			continue
		}
		if err := s.waitlistRepo.UpdatePosition(ctx, entry.ID, want); err != nil {
			return fmt.Errorf("%w: renumber - update position: %v", ErrInternal, err)
		}
		entry.Position = want
	}
	return nil
}

// Info позиция пользователя в очереди и оценка ожидания
type Info struct {
	Position             int
	EstimatedWaitMinutes int
}

// GetInfo возвращает позицию пользователя в очереди станции и эвристическую
// оценку ожидания: position * средняя длительность последних завершённых
// сессий станции. Оценка, не гарантия.
func (s *Service) GetInfo(ctx context.Context, userID, stationID int64) (*Info, error) {
	entry, err := s.waitlistRepo.GetByUserAndStation(ctx, userID, stationID)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			return nil, ErrNotQueued
		}
		s.logger.Error("GetInfo: failed to get entry user=%d station=%d: %v", userID, stationID, err)
		return nil, fmt.Errorf("%w: GetInfo - repository error: %v", ErrInternal, err)
	}

	avg, err := s.avgSessionMinutes(ctx, stationID)
	if err != nil {
		return nil, err
	}

	return &Info{
		Position:             entry.Position,
		EstimatedWaitMinutes: int(math.Round(float64(entry.Position) * avg)),
	}, nil
}

// avgSessionMinutes средняя длительность последних завершённых сессий
// станции, с минутным кэшем — история меняется редко, а запрос дергается
// на каждый опрос позиции
func (s *Service) avgSessionMinutes(ctx context.Context, stationID int64) (float64, error) {
	cacheKey := fmt.Sprintf("avg_duration:%d", stationID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(float64), nil
	}

	durations, err := s.bookingRepo.RecentCompletedDurations(ctx, stationID, domain.WaitEstimateSampleSize)
	if err != nil {
		s.logger.Error("avgSessionMinutes: failed to load durations station=%d: %v", stationID, err)
		return 0, fmt.Errorf("%w: avgSessionMinutes - repository error: %v", ErrInternal, err)
	}

	avg := float64(domain.DefaultAvgDurationMinutes)
	if len(durations) > 0 {
		var sum float64
		for _, d := range durations {
			sum += d
		}
		avg = sum / float64(len(durations))
	}

	s.cache.Set(cacheKey, avg, gocache.DefaultExpiration)
	return avg, nil
}
