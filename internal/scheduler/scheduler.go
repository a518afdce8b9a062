package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

// Scheduler фоновый reconciliation-планировщик. Раз в интервал завершает
// просроченные бронирования (с начислением no-show штрафов), продвигает
// очереди освободившихся станций и рассылает напоминания о скором старте.
type Scheduler struct {
	bookingRepo  BookingRepository
	stationRepo  StationRepository
	penaltySvc   PenaltyService
	promoter     WaitlistPromoter
	txManager    TransactionManager
	timeProvider TimeProvider
	notifier     Notifier
	logger       Logger

	interval time.Duration

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New создает новый экземпляр планировщика
func New(
	bookingRepo BookingRepository,
	stationRepo StationRepository,
	penaltySvc PenaltyService,
	promoter WaitlistPromoter,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
	interval time.Duration,
) *Scheduler {
	return &Scheduler{
		bookingRepo:  bookingRepo,
		stationRepo:  stationRepo,
		penaltySvc:   penaltySvc,
		promoter:     promoter,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		notifier:     notifier,
		logger:       logger,
		interval:     interval,
	}
}

// WithTimeProvider заменяет провайдер времени (для тестирования)
func (s *Scheduler) WithTimeProvider(tp TimeProvider) *Scheduler {
	s.timeProvider = tp
	return s
}

// Start запускает фоновый цикл планировщика. Повторный вызов без
// предшествующего Stop возвращает ErrAlreadyStarted.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("Scheduler: started, interval=%s", s.interval)

	go s.run(runCtx)

	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего тика
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.started = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("Scheduler: stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick выполняет один проход reconciliation: сначала освобождение
// просроченных слотов, затем напоминания. Ошибки отдельных сущностей
// не прерывают проход.
func (s *Scheduler) Tick(ctx context.Context) {
	s.sweepExpired(ctx)
	s.sweepReminders(ctx)
}

// sweepExpired находит активные бронирования с истекшим окном, помечает их
// завершенными, начисляет no-show штрафы и продвигает очереди.
func (s *Scheduler) sweepExpired(ctx context.Context) {
	now := s.timeProvider.Now()

	expired, err := s.bookingRepo.ListExpired(ctx, now)
	if err != nil {
		s.logger.Error("Scheduler: failed to list expired bookings: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	s.logger.Info("Scheduler: found %d expired bookings", len(expired))

	// Станции, где освободились слоты, продвигаем один раз после прохода
	freedStations := make(map[int64]struct{})

	for _, b := range expired {
		if err := s.completeExpired(ctx, b.ID, now); err != nil {
			s.logger.Error("Scheduler: failed to complete booking=%d: %v", b.ID, err)
			continue
		}
		freedStations[b.StationID] = struct{}{}
	}

	for stationID := range freedStations {
		if _, err := s.promoter.PromoteForStation(ctx, stationID, true, 0); err != nil {
			s.logger.Error("Scheduler: failed to promote waitlist for station=%d: %v", stationID, err)
		}
	}
}

// completeExpired завершает одно просроченное бронирование в собственной
// транзакции со взятой блокировкой станции.
func (s *Scheduler) completeExpired(ctx context.Context, bookingID int64, now time.Time) error {
	return s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Перечитываем под блокировкой: бронь могли отменить между
		// выборкой и транзакцией
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}
		if !booking.IsActive() || booking.EndTime.After(now) {
			return nil
		}

		if _, err := s.stationRepo.GetByID(txCtx, booking.StationID); err != nil {
			return fmt.Errorf("failed to lock station: %w", err)
		}

		if booking.IsNoShow(now) {
			s.logger.Warn("Scheduler: no-show detected, booking=%d user=%d", booking.ID, booking.UserID)
			if _, err := s.penaltySvc.AddPoints(txCtx, booking.UserID, 1, domain.PenaltyReasonNoShow); err != nil {
				return fmt.Errorf("failed to apply no-show penalty: %w", err)
			}
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusCompleted); err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}

		if err := s.stationRepo.AdjustAvailableSlots(txCtx, booking.StationID, 1); err != nil {
			return fmt.Errorf("failed to adjust available slots: %w", err)
		}

		return nil
	})
}

// sweepReminders рассылает напоминания о бронированиях, начинающихся в
// ближайшие 10 минут. Напоминания stateless: бронь внутри окна получает
// уведомление на каждом тике.
func (s *Scheduler) sweepReminders(ctx context.Context) {
	now := s.timeProvider.Now()

	upcoming, err := s.bookingRepo.ListStartingWithin(ctx, now, now.Add(domain.ReminderWindow))
	if err != nil {
		s.logger.Error("Scheduler: failed to list upcoming bookings: %v", err)
		return
	}

	for _, b := range upcoming {
		minutes := int(b.StartTime.Sub(now).Minutes())
		s.notifier.Notify(b.UserID, "Upcoming Booking",
			fmt.Sprintf("Your charging session at station #%d starts in %d minutes", b.StationID, minutes))
	}
}
