package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	stationRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/station"
	waitlistRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-StationBookingService/pkg/dbmetrics"
)

// UseCase use case создания бронирования: центральная точка распределения
// слотов. Либо создает бронирование, либо ставит пользователя в очередь.
type UseCase struct {
	bookingRepo  BookingRepository
	stationRepo  StationRepository
	waitlistRepo WaitlistRepository
	penaltySvc   PenaltyService
	waitlistInfo WaitlistInfoProvider
	txManager    TransactionManager
	notifier     Notifier
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	stationRepo StationRepository,
	waitlistRepo WaitlistRepository,
	penaltySvc PenaltyService,
	waitlistInfo WaitlistInfoProvider,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		stationRepo:  stationRepo,
		waitlistRepo: waitlistRepo,
		penaltySvc:   penaltySvc,
		waitlistInfo: waitlistInfo,
		txManager:    txManager,
		notifier:     notifier,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка пересечений и создание идут в одной SERIALIZABLE транзакции
// с заблокированной строкой станции — две конкурентные брони не могут
// обе увидеть свободный слот, когда он один.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, station=%d, window=[%s, %s)",
		req.UserID, req.StationID,
		req.StartTime.Format("2006-01-02 15:04"), req.EndTime.Format("2006-01-02 15:04"))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Блокировка проверяется до любых мутаций
	blocked, until, err := uc.penaltySvc.CheckBlocked(ctx, req.UserID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check block for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to check user block: %v", ErrInternal, err)
	}
	if blocked {
		uc.logger.Warn("CreateBooking: user=%d is blocked until %s", req.UserID, until)
		return nil, &UserBlockedError{Until: *until}
	}

	var (
		created     *domain.Booking
		queued      *domain.WaitlistEntry
		wasQueued   bool
		stationName string
	)

	// 3. Атомарная проверка ёмкости и создание брони либо запись в очередь
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, queued, wasQueued = nil, nil, false

		// 3.1. Станция блокируется FOR UPDATE — точка сериализации
		station, err := uc.stationRepo.GetByID(txCtx, req.StationID)
		if err != nil {
			if errors.Is(err, stationRepo.ErrStationNotFound) {
				return ErrStationNotFound
			}
			return fmt.Errorf("%w: failed to get station: %v", ErrInternal, err)
		}
		stationName = station.Name

		// 3.2. Активные брони, пересекающие запрошенный полуинтервал
		overlapping, err := uc.bookingRepo.CountOverlapping(txCtx, req.StationID, req.StartTime, req.EndTime)
		if err != nil {
			return fmt.Errorf("%w: failed to count overlapping bookings: %v", ErrInternal, err)
		}

		// 3.3. Есть свободный слот в запрошенном окне — создаем бронь
		if overlapping < station.TotalSlots {
			uc.logger.Info("CreateBooking: slot available, %d/%d taken", overlapping, station.TotalSlots)

			booking := &domain.Booking{
				UserID:    req.UserID,
				StationID: req.StationID,
				StartTime: req.StartTime,
				EndTime:   req.EndTime,
				Status:    domain.StatusActive,
			}

			created, err = uc.bookingRepo.Create(txCtx, booking)
			if err != nil {
				return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
			}

			// Единственный путь, потребляющий слот напрямую
			if err := uc.stationRepo.AdjustAvailableSlots(txCtx, req.StationID, -1); err != nil {
				return fmt.Errorf("%w: failed to adjust available slots: %v", ErrInternal, err)
			}
			return nil
		}

		// 3.4. Ёмкость исчерпана — очередь. Повторный запрос идемпотентен:
		// возвращаем существующую позицию, дубликат не создаем.
		uc.logger.Info("CreateBooking: station full, %d/%d taken, queueing user=%d",
			overlapping, station.TotalSlots, req.UserID)

		existing, err := uc.waitlistRepo.GetByUserAndStation(txCtx, req.UserID, req.StationID)
		if err == nil {
			queued, wasQueued = existing, true
			return nil
		}
		if !errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			return fmt.Errorf("%w: failed to check waitlist: %v", ErrInternal, err)
		}

		entry, err := uc.waitlistRepo.Create(txCtx, req.UserID, req.StationID)
		if err != nil {
			// Гонка с параллельным запросом того же пользователя
			if errors.Is(err, waitlistRepo.ErrAlreadyQueued) {
				existing, getErr := uc.waitlistRepo.GetByUserAndStation(txCtx, req.UserID, req.StationID)
				if getErr != nil {
					return fmt.Errorf("%w: failed to get existing entry: %v", ErrInternal, getErr)
				}
				queued, wasQueued = existing, true
				return nil
			}
			return fmt.Errorf("%w: failed to create waitlist entry: %v", ErrInternal, err)
		}
		queued = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, dbmetrics.ErrSerializationFailure) {
			uc.logger.Warn("CreateBooking: serialization conflict for user=%d station=%d", req.UserID, req.StationID)
			return nil, ErrConflict
		}
		return nil, err
	}

	// 4. Уведомления вне транзакции, fire-and-forget
	if created != nil {
		uc.logger.Info("CreateBooking: successfully created booking id=%d", created.ID)
		uc.notifier.Notify(req.UserID,
			"Booking Confirmed",
			fmt.Sprintf("You booked %s from %s to %s",
				stationName,
				created.StartTime.Format("2006-01-02 15:04"),
				created.EndTime.Format("2006-01-02 15:04")),
		)

		return &Response{Booking: &BookingResult{
			ID:        created.ID,
			StationID: created.StationID,
			StartTime: created.StartTime,
			EndTime:   created.EndTime,
			Status:    string(created.Status),
			CreatedAt: created.CreatedAt,
		}}, nil
	}

	if !wasQueued {
		uc.notifier.Notify(req.UserID,
			"Added to Waitlist",
			fmt.Sprintf("Station %s is full. Your waitlist position: %d", stationName, queued.Position),
		)
	}

	// Оценка ожидания — вне транзакции, по последним завершённым сессиям
	estimated := queued.Position * domain.DefaultAvgDurationMinutes
	if info, infoErr := uc.waitlistInfo.GetInfo(ctx, req.UserID, req.StationID); infoErr == nil {
		estimated = info.EstimatedWaitMinutes
	} else {
		uc.logger.Warn("CreateBooking: failed to estimate wait for user=%d: %v", req.UserID, infoErr)
	}

	uc.logger.Info("CreateBooking: user=%d queued at station=%d position=%d", req.UserID, req.StationID, queued.Position)
	return &Response{Waitlist: &WaitlistResult{
		Position:             queued.Position,
		EstimatedWaitMinutes: estimated,
		AlreadyQueued:        wasQueued,
	}}, nil
}
