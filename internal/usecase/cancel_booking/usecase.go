package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-StationBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-StationBookingService/pkg/dbmetrics"
)

// UseCase use case отмены бронирования. Освобождает слот и сразу
// запускает продвижение очереди станции.
type UseCase struct {
	bookingRepo  BookingRepository
	stationRepo  StationRepository
	penaltySvc   PenaltyService
	promoter     WaitlistPromoter
	txManager    TransactionManager
	timeProvider TimeProvider
	notifier     Notifier
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	stationRepo StationRepository,
	penaltySvc PenaltyService,
	promoter WaitlistPromoter,
	txManager TransactionManager,
	timeProvider TimeProvider,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		stationRepo:  stationRepo,
		penaltySvc:   penaltySvc,
		promoter:     promoter,
		txManager:    txManager,
		timeProvider: timeProvider,
		notifier:     notifier,
		logger:       logger,
	}
}

// Execute выполняет use case отмены бронирования.
// Поздняя отмена (менее чем за 10 минут до начала) начисляет штрафной балл.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: booking=%d, user=%d", req.BookingID, req.UserID)

	if req.BookingID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: booking id and user id must be positive", ErrInvalidInput)
	}

	var (
		stationID      int64
		penaltyApplied bool
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		penaltyApplied = false

		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if booking.UserID != req.UserID {
			uc.logger.Warn("CancelBooking: user=%d tried to cancel booking=%d owned by user=%d",
				req.UserID, booking.ID, booking.UserID)
			return ErrAccessDenied
		}

		now := uc.timeProvider.Now()
		if !booking.IsActive() {
			return ErrNotActive
		}
		if !booking.CanBeCancelled(now) {
			return ErrAlreadyStarted
		}

		// Блокируем станцию, чтобы освобождение слота и продвижение
		// очереди не гонялись с конкурентным созданием брони
		if _, err := uc.stationRepo.GetByID(txCtx, booking.StationID); err != nil {
			return fmt.Errorf("%w: failed to lock station: %v", ErrInternal, err)
		}
		stationID = booking.StationID

		if booking.IsLateCancel(now) {
			uc.logger.Warn("CancelBooking: late cancel of booking=%d by user=%d", booking.ID, req.UserID)
			if _, err := uc.penaltySvc.AddPoints(txCtx, req.UserID, 1, domain.PenaltyReasonLateCancel); err != nil {
				return fmt.Errorf("%w: failed to apply penalty: %v", ErrInternal, err)
			}
			penaltyApplied = true
		}

		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusCancelled); err != nil {
			return fmt.Errorf("%w: failed to update booking status: %v", ErrInternal, err)
		}

		if err := uc.stationRepo.AdjustAvailableSlots(txCtx, booking.StationID, 1); err != nil {
			return fmt.Errorf("%w: failed to adjust available slots: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, dbmetrics.ErrSerializationFailure) {
			uc.logger.Warn("CancelBooking: serialization conflict for booking=%d", req.BookingID)
			return nil, ErrConflict
		}
		return nil, err
	}

	uc.logger.Info("CancelBooking: booking=%d cancelled, penalty=%t", req.BookingID, penaltyApplied)

	uc.notifier.Notify(req.UserID, "Booking Cancelled",
		fmt.Sprintf("Your booking #%d has been cancelled", req.BookingID))
	if penaltyApplied {
		uc.notifier.Notify(req.UserID, "Late Cancellation Penalty",
			"You cancelled less than 10 minutes before the start and received 1 penalty point")
	}

	// Освободившийся слот сразу отдаем очереди. Ошибка продвижения не
	// откатывает отмену — очередь догонится на следующем тике планировщика.
	promoted, err := uc.promoter.PromoteForStation(ctx, stationID, true, 1)
	if err != nil {
		uc.logger.Error("CancelBooking: failed to promote waitlist for station=%d: %v", stationID, err)
		promoted = nil
	}

	return &Response{
		PenaltyApplied: penaltyApplied,
		PromotedUsers:  len(promoted),
	}, nil
}
