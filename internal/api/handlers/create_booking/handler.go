package create_booking

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/m04kA/SMC-StationBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-StationBookingService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-StationBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "некорректный формат времени, ожидается RFC3339"
	msgInvalidTimeRange   = "время окончания должно быть позже времени начала"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgStationNotFound    = "станция не найдена"
	msgConflict           = "конфликт конкурентного бронирования, повторите запрос"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var blockedErr *createBooking.UserBlockedError

		switch {
		case errors.As(err, &blockedErr):
			h.logger.Warn("POST /bookings - User blocked: user_id=%d, until=%s", userID, blockedErr.Until)
			handlers.RespondForbidden(w, fmt.Sprintf("пользователь заблокирован до %s",
				blockedErr.Until.Format(time.RFC3339)))

		case errors.Is(err, createBooking.ErrInvalidTimeRange):
			h.logger.Warn("POST /bookings - Invalid time range: user_id=%d", userID)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, createBooking.ErrStationNotFound):
			h.logger.Warn("POST /bookings - Station not found: station_id=%d", req.StationID)
			handlers.RespondNotFound(w, msgStationNotFound)

		case errors.Is(err, createBooking.ErrConflict):
			h.logger.Warn("POST /bookings - Concurrent conflict: user_id=%d, station_id=%d", userID, req.StationID)
			handlers.RespondConflict(w, msgConflict)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, station_id=%d, error=%v",
				userID, req.StationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Слот достался пользователю — 201, ушел в очередь — 202
	if result.Booking != nil {
		h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d, station_id=%d",
			result.Booking.ID, userID, req.StationID)
		handlers.RespondJSON(w, http.StatusCreated, FromBookingResult(result.Booking))
		return
	}

	h.logger.Info("POST /bookings - User queued: user_id=%d, station_id=%d, position=%d",
		userID, req.StationID, result.Waitlist.Position)
	handlers.RespondJSON(w, http.StatusAccepted, FromWaitlistResult(req.StationID, result.Waitlist))
}
