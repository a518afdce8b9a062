package get_waitlist_position

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StationBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-StationBookingService/internal/api/middleware"
	waitlistSvc "github.com/m04kA/SMC-StationBookingService/internal/service/waitlist"
)

const (
	msgInvalidStationID = "некорректный ID станции"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotQueued        = "пользователь не стоит в очереди этой станции"
)

// WaitlistPositionResponse позиция в очереди и оценка ожидания
type WaitlistPositionResponse struct {
	StationID            int64 `json:"stationId"`
	Position             int   `json:"position"`
	EstimatedWaitMinutes int   `json:"estimatedWaitMinutes"`
}

type Handler struct {
	service WaitlistService
	logger  Logger
}

func NewHandler(service WaitlistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/stations/{stationId}/waitlist
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	stationID, err := strconv.ParseInt(vars["stationId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/waitlist - Invalid station ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /stations/{id}/waitlist - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	info, err := h.service.GetInfo(r.Context(), userID, stationID)
	if err != nil {
		switch {
		case errors.Is(err, waitlistSvc.ErrNotQueued):
			h.logger.Warn("GET /stations/{id}/waitlist - Not queued: user_id=%d, station_id=%d", userID, stationID)
			handlers.RespondNotFound(w, msgNotQueued)

		default:
			h.logger.Error("GET /stations/{id}/waitlist - Failed to get position: user_id=%d, station_id=%d, error=%v",
				userID, stationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /stations/{id}/waitlist - Position retrieved: user_id=%d, station_id=%d, position=%d",
		userID, stationID, info.Position)
	handlers.RespondJSON(w, http.StatusOK, &WaitlistPositionResponse{
		StationID:            stationID,
		Position:             info.Position,
		EstimatedWaitMinutes: info.EstimatedWaitMinutes,
	})
}
