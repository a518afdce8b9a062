package list_stations

import (
	"net/http"

	"github.com/m04kA/SMC-StationBookingService/internal/api/handlers"
)

type Handler struct {
	service StationService
	logger  Logger
}

func NewHandler(service StationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/stations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	stations, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("GET /stations - Failed to list stations: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /stations - Retrieved %d stations", len(stations))
	handlers.RespondJSON(w, http.StatusOK, FromDomainStationList(stations))
}
