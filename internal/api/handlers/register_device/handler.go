package register_device

import (
	"net/http"

	"github.com/m04kA/SMC-StationBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-StationBookingService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingFields      = "endpoint и ключи подписки обязательны"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	repo   SubscriptionRepository
	logger Logger
}

func NewHandler(repo SubscriptionRepository, logger Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Handle POST /api/v1/devices
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /devices - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RegisterDeviceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /devices - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if !req.Valid() {
		h.logger.Warn("POST /devices - Missing subscription fields: user_id=%d", userID)
		handlers.RespondBadRequest(w, msgMissingFields)
		return
	}

	sub, err := h.repo.Create(r.Context(), req.ToDomainSubscription(userID))
	if err != nil {
		h.logger.Error("POST /devices - Failed to register device: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /devices - Device registered: user_id=%d, subscription_id=%d", userID, sub.ID)
	handlers.RespondJSON(w, http.StatusCreated, &RegisterDeviceResponse{ID: sub.ID})
}
