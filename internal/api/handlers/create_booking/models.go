package create_booking

import (
	"errors"
	"time"

	createBooking "github.com/m04kA/SMC-StationBookingService/internal/usecase/create_booking"
)

// ErrInvalidTimeFormat возвращается при некорректном формате времени
var ErrInvalidTimeFormat = errors.New("invalid time format, RFC3339 expected")

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	StationID int64  `json:"stationId"`
	StartTime string `json:"startTime"` // "2026-08-29T14:00:00Z"
	EndTime   string `json:"endTime"`   // "2026-08-29T15:00:00Z"
}

// BookingResponse созданное бронирование
type BookingResponse struct {
	ID        int64  `json:"id"`
	StationID int64  `json:"stationId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

// WaitlistResponse позиция в очереди, когда свободных слотов нет
type WaitlistResponse struct {
	Queued               bool  `json:"queued"`
	Position             int   `json:"position"`
	EstimatedWaitMinutes int   `json:"estimatedWaitMinutes"`
	AlreadyQueued        bool  `json:"alreadyQueued"`
	StationID            int64 `json:"stationId"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}

	return &createBooking.Request{
		UserID:    userID,
		StationID: r.StationID,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
	}, nil
}

// FromBookingResult конвертирует созданное бронирование в HTTP response
func FromBookingResult(b *createBooking.BookingResult) *BookingResponse {
	return &BookingResponse{
		ID:        b.ID,
		StationID: b.StationID,
		StartTime: b.StartTime.Format(time.RFC3339),
		EndTime:   b.EndTime.Format(time.RFC3339),
		Status:    b.Status,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

// FromWaitlistResult конвертирует результат постановки в очередь в HTTP response
func FromWaitlistResult(stationID int64, w *createBooking.WaitlistResult) *WaitlistResponse {
	return &WaitlistResponse{
		Queued:               true,
		Position:             w.Position,
		EstimatedWaitMinutes: w.EstimatedWaitMinutes,
		AlreadyQueued:        w.AlreadyQueued,
		StationID:            stationID,
	}
}
