package cancel_booking

import cancelBooking "github.com/m04kA/SMC-StationBookingService/internal/usecase/cancel_booking"

// CancelBookingResponse результат отмены бронирования
type CancelBookingResponse struct {
	Status         string `json:"status"`
	PenaltyApplied bool   `json:"penaltyApplied"`
	PromotedUsers  int    `json:"promotedUsers"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		Status:         "cancelled",
		PenaltyApplied: resp.PenaltyApplied,
		PromotedUsers:  resp.PromotedUsers,
	}
}
