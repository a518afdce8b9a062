package cancel_booking

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64 // ID бронирования
	UserID    int64 // ID пользователя, выполняющего отмену
}

// Response результат отмены
type Response struct {
	PenaltyApplied bool // true, если отмена была поздней и начислен штрафной балл
	PromotedUsers  int  // сколько пользователей продвинуто из очереди
}
