package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64     // ID пользователя
	StationID int64     // ID станции
	StartTime time.Time // Начало окна зарядки (UTC)
	EndTime   time.Time // Конец окна зарядки (UTC)
}

// BookingResult созданное бронирование
type BookingResult struct {
	ID        int64
	StationID int64
	StartTime time.Time
	EndTime   time.Time
	Status    string
	CreatedAt time.Time
}

// WaitlistResult позиция в очереди, когда свободных слотов нет
type WaitlistResult struct {
	Position             int
	EstimatedWaitMinutes int
	AlreadyQueued        bool // true, если пользователь уже стоял в очереди
}

// Response результат: либо бронирование, либо позиция в очереди
type Response struct {
	Booking  *BookingResult
	Waitlist *WaitlistResult
}
