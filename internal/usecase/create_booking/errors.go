package create_booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidTimeRange возвращается, когда end <= start
	ErrInvalidTimeRange = errors.New("create_booking: invalid time range")

	// ErrStationNotFound возвращается, когда станция не найдена
	ErrStationNotFound = errors.New("create_booking: station not found")

	// ErrUserBlocked возвращается, когда пользователь заблокирован штрафами
	ErrUserBlocked = errors.New("create_booking: user is blocked")

	// ErrConflict возвращается, когда конкурентное изменение не дало
	// завершить транзакцию даже после повторов
	ErrConflict = errors.New("create_booking: concurrent modification conflict")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// UserBlockedError ошибка блокировки с временем её окончания
type UserBlockedError struct {
	Until time.Time
}

func (e *UserBlockedError) Error() string {
	return fmt.Sprintf("create_booking: user is blocked until %s", e.Until.Format(time.RFC3339))
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrUserBlocked)
func (e *UserBlockedError) Unwrap() error {
	return ErrUserBlocked
}
