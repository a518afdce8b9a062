package penalty

import "errors"

var (
	// ErrPenaltyNotFound возвращается, когда у пользователя нет записи штрафов
	ErrPenaltyNotFound = errors.New("penalty service: penalty record not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("penalty service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("penalty service: internal error")
)
