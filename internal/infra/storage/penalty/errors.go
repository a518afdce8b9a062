package penalty

import "errors"

var (
	// ErrPenaltyNotFound возвращается, когда у пользователя нет записи штрафов
	ErrPenaltyNotFound = errors.New("penalty.repository: penalty record not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("penalty.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("penalty.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("penalty.repository: failed to scan row")
)
