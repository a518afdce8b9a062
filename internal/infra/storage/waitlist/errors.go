package waitlist

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrEntryNotFound возвращается, когда запись в очереди не найдена
	ErrEntryNotFound = errors.New("waitlist.repository: entry not found")

	// ErrAlreadyQueued возвращается при попытке повторно встать в очередь
	// той же станции
	ErrAlreadyQueued = errors.New("waitlist.repository: user already queued for station")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("waitlist.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("waitlist.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("waitlist.repository: failed to scan row")
)

// pq код ошибки unique_violation
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}
