package waitlist

import "errors"

var (
	// ErrNotQueued возвращается, когда пользователь не стоит в очереди станции
	ErrNotQueued = errors.New("waitlist service: user is not queued for this station")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("waitlist service: internal error")
)
