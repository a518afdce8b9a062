package mailservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("mailservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("mailservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation.
	// Указывает, что почтовый сервис недоступен; письмо теряется, push-канал
	// остаётся основным
	ErrServiceDegraded = errors.New("mailservice unavailable: graceful degradation applied")
)
