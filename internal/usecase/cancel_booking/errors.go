package cancel_booking

import "errors"

var (
	// ErrInvalidInput невалидные входные данные
	ErrInvalidInput = errors.New("cancel_booking: invalid input")

	// ErrBookingNotFound бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrAccessDenied бронирование принадлежит другому пользователю
	ErrAccessDenied = errors.New("cancel_booking: access denied")

	// ErrNotActive бронирование уже завершено или отменено
	ErrNotActive = errors.New("cancel_booking: booking is not active")

	// ErrAlreadyStarted окно зарядки уже началось, отмена невозможна
	ErrAlreadyStarted = errors.New("cancel_booking: booking already started")

	// ErrConflict конфликт конкурентного доступа, запрос стоит повторить
	ErrConflict = errors.New("cancel_booking: concurrent modification conflict")

	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = errors.New("cancel_booking: internal error")
)
