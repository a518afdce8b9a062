package scheduler

import "errors"

var (
	// ErrAlreadyStarted планировщик уже запущен
	ErrAlreadyStarted = errors.New("scheduler: already started")
)
