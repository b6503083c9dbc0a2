package sentry

import "errors"

var (
	ErrNilConfig     = errors.New("sentry: config is nil")
	ErrInvalidConfig = errors.New("sentry: invalid config")
)
