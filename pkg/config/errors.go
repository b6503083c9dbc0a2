package config

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrValidationFailed   = errors.New("config validation failed")
	ErrNilConfig          = errors.New("config cannot be nil")
	ErrMergeFailed        = errors.New("failed to merge configs")
)
