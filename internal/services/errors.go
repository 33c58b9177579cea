package services

import "errors"

// Service errors
var (
	ErrUnknownKey = errors.New("key not found in schema")
	ErrNotReady   = errors.New("required configuration is not resolved")
)
