package config

import (
	"errors"
	"fmt"
)

// InvalidConfigurationError reports a key whose value fails its rule.
type InvalidConfigurationError struct {
	Key   string
	Cause *ValidationError
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("%s is not valid: %s", e.Key, e.Cause.Reason)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return e.Cause
}

// MissingConfigurationError reports a required key that has neither a value
// nor a default.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("%s is not set", e.Key)
}

// IsInvalid reports whether err wraps an InvalidConfigurationError.
func IsInvalid(err error) bool {
	var target *InvalidConfigurationError
	return errors.As(err, &target)
}

// IsMissing reports whether err wraps a MissingConfigurationError.
func IsMissing(err error) bool {
	var target *MissingConfigurationError
	return errors.As(err, &target)
}
