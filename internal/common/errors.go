// File path: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
)

// ConfigError reports a required setting that is absent or unusable. It is
// raised before any network call is attempted, so callers can distinguish a
// deployment problem from an upstream failure.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration error: %s (%s)", e.Setting, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s is not set", e.Setting)
}

// MissingConfig builds a ConfigError for an unset setting.
func MissingConfig(setting string) error {
	return ConfigError{Setting: setting}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce ConfigError
	return errors.As(err, &ce)
}
