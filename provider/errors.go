package provider

import (
	"errors"
	"fmt"
)

// ConfigError reports missing or malformed provider credentials at
// construction time.
type ConfigError struct {
	Provider string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// ValidationError reports a malformed request or basket field. It is
// raised before any network I/O and always names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// OperationError reports a failed refund or transaction query: either a
// missing identifier or a non-2xx provider response. StatusCode is zero
// when the call never reached the provider.
type OperationError struct {
	Provider   string
	Op         string
	StatusCode int
	Message    string
	Raw        []byte
}

func (e *OperationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s failed with HTTP %d: %s", e.Provider, e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s failed: %s", e.Provider, e.Op, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsOperationError reports whether err is (or wraps) an OperationError.
func IsOperationError(err error) bool {
	var oe *OperationError
	return errors.As(err, &oe)
}
