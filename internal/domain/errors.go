package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals malformed or out-of-range connector input.
	ErrValidation = errors.New("validation failed")
	// ErrTransport signals a failed outbound call (non-2xx, timeout, connection error).
	ErrTransport = errors.New("transport failure")
	// ErrConfiguration signals missing or invalid connector configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyResponse signals a 2xx response without a usable payload.
	ErrEmptyResponse = errors.New("empty response")
)

// ConfigurationError names the connector and setting that made it unusable.
type ConfigurationError struct {
	Connector string
	Setting   string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrConfiguration.Error(), e.Connector, e.Setting, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// NewConfigurationError creates a configuration error for a connector setting.
func NewConfigurationError(connector, setting, reason string) error {
	return &ConfigurationError{Connector: connector, Setting: setting, Reason: reason}
}

// StatusError carries an HTTP status returned by an upstream service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// ValidationError marks an error as a validation failure while keeping its message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

// Invalid wraps err as a ValidationError.
func Invalid(err error) error {
	return &ValidationError{Err: err}
}
