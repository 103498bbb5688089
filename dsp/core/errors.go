package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every construction-time validation
	// failure. Match it with errors.Is.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrContractViolation is returned when a caller hands a component a
	// chunk that does not match its fixed configuration.
	ErrContractViolation = errors.New("contract violation")
)

// ConfigError describes one rejected configuration value.
type ConfigError struct {
	Component string
	Field     string
	Value     any
	Reason    string
}

// NewConfigError returns a *ConfigError for component.field.
func NewConfigError(component, field string, value any, reason string) *ConfigError {
	return &ConfigError{
		Component: component,
		Field:     field,
		Value:     value,
		Reason:    reason,
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Component, e.Field, e.Reason, e.Value)
}

// Unwrap makes errors.Is(err, ErrConfiguration) hold for every ConfigError.
func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// CheckLength returns an ErrContractViolation if got != want.
func CheckLength(component, what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s %s has %d samples, want %d",
			ErrContractViolation, component, what, got, want)
	}
	return nil
}
