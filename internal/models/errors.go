package models

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is wrapped by every [ConfigurationError].
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNumericalInstability is wrapped by every [NumericalInstabilityError].
	ErrNumericalInstability = errors.New("numerical instability")
)

// ConfigurationError reports invalid input detected before any numerical
// work starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Configf builds a ConfigurationError with a formatted reason.
func Configf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NumericalInstabilityError aborts a run whose conservation invariant
// S+I+R+D = N broke beyond tolerance, or whose solver could not make
// progress.
type NumericalInstabilityError struct {
	Step     int
	Time     float64
	Total    float64
	Expected float64
	Reason   string
}

func (e *NumericalInstabilityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s at step %d (t=%g): %s", ErrNumericalInstability, e.Step, e.Time, e.Reason)
	}
	return fmt.Sprintf("%s at step %d (t=%g): population %g drifted from %g by %g",
		ErrNumericalInstability, e.Step, e.Time, e.Total, e.Expected, e.Total-e.Expected)
}

func (e *NumericalInstabilityError) Unwrap() error {
	return ErrNumericalInstability
}

// NumericalWarning annotates a sample whose compartment went negative
// because of discretization error and was clamped to zero.
type NumericalWarning struct {
	Step        int         `json:"step"`
	Time        float64     `json:"time"`
	Compartment Compartment `json:"compartment"`
	Value       float64     `json:"value"`
}

func (w NumericalWarning) String() string {
	return fmt.Sprintf("step %d (t=%g): %s clamped from %g to 0", w.Step, w.Time, w.Compartment, w.Value)
}
