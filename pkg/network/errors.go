package network

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every configuration error. Configuration
// errors abort a run; they are never absorbed as orphan findings.
var ErrConfiguration = errors.New("network configuration error")

// Configuration failures raised by the trace engine.
var (
	ErrNoSourceCommodities = errors.New("no source commodities declared")
	ErrNoDemandCommodities = errors.New("no demand commodities declared")
	ErrAmbiguousLinkedTech = errors.New("driven linked tech has more than one input commodity")
	ErrDrivenWithoutDriver = errors.New("driven linked tech is active without its driver")
)

// ErrRegionMismatch is returned when a tech is filed under another region's key.
var ErrRegionMismatch = errors.New("tech region does not match its key")

// ConfigError carries the location of a configuration failure.
type ConfigError struct {
	Op      string // operation that failed (e.g., "trace.New", "resolveLinkedTechs")
	Region  string
	Period  int
	Tech    string // offending technology, if any
	Cause   error
	Context string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	loc := e.Region
	if e.Period != 0 {
		loc = fmt.Sprintf("%s/%d", e.Region, e.Period)
	}
	msg := fmt.Sprintf("%s [%s]", e.Op, loc)
	if e.Tech != "" {
		msg += fmt.Sprintf(" tech %s", e.Tech)
	}
	if e.Context != "" {
		msg += fmt.Sprintf(" (%s)", e.Context)
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match both the specific cause and ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	if target == nil {
		return false
	}
	if target == ErrConfiguration {
		return true
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building ConfigErrors.
type ErrorBuilder struct {
	err ConfigError
}

// NewConfigError starts a ConfigError for the given operation.
func NewConfigError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: ConfigError{Op: op}}
}

// At sets the region and period.
func (b *ErrorBuilder) At(region string, period int) *ErrorBuilder {
	b.err.Region = region
	b.err.Period = period
	return b
}

// Tech names the offending technology.
func (b *ErrorBuilder) Tech(name string) *ErrorBuilder {
	b.err.Tech = name
	return b
}

// Context adds free-form detail.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error and returns the built error.
func (b *ErrorBuilder) Cause(cause error) error {
	b.err.Cause = cause
	e := b.err
	return &e
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
