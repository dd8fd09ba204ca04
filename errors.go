package luhn

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrRead indicates the line source failed.
	ErrRead = errors.New("read failed")

	// ErrWrite indicates the line sink failed.
	ErrWrite = errors.New("write failed")

	// ErrTask indicates a worker failed while masking a line.
	ErrTask = errors.New("mask task failed")

	// ErrInvalidTag indicates a struct tag has an invalid value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrInvalidConfig indicates an invalid pipeline or CLI setting.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrRedact indicates a struct field could not be redacted.
	ErrRedact = errors.New("redact failed")
)

// PipelineError reports a failure tied to one input line.
type PipelineError struct {
	Err   error // Underlying sentinel error (ErrRead, ErrWrite, ErrTask)
	Line  int   // Zero-based line number, -1 when unknown
	Cause error // Original error from the source, sink or worker
}

func (e *PipelineError) Error() string {
	prefix := e.Err.Error()
	if e.Line >= 0 {
		prefix = fmt.Sprintf("%s at line %d", prefix, e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Cause)
	}
	return prefix
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid setting or struct tag.
type ConfigError struct {
	Err   error  // Underlying sentinel error (ErrInvalidTag, ErrInvalidConfig)
	Field string // Field or setting name
	Value string // Offending value
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s %q (field %s)", e.Err.Error(), e.Value, e.Field)
	}
	if e.Value != "" {
		return fmt.Sprintf("%s %q", e.Err.Error(), e.Value)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (field %s)", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// newPipelineError creates a PipelineError for a failed line.
func newPipelineError(sentinel error, line int, cause error) error {
	return &PipelineError{
		Err:   sentinel,
		Line:  line,
		Cause: cause,
	}
}

// newConfigError creates a ConfigError for an invalid setting.
func newConfigError(sentinel error, field, value string) error {
	return &ConfigError{
		Err:   sentinel,
		Field: field,
		Value: value,
	}
}

// NewConfigError creates a ConfigError wrapping ErrInvalidConfig.
func NewConfigError(field, value string) error {
	return newConfigError(ErrInvalidConfig, field, value)
}
