package core

import (
	"errors"
	"fmt"
)

var ErrMissingPlaceholder = errors.New("missing placeholder")

// ConfigurationError is a missing or invalid setting. It is always raised
// before any script is written.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// RenderError means a template could not be rendered against its parameters.
type RenderError struct {
	Template    string
	Placeholder string
	Err         error
}

func (e *RenderError) Error() string {
	if e.Placeholder != "" {
		return fmt.Sprintf("render: template %q: %v %q", e.Template, e.Err, e.Placeholder)
	}
	return fmt.Sprintf("render: template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IOFailure wraps a filesystem error with the operation and offending path.
type IOFailure struct {
	Op   string
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("io: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOFailure) Unwrap() error { return e.Err }
