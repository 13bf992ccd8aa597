package errdefs

import (
	"errors"
	"fmt"
	"time"
)

type ErrorType int

const (
	ErrTypeUnsupportedPlatform ErrorType = iota
	ErrTypeInvalidArchitecture
	ErrTypeUnsupportedDistribution
	ErrTypeInvalidConfig
	ErrTypeDependencyInstall
	ErrTypeGeneric
)

type CustomError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(errType ErrorType, message string) error {
	return &CustomError{
		Type:    errType,
		Message: message,
	}
}

func WrapCustomError(errType ErrorType, message string, err error) error {
	return &CustomError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err wraps a CustomError of the given type.
func IsType(err error, errType ErrorType) bool {
	var ce *CustomError
	return errors.As(err, &ce) && ce.Type == errType
}

// StepError terminates an installation run. Completed holds the names of the
// steps that finished before Step failed, in execution order.
type StepError struct {
	Step      string
	Completed []string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ReadinessTimeoutError is returned when an endpoint never answered within
// its allotted window.
type ReadinessTimeoutError struct {
	Endpoint string
	Timeout  time.Duration
	LastErr  error
}

func (e *ReadinessTimeoutError) Error() string {
	msg := fmt.Sprintf("service at %s did not become ready within %s", e.Endpoint, e.Timeout)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.LastErr)
	}
	return msg
}

func (e *ReadinessTimeoutError) Unwrap() error {
	return e.LastErr
}
