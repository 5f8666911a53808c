package task

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by the execution service matches exactly one.
var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrTaskNotFound      = errors.New("task not found")
	ErrSource            = errors.New("source error")
	ErrExecution         = errors.New("execution failed")
	ErrOutput            = errors.New("output error")
)

// Error is a failed task execution. errors.Is matches both Kind and the cause.
type Error struct {
	Task string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("task %s: %v: %v", e.Task, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

// Errorf builds an *Error of the given kind; the format may use %w.
func Errorf(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err under kind unless it already is an *Error.
func Wrap(name string, kind error, err error) *Error {
	var te *Error
	if errors.As(err, &te) {
		if te.Task == "" {
			te.Task = name
		}
		return te
	}
	return &Error{Task: name, Kind: kind, Err: err}
}
