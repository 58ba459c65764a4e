package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// annotatedError includes more context than a plain error that is useful for troubleshooting.
type annotatedError struct {
	// msg is the error message.
	msg string
	// cause is the wrapped error, nil for errors created with New.
	cause error
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are slog attributes that are added to the log event to provide more context for the error.
	attrs []slog.Attr
}

func callerPC() uintptr {
	var pcs [1]uintptr
	// Skip runtime.Callers, callerPC and the exported constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above
	return pcs[0]
}

// New creates a new error with the given message and attributes. The call site is recorded for logging.
func New(msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:   msg,
		cause: nil,
		pc:    callerPC(),
		attrs: attrs,
	}
}

// Wrap adds a message and attributes to err. Wrapping a nil error returns nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &annotatedError{
		msg:   msg,
		cause: err,
		pc:    callerPC(),
		attrs: attrs,
	}
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be detected
// with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg) //nolint:err113 // this is the sentinel constructor
}

// Error implements error interface.
func (err *annotatedError) Error() string {
	if err.cause == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.msg, err.cause.Error())
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (err *annotatedError) Unwrap() error {
	return err.cause
}

func (err *annotatedError) source() string {
	frames := runtime.CallersFrames([]uintptr{err.pc})
	frame, _ := frames.Next()
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}

// LogValue formats the error for useful logging.
func (err *annotatedError) LogValue() slog.Value {
	attrs := append(
		[]slog.Attr{slog.String("msg", err.Error()), slog.String("source", err.source())},
		collectAttrs(err)...,
	)
	return slog.GroupValue(attrs...)
}

// collectAttrs gathers the attributes of every annotated error in the chain, outermost first.
func collectAttrs(err error) []slog.Attr {
	var attrs []slog.Attr
	for err != nil {
		var annotated *annotatedError
		if !errors.As(err, &annotated) {
			break
		}
		attrs = append(attrs, annotated.attrs...)
		err = annotated.cause
	}
	return attrs
}

// SlogError returns a slog attribute under the "error" key that logs the whole error chain with its attributes.
func SlogError(err error) slog.Attr {
	var annotated *annotatedError
	if errors.As(err, &annotated) {
		return slog.Attr{Key: "error", Value: annotated.LogValue()}
	}
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
