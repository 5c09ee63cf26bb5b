package bus

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

var (
	// ErrInvalidArgument is returned for nil objects and nil handlers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrKindMismatch is returned when a handler is placed under, or invoked
	// with, a kind it was not bound to.
	ErrKindMismatch = errors.New("event kind mismatch")

	// ErrHandlerPanic matches a HandlerError produced by a panicking handler.
	ErrHandlerPanic = errors.New("handler panicked")
)

// SignatureError is returned when a declared handler method does not take
// exactly one parameter or returns something other than nothing or an error.
type SignatureError struct {
	Method string
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid event handler %s: %s", e.Method, e.Reason)
}

// TypeConstraintError is returned when a declared handler method's parameter
// does not implement Payload.
type TypeConstraintError struct {
	Method string
	Type   reflect.Type
}

func (e *TypeConstraintError) Error() string {
	return fmt.Sprintf("event handler %s: parameter type %s does not implement bus.Payload", e.Method, e.Type)
}

// HandlerError wraps a failure raised by a handler during Fire or Invoke.
type HandlerError struct {
	Kind      Kind
	Handler   string
	HandlerID uuid.UUID

	// Err is the returned error, or a synthesized one when the handler panicked.
	Err error

	// Panic holds the recovered value; nil when the handler returned an error.
	Panic any
	Stack string
}

func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("handler %s for %s panicked: %v", e.Handler, e.Kind, e.Panic)
	}
	return fmt.Sprintf("handler %s for %s: %v", e.Handler, e.Kind, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrHandlerPanic) for panicking handlers.
func (e *HandlerError) Is(target error) bool {
	return target == ErrHandlerPanic && e.Panic != nil
}
