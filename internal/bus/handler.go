package bus

import (
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
)

// Source records how a handler was created.
type Source int

const (
	// Direct handlers come from a typed function passed to Register.
	Direct Source = iota
	// Bound handlers come from a method declared by a Subscriber.
	Bound
)

func (s Source) String() string {
	switch s {
	case Direct:
		return "direct"
	case Bound:
		return "bound"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Handler is a callable bound to exactly one Kind.
// Handlers are compared by pointer: Find and Remove match the *Handler
// returned at registration, not functions with the same body.
type Handler struct {
	id     uuid.UUID
	kind   Kind
	name   string
	source Source
	call   func(Payload) error
}

// NewHandler wraps fn as a handler of kind T without registering it.
func NewHandler[T Payload](fn func(T) error) *Handler {
	if fn == nil {
		panic("bus: nil handler func")
	}
	return &Handler{
		id:     uuid.New(),
		kind:   KindOf[T](),
		name:   funcName(reflect.ValueOf(fn)),
		source: Direct,
		call: func(p Payload) error {
			if p == nil {
				var zero T
				return fn(zero)
			}
			return fn(p.(T))
		},
	}
}

// NewHandlerFunc is NewHandler for handlers that cannot fail.
func NewHandlerFunc[T Payload](fn func(T)) *Handler {
	if fn == nil {
		panic("bus: nil handler func")
	}
	h := NewHandler(func(ev T) error {
		fn(ev)
		return nil
	})
	h.name = funcName(reflect.ValueOf(fn))
	return h
}

// ID returns the handler's unique identifier.
func (h *Handler) ID() uuid.UUID { return h.id }

// Kind returns the kind the handler is bound to.
func (h *Handler) Kind() Kind { return h.kind }

// Name returns the function or method name backing the handler.
func (h *Handler) Name() string { return h.name }

// Source reports whether the handler is direct or bound.
func (h *Handler) Source() Source { return h.source }

func (h *Handler) String() string {
	return fmt.Sprintf("%s(%s) [%s]", h.name, h.kind, h.source)
}

// Invoke calls the handler with p outside of any Fire.
// A payload not assignable to the handler's kind yields ErrKindMismatch.
func (h *Handler) Invoke(p Payload) error {
	if h == nil {
		return ErrInvalidArgument
	}
	if !h.kind.accepts(p) {
		return fmt.Errorf("%w: handler %s takes %s, got %T", ErrKindMismatch, h.name, h.kind, p)
	}
	return h.invoke(p)
}

// invoke runs the handler, converting returned errors and panics into a
// *HandlerError.
func (h *Handler) invoke(p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = &HandlerError{
				Kind:      h.kind,
				Handler:   h.name,
				HandlerID: h.id,
				Err:       cause,
				Panic:     r,
				Stack:     string(debug.Stack()),
			}
		}
	}()
	if callErr := h.call(p); callErr != nil {
		return &HandlerError{
			Kind:      h.kind,
			Handler:   h.name,
			HandlerID: h.id,
			Err:       callErr,
		}
	}
	return nil
}

// funcName returns a readable name for a func value, e.g.
// "demo.(*Listener).OnAlert" for a method value.
func funcName(v reflect.Value) string {
	if v.Kind() != reflect.Func || v.IsNil() {
		return "<nil>"
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return "<unknown>"
	}
	name := strings.TrimSuffix(fn.Name(), "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
