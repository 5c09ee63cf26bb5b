package bus

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscriber is implemented by objects that declare event handler methods.
// EventHandlers returns method values such as l.OnAlert; each must take
// exactly one Payload parameter and return nothing or an error.
type Subscriber interface {
	EventHandlers() []any
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// RegisterObject registers every handler declared by obj.
//
// A nil obj fails with ErrInvalidArgument. An obj that does not implement
// Subscriber declares no handlers and registers nothing. All declared
// handlers are validated before any is inserted, so a *SignatureError or
// *TypeConstraintError leaves the table unchanged.
func (b *Bus) RegisterObject(obj any) ([]*Handler, error) {
	if isNil(obj) {
		return nil, fmt.Errorf("%w: handler object cannot be nil", ErrInvalidArgument)
	}
	sub, ok := obj.(Subscriber)
	if !ok {
		b.logger.Debug("object declares no event handlers", zap.String("type", fmt.Sprintf("%T", obj)))
		return nil, nil
	}

	decls := sub.EventHandlers()
	hs := make([]*Handler, 0, len(decls))
	for _, decl := range decls {
		h, err := bind(decl)
		if err != nil {
			return nil, fmt.Errorf("register %T: %w", obj, err)
		}
		hs = append(hs, h)
	}

	b.mu.Lock()
	for _, h := range hs {
		b.table.add(h.kind, h)
	}
	b.mu.Unlock()

	for _, h := range hs {
		b.logger.Debug("handler registered",
			zap.Stringer("kind", h.kind),
			zap.String("handler", h.name),
			zap.Stringer("source", h.source),
		)
	}
	return hs, nil
}

// bind validates a declared handler and wraps it for late-bound invocation.
func bind(decl any) (*Handler, error) {
	fn := reflect.ValueOf(decl)
	name := funcName(fn)
	if fn.Kind() != reflect.Func {
		return nil, &SignatureError{Method: fmt.Sprintf("%T", decl), Reason: "not a function"}
	}
	if fn.IsNil() {
		return nil, &SignatureError{Method: name, Reason: "nil function"}
	}

	ft := fn.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() {
		return nil, &SignatureError{
			Method: name,
			Reason: fmt.Sprintf("must take exactly one parameter, takes %d", ft.NumIn()),
		}
	}
	returnsErr := false
	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
		returnsErr = true
	default:
		return nil, &SignatureError{Method: name, Reason: "must return nothing or a single error"}
	}

	param := ft.In(0)
	if !param.Implements(payloadType) {
		return nil, &TypeConstraintError{Method: name, Type: param}
	}

	return &Handler{
		id:     uuid.New(),
		kind:   kindOfType(param),
		name:   name,
		source: Bound,
		call: func(p Payload) error {
			arg := reflect.Zero(param)
			if p != nil {
				arg = reflect.ValueOf(p)
			}
			out := fn.Call([]reflect.Value{arg})
			if returnsErr && !out[0].IsNil() {
				return out[0].Interface().(error)
			}
			return nil
		},
	}, nil
}

func isNil(obj any) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
