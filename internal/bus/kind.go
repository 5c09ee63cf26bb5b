package bus

import "reflect"

// Payload is the capability every event value must satisfy.
type Payload interface {
	EventName() string
}

// Named is an embeddable Payload implementation carrying a descriptive name.
type Named struct {
	Name string
}

// EventName returns the descriptor.
func (n Named) EventName() string { return n.Name }

// Kind identifies an event category by its exact Go type.
// Two kinds are equal only when they denote the same type: a struct type, a
// pointer to it and an interface it implements are three different kinds.
type Kind struct {
	t reflect.Type
}

var payloadType = reflect.TypeOf((*Payload)(nil)).Elem()

// KindOf returns the kind of the static type argument T.
func KindOf[T Payload]() Kind {
	return Kind{t: reflect.TypeOf((*T)(nil)).Elem()}
}

func kindOfType(t reflect.Type) Kind {
	return Kind{t: t}
}

// String returns the qualified type name, e.g. "demo.Alert".
func (k Kind) String() string {
	if k.t == nil {
		return "<none>"
	}
	return k.t.String()
}

// IsZero reports whether k is the zero Kind.
func (k Kind) IsZero() bool { return k.t == nil }

// accepts reports whether p may be passed to a handler of kind k.
func (k Kind) accepts(p Payload) bool {
	if k.t == nil {
		return false
	}
	if p == nil {
		return k.t.Kind() == reflect.Interface
	}
	return reflect.TypeOf(p).AssignableTo(k.t)
}
