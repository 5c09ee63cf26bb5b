package bus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bus is an in-process, synchronous event bus keyed by exact event type.
// Each Bus owns its handler table; there is no package-level default bus.
type Bus struct {
	mu       sync.RWMutex
	table    *table
	logger   *zap.Logger
	observer Observer
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for registrations and handler failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver sets an observer notified after every Fire.
func WithObserver(o Observer) Option {
	return func(b *Bus) { b.observer = o }
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		table:  newTable(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds fn as a handler for events of kind T and returns it.
func Register[T Payload](b *Bus, fn func(T) error) *Handler {
	h := NewHandler(fn)
	b.add(h)
	return h
}

// RegisterFunc is Register for handlers that cannot fail.
func RegisterFunc[T Payload](b *Bus, fn func(T)) *Handler {
	h := NewHandlerFunc(fn)
	b.add(h)
	return h
}

func (b *Bus) add(h *Handler) {
	b.mu.Lock()
	b.table.add(h.kind, h)
	b.mu.Unlock()
	b.logger.Debug("handler registered",
		zap.Stringer("kind", h.kind),
		zap.String("handler", h.name),
		zap.Stringer("source", h.source),
	)
}

// Handlers returns a snapshot of the handlers registered for k, in
// registration order. It returns nil for a kind with no handlers.
func (b *Bus) Handlers(k Kind) []*Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.get(k)
}

// SetHandlers replaces the whole sequence for k. An empty hs clears the kind.
func (b *Bus) SetHandlers(k Kind, hs []*Handler) error {
	if err := checkHandlers(k, hs); err != nil {
		return err
	}
	b.mu.Lock()
	b.table.set(k, hs)
	b.mu.Unlock()
	return nil
}

// AddHandlers appends hs to the sequence for k.
func (b *Bus) AddHandlers(k Kind, hs ...*Handler) error {
	if err := checkHandlers(k, hs); err != nil {
		return err
	}
	b.mu.Lock()
	b.table.add(k, hs...)
	b.mu.Unlock()
	return nil
}

// ClearHandlers removes every handler registered for k.
func (b *Bus) ClearHandlers(k Kind) {
	b.mu.Lock()
	b.table.set(k, nil)
	b.mu.Unlock()
}

// Find returns h if it is registered under k.
func (b *Bus) Find(k Kind, h *Handler) (*Handler, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.find(k, h)
}

// FindAny searches every kind, in first-registration order, for h.
func (b *Bus) FindAny(h *Handler) (*Handler, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.findAny(h)
}

// Remove unregisters every occurrence of h and returns how many were removed.
func (b *Bus) Remove(h *Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table.remove(h)
}

// Kinds returns every kind that has ever been registered or set, in
// first-registration order.
func (b *Bus) Kinds() []Kind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.kinds()
}

// Len returns the total number of registered handlers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.count()
}

func checkHandlers(k Kind, hs []*Handler) error {
	for i, h := range hs {
		if h == nil {
			return fmt.Errorf("%w: handler %d is nil", ErrInvalidArgument, i)
		}
		if h.kind != k {
			return fmt.Errorf("%w: handler %s is bound to %s, not %s", ErrKindMismatch, h.name, h.kind, k)
		}
	}
	return nil
}

// Fire dispatches ev to every handler registered for the static type T and
// returns the number of handlers that were registered for it.
//
// The kind is taken from the type argument at the call site, not from the
// dynamic type of ev: Fire[Payload](b, alert) reaches Payload handlers only,
// never handlers registered for the concrete type of alert.
//
// Handlers run in registration order on the calling goroutine. The first
// handler that returns an error or panics stops dispatch; its *HandlerError
// is logged and returned together with the number of handlers invoked so far,
// the failing one included.
func Fire[T Payload](b *Bus, ev T) (int, error) {
	kind := KindOf[T]()
	start := time.Now()

	b.mu.RLock()
	hs := b.table.get(kind)
	b.mu.RUnlock()

	invoked, err := b.dispatch(kind, ev, hs)

	if b.observer != nil {
		b.observer.ObserveFire(FireRecord{
			ID:        uuid.New(),
			Kind:      kind,
			EventName: eventName(ev),
			Handlers:  len(hs),
			Invoked:   invoked,
			Err:       err,
			Duration:  time.Since(start),
			FiredAt:   start,
		})
	}

	if err != nil {
		return invoked, err
	}
	return len(hs), nil
}

func (b *Bus) dispatch(kind Kind, ev Payload, hs []*Handler) (int, error) {
	for i, h := range hs {
		if err := h.invoke(ev); err != nil {
			fields := []zap.Field{
				zap.Stringer("kind", kind),
				zap.String("handler", h.name),
				zap.Stringer("handler_id", h.id),
				zap.Int("position", i),
				zap.Error(err),
			}
			if herr, ok := err.(*HandlerError); ok && herr.Stack != "" {
				fields = append(fields, zap.String("stack", herr.Stack))
			}
			b.logger.Error("event handler failed", fields...)
			return i + 1, err
		}
	}
	return len(hs), nil
}

// eventName reads ev's descriptor, tolerating nil payloads.
func eventName(ev Payload) (name string) {
	if ev == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	return ev.EventName()
}
