package bus

import (
	"time"

	"github.com/google/uuid"
)

// Observer is notified once per Fire, after dispatch finished or failed.
// Fires of kinds without handlers are observed too.
type Observer interface {
	ObserveFire(rec FireRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FireRecord)

// ObserveFire calls f(rec).
func (f ObserverFunc) ObserveFire(rec FireRecord) { f(rec) }

// FireRecord describes a single Fire call.
type FireRecord struct {
	ID        uuid.UUID
	Kind      Kind
	EventName string
	Handlers  int // registered for the kind when Fire started
	Invoked   int // including a failing handler
	Err       error
	Duration  time.Duration
	FiredAt   time.Time
}
