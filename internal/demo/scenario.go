package demo

import (
	"errors"
	"fmt"
	"io"

	"github.com/matheus3301/evbus/internal/bus"
)

// Run replays the demo scenario against b, writing a transcript to w:
// direct registration, firing a base and an embedding event, firing through
// the base and the Payload static types, object registration, lookup and
// direct invocation, then resetting a kind and searching for a handler that
// is gone.
func Run(b *bus.Bus, w io.Writer) error {
	bus.RegisterFunc(b, func(n Notice) { fmt.Fprintf(w, "received %s\n", n.Name) })
	bus.RegisterFunc(b, func(a Alert) { fmt.Fprintf(w, "received %s\n", a.Name) })
	bus.RegisterFunc(b, take(w))

	// A handler kept by reference so it can be looked up later.
	kept := bus.NewHandlerFunc(take(w))
	if err := b.AddHandlers(bus.KindOf[Notice](), kept); err != nil {
		return err
	}

	notice := NewNotice()
	alert := NewAlert()

	if err := fire(w, "notice", func() (int, error) { return bus.Fire(b, notice) }); err != nil {
		return err
	}
	if err := fire(w, "alert", func() (int, error) { return bus.Fire(b, alert) }); err != nil {
		return err
	}
	// The embedded Notice is a Notice: it reaches Notice handlers only.
	if err := fire(w, "alert as notice", func() (int, error) { return bus.Fire(b, alert.Notice) }); err != nil {
		return err
	}
	// Static type Payload: neither Notice nor Alert handlers run.
	if err := fire(w, "alert as payload", func() (int, error) { return bus.Fire[bus.Payload](b, alert) }); err != nil {
		return err
	}

	listener := NewListener(w)
	if _, err := b.RegisterObject(listener); err != nil {
		return fmt.Errorf("register listener: %w", err)
	}
	if err := fire(w, "alert", func() (int, error) { return bus.Fire(b, alert) }); err != nil {
		return err
	}

	found, ok := b.Find(bus.KindOf[Notice](), kept)
	if !ok {
		return errors.New("kept handler not found")
	}
	fmt.Fprintf(w, "found %s\n", found.Kind())
	if err := found.Invoke(notice); err != nil {
		return err
	}

	if err := b.SetHandlers(bus.KindOf[Notice](), nil); err != nil {
		return err
	}
	fmt.Fprintf(w, "notice handlers after reset: %d\n", len(b.Handlers(bus.KindOf[Notice]())))

	_, inKind := b.Find(bus.KindOf[Notice](), kept)
	_, anywhere := b.FindAny(kept)
	fmt.Fprintf(w, "kept handler registered: %t/%t\n", inKind, anywhere)

	return fire(w, "notice", func() (int, error) { return bus.Fire(b, notice) })
}

func take(w io.Writer) func(Notice) {
	return func(n Notice) { fmt.Fprintf(w, "take %s\n", n.Name) }
}

func fire(w io.Writer, label string, do func() (int, error)) error {
	n, err := do()
	if err != nil {
		return fmt.Errorf("fire %s: %w", label, err)
	}
	fmt.Fprintf(w, "fired %s: %d handlers\n", label, n)
	return nil
}
