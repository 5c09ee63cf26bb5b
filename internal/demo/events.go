package demo

import (
	"fmt"
	"io"
)

// Notice is the base demo event.
type Notice struct {
	Name string
}

// NewNotice returns a Notice named "Notice".
func NewNotice() Notice { return Notice{Name: "Notice"} }

func (n Notice) EventName() string { return n.Name }

// Alert embeds Notice and shadows its Name field. It is a kind of its own:
// handlers registered for Notice never see an Alert, and Alert handlers never
// see the embedded Notice.
type Alert struct {
	Notice
	Name string
}

// NewAlert returns an Alert named "Alert" whose embedded Notice keeps the
// name "Notice".
func NewAlert() Alert {
	return Alert{Notice: NewNotice(), Name: "Alert"}
}

func (a Alert) EventName() string { return a.Name }

// Listener declares its handler methods through EventHandlers.
type Listener struct {
	out    io.Writer
	Alerts int
}

// NewListener returns a Listener reporting to out.
func NewListener(out io.Writer) *Listener {
	return &Listener{out: out}
}

// OnAlert counts alerts.
func (l *Listener) OnAlert(a Alert) {
	l.Alerts++
	fmt.Fprintf(l.out, "listener got %s #%d\n", a.Name, l.Alerts)
}

// EventHandlers implements bus.Subscriber.
func (l *Listener) EventHandlers() []any {
	return []any{l.OnAlert}
}
