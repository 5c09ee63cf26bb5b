package demo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matheus3301/evbus/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTranscript(t *testing.T) {
	var out bytes.Buffer
	b := bus.New()
	require.NoError(t, Run(b, &out))

	want := []string{
		"received Notice",
		"take Notice",
		"take Notice",
		"fired notice: 3 handlers",
		"received Alert",
		"fired alert: 1 handlers",
		"received Notice",
		"take Notice",
		"take Notice",
		"fired alert as notice: 3 handlers",
		"fired alert as payload: 0 handlers",
		"received Alert",
		"listener got Alert #1",
		"fired alert: 2 handlers",
		"found demo.Notice",
		"take Notice",
		"notice handlers after reset: 0",
		"kept handler registered: false/false",
		"fired notice: 0 handlers",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(out.String()), "\n"))
}

func TestRunLeavesAlertHandlers(t *testing.T) {
	var out bytes.Buffer
	b := bus.New()
	require.NoError(t, Run(b, &out))

	assert.Len(t, b.Handlers(bus.KindOf[Alert]()), 2)
	assert.Nil(t, b.Handlers(bus.KindOf[Notice]()))
	assert.Equal(t, []bus.Kind{bus.KindOf[Notice](), bus.KindOf[Alert]()}, b.Kinds())
}

func TestAlertShadowsNoticeName(t *testing.T) {
	a := NewAlert()
	assert.Equal(t, "Alert", a.EventName())
	assert.Equal(t, "Notice", a.Notice.EventName())
	assert.NotEqual(t, bus.KindOf[Alert](), bus.KindOf[Notice]())
}

func TestListenerRegistersOnAlert(t *testing.T) {
	var out bytes.Buffer
	b := bus.New()
	l := NewListener(&out)

	hs, err := b.RegisterObject(l)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, bus.KindOf[Alert](), hs[0].Kind())

	_, err = bus.Fire(b, NewAlert())
	require.NoError(t, err)
	_, err = bus.Fire(b, NewNotice())
	require.NoError(t, err)
	assert.Equal(t, 1, l.Alerts)
}
