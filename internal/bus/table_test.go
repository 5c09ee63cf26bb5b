package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlersUnknownKind(t *testing.T) {
	b := New()
	assert.Nil(t, b.Handlers(KindOf[ping]()))
	assert.Empty(t, b.Kinds())
}

func TestHandlersReturnsSnapshot(t *testing.T) {
	b := New()
	h1 := RegisterFunc(b, func(ping) {})
	h2 := RegisterFunc(b, func(ping) {})

	got := b.Handlers(KindOf[ping]())
	require.Equal(t, []*Handler{h1, h2}, got)

	got[0] = nil
	assert.Equal(t, []*Handler{h1, h2}, b.Handlers(KindOf[ping]()))
}

func TestSetHandlersEmptyClears(t *testing.T) {
	b := New()
	RegisterFunc(b, func(ping) {})
	RegisterFunc(b, func(ping) {})

	require.NoError(t, b.SetHandlers(KindOf[ping](), nil))
	assert.Nil(t, b.Handlers(KindOf[ping]()))

	n, err := Fire(b, ping{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSetHandlersReplaces(t *testing.T) {
	b := New()
	var calls []string
	RegisterFunc(b, func(ping) { calls = append(calls, "old") })
	replacement := NewHandlerFunc(func(ping) { calls = append(calls, "new") })

	require.NoError(t, b.SetHandlers(KindOf[ping](), []*Handler{replacement}))
	n, err := Fire(b, ping{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"new"}, calls)
}

func TestSetHandlersInsertsNewKind(t *testing.T) {
	b := New()
	h := NewHandlerFunc(func(pong) {})
	require.NoError(t, b.SetHandlers(KindOf[pong](), []*Handler{h}))
	assert.Equal(t, []Kind{KindOf[pong]()}, b.Kinds())

	found, ok := b.Find(KindOf[pong](), h)
	require.True(t, ok)
	assert.Same(t, h, found)
}

func TestSetHandlersRejectsInvalid(t *testing.T) {
	b := New()
	existing := RegisterFunc(b, func(ping) {})

	err := b.SetHandlers(KindOf[ping](), []*Handler{NewHandlerFunc(func(pong) {})})
	assert.ErrorIs(t, err, ErrKindMismatch)

	err = b.SetHandlers(KindOf[ping](), []*Handler{nil})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = b.AddHandlers(KindOf[ping](), NewHandlerFunc(func(*ping) {}))
	assert.ErrorIs(t, err, ErrKindMismatch)

	assert.Equal(t, []*Handler{existing}, b.Handlers(KindOf[ping]()))
}

func TestClearHandlers(t *testing.T) {
	b := New()
	RegisterFunc(b, func(ping) {})
	other := RegisterFunc(b, func(pong) {})

	b.ClearHandlers(KindOf[ping]())
	assert.Nil(t, b.Handlers(KindOf[ping]()))
	assert.Equal(t, []*Handler{other}, b.Handlers(KindOf[pong]()))
}

func TestFind(t *testing.T) {
	b := New()
	h1 := RegisterFunc(b, func(ping) {})
	h2 := RegisterFunc(b, func(ping) {})
	unregistered := NewHandlerFunc(func(ping) {})

	found, ok := b.Find(KindOf[ping](), h2)
	require.True(t, ok)
	assert.Same(t, h2, found)

	_, ok = b.Find(KindOf[ping](), unregistered)
	assert.False(t, ok)

	_, ok = b.Find(KindOf[pong](), h1)
	assert.False(t, ok, "unknown kind is absent, not an error")
}

func TestFindByReferenceNotBody(t *testing.T) {
	b := New()
	fn := func(ping) {}
	RegisterFunc(b, fn)
	sameBody := NewHandlerFunc(fn)

	_, ok := b.Find(KindOf[ping](), sameBody)
	assert.False(t, ok)
	_, ok = b.FindAny(sameBody)
	assert.False(t, ok)
}

func TestFindAny(t *testing.T) {
	b := New()
	_, ok := b.FindAny(NewHandlerFunc(func(ping) {}))
	assert.False(t, ok, "empty table")

	RegisterFunc(b, func(ping) {})
	h := RegisterFunc(b, func(pong) {})

	found, ok := b.FindAny(h)
	require.True(t, ok)
	assert.Same(t, h, found)

	_, ok = b.FindAny(nil)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	b := New()
	h := NewHandlerFunc(func(ping) {})
	keep := RegisterFunc(b, func(ping) {})
	require.NoError(t, b.AddHandlers(KindOf[ping](), h, h))

	assert.Equal(t, 2, b.Remove(h))
	assert.Equal(t, []*Handler{keep}, b.Handlers(KindOf[ping]()))
	assert.Equal(t, 0, b.Remove(h))
}

func TestKindsInFirstRegistrationOrder(t *testing.T) {
	b := New()
	RegisterFunc(b, func(pong) {})
	RegisterFunc(b, func(ping) {})
	RegisterFunc(b, func(pong) {})
	b.ClearHandlers(KindOf[pong]())

	assert.Equal(t, []Kind{KindOf[pong](), KindOf[ping]()}, b.Kinds())
	assert.Equal(t, 1, b.Len())
}
