package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	pings []string
	pongs int
}

func (r *recorder) OnPing(e ping) { r.pings = append(r.pings, e.EventName()) }

func (r *recorder) OnPong(*pong) error {
	r.pongs++
	if r.pongs > 1 {
		return errors.New("too many pongs")
	}
	return nil
}

// NotDeclared is never listed in EventHandlers.
func (r *recorder) NotDeclared(ping) { panic("not a handler") }

func (r *recorder) EventHandlers() []any {
	return []any{r.OnPing, r.OnPong}
}

type plain struct{}

func (plain) OnPing(ping) {}

type declared struct{ handlers []any }

func (d declared) EventHandlers() []any { return d.handlers }

func TestRegisterObjectNil(t *testing.T) {
	b := New()
	_, err := b.RegisterObject(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var r *recorder
	_, err = b.RegisterObject(r)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, b.Len())
}

func TestRegisterObjectWithoutDeclarations(t *testing.T) {
	b := New()
	hs, err := b.RegisterObject(plain{})
	require.NoError(t, err)
	assert.Empty(t, hs)
	assert.Equal(t, 0, b.Len())
}

func TestRegisterObjectBindsMethods(t *testing.T) {
	b := New()
	r := &recorder{}
	hs, err := b.RegisterObject(r)
	require.NoError(t, err)
	require.Len(t, hs, 2)

	assert.Equal(t, KindOf[ping](), hs[0].Kind())
	assert.Equal(t, KindOf[*pong](), hs[1].Kind())
	assert.Equal(t, Bound, hs[0].Source())
	assert.Contains(t, hs[0].Name(), "OnPing")

	n, err := Fire(b, ping{Named{"hello"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"hello"}, r.pings, "method must run on the registered receiver")

	found, ok := b.Find(KindOf[*pong](), hs[1])
	require.True(t, ok)
	assert.Same(t, hs[1], found)
}

func TestRegisterObjectBoundError(t *testing.T) {
	b := New()
	r := &recorder{}
	_, err := b.RegisterObject(r)
	require.NoError(t, err)

	_, err = Fire(b, &pong{})
	require.NoError(t, err)

	_, err = Fire(b, &pong{})
	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Contains(t, herr.Handler, "OnPong")
	assert.EqualError(t, herr.Err, "too many pongs")
}

func TestRegisterObjectTwiceDuplicates(t *testing.T) {
	b := New()
	r := &recorder{}
	_, err := b.RegisterObject(r)
	require.NoError(t, err)
	_, err = b.RegisterObject(r)
	require.NoError(t, err)

	n, err := Fire(b, ping{Named{"x"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, r.pings, 2)
}

func noParams()                    {}
func twoParams(ping, pong)         {}
func variadic(...ping)             {}
func twoResults(ping) (int, error) { return 0, nil }
func intResult(ping) int           { return 0 }

func TestRegisterObjectSignatureError(t *testing.T) {
	tests := []struct {
		name   string
		decl   any
		method string
	}{
		{"no parameters", noParams, "noParams"},
		{"two parameters", twoParams, "twoParams"},
		{"variadic", variadic, "variadic"},
		{"two results", twoResults, "twoResults"},
		{"non-error result", intResult, "intResult"},
		{"not a function", "OnPing", "string"},
		{"nil function", (func(ping))(nil), "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			hs, err := b.RegisterObject(declared{handlers: []any{tt.decl}})
			assert.Nil(t, hs)

			var sigErr *SignatureError
			require.ErrorAs(t, err, &sigErr)
			assert.Contains(t, sigErr.Method, tt.method)
			assert.Contains(t, err.Error(), tt.method)
			assert.Equal(t, 0, b.Len())
		})
	}
}

func TestRegisterObjectTypeConstraintError(t *testing.T) {
	b := New()
	_, err := b.RegisterObject(declared{handlers: []any{func(string) {}}})

	var typeErr *TypeConstraintError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "string", typeErr.Type.String())
	assert.Contains(t, err.Error(), "string")
	assert.Equal(t, 0, b.Len())
}

func TestRegisterObjectAllOrNothing(t *testing.T) {
	b := New()
	r := &recorder{}
	_, err := b.RegisterObject(declared{handlers: []any{r.OnPing, twoParams}})
	require.Error(t, err)

	assert.Equal(t, 0, b.Len(), "valid handlers declared before the bad one must not be inserted")
	n, err := Fire(b, ping{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRegisterObjectInterfaceParameter(t *testing.T) {
	b := New()
	var got []string
	_, err := b.RegisterObject(declared{handlers: []any{func(p Payload) { got = append(got, p.EventName()) }}})
	require.NoError(t, err)

	_, err = Fire[Payload](b, pong{Named{"any"}})
	require.NoError(t, err)
	_, err = Fire(b, pong{Named{"concrete"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"any"}, got)
}

func TestBoundHandlerInvoke(t *testing.T) {
	b := New()
	r := &recorder{}
	hs, err := b.RegisterObject(r)
	require.NoError(t, err)

	require.NoError(t, hs[0].Invoke(ping{Named{"manual"}}))
	assert.Equal(t, []string{"manual"}, r.pings)
	assert.ErrorIs(t, hs[0].Invoke(&pong{}), ErrKindMismatch)
}
