package bus

import "slices"

// table maps kinds to their ordered handler sequences.
// It is not safe for concurrent use; Bus guards it with its mutex.
type table struct {
	handlers map[Kind][]*Handler
	order    []Kind
}

func newTable() *table {
	return &table{handlers: make(map[Kind][]*Handler)}
}

func (t *table) touch(k Kind) {
	if _, ok := t.handlers[k]; !ok {
		t.order = append(t.order, k)
		t.handlers[k] = nil
	}
}

func (t *table) add(k Kind, hs ...*Handler) {
	t.touch(k)
	t.handlers[k] = append(t.handlers[k], hs...)
}

// get returns a copy of the sequence for k, or nil.
func (t *table) get(k Kind) []*Handler {
	hs := t.handlers[k]
	if len(hs) == 0 {
		return nil
	}
	return slices.Clone(hs)
}

func (t *table) set(k Kind, hs []*Handler) {
	t.touch(k)
	t.handlers[k] = slices.Clone(hs)
}

func (t *table) find(k Kind, h *Handler) (*Handler, bool) {
	for _, cur := range t.handlers[k] {
		if cur == h {
			return cur, true
		}
	}
	return nil, false
}

// findAny scans kinds in first-registration order.
func (t *table) findAny(h *Handler) (*Handler, bool) {
	for _, k := range t.order {
		if found, ok := t.find(k, h); ok {
			return found, true
		}
	}
	return nil, false
}

// remove drops every occurrence of h and returns how many were removed.
func (t *table) remove(h *Handler) int {
	removed := 0
	for _, k := range t.order {
		hs := t.handlers[k]
		kept := slices.DeleteFunc(slices.Clone(hs), func(cur *Handler) bool { return cur == h })
		if n := len(hs) - len(kept); n > 0 {
			t.handlers[k] = kept
			removed += n
		}
	}
	return removed
}

func (t *table) kinds() []Kind {
	return slices.Clone(t.order)
}

func (t *table) count() int {
	n := 0
	for _, hs := range t.handlers {
		n += len(hs)
	}
	return n
}
