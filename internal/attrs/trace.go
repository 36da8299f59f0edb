package attrs

import (
	"lumen/internal/diag"
)

// Trace is the root attribute store of one compilation unit.
type Trace struct {
	entries   map[entryKey]any
	order     map[sliceID][]any
	observers map[sliceID][]func(key, value any)
	diags     []diag.Diagnostic
}

func NewTrace() *Trace {
	return &Trace{
		entries:   make(map[entryKey]any, 256),
		order:     make(map[sliceID][]any),
		observers: make(map[sliceID][]func(key, value any)),
	}
}

// Observe attaches fn to s; it runs after every effective write into the
// root store, including writes replayed by a committed temporary store.
func Observe[K comparable, V any](t *Trace, s *Slice[K, V], fn func(store Store, key K, value V)) {
	id := s.base.id
	t.observers[id] = append(t.observers[id], func(key, value any) {
		fn(t, key.(K), value.(V))
	})
}

func (t *Trace) lookup(s sliceID, key any) (any, bool) {
	v, ok := t.entries[entryKey{slice: s, key: key}]
	return v, ok
}

func (t *Trace) keys(s sliceID) []any {
	return t.order[s]
}

func (t *Trace) write(b *sliceBase, key, value any) {
	w := &writeCtx{r: t, store: t.store}
	w.apply(b, key, value)
}

func (t *Trace) store(b *sliceBase, key, value any, existed bool) {
	t.entries[entryKey{slice: b.id, key: key}] = value
	if !existed {
		t.order[b.id] = append(t.order[b.id], key)
	}
	for _, fn := range t.observers[b.id] {
		fn(key, value)
	}
}

func (t *Trace) Report(d diag.Diagnostic) {
	t.diags = append(t.diags, d)
}

func (t *Trace) Diagnostics() []diag.Diagnostic {
	return t.diags
}
