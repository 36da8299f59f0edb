package attrs

import (
	"fmt"

	"lumen/internal/diag"
)

type pendingWrite struct {
	slice *sliceBase
	key   any
	value any
}

// Temporary buffers writes and diagnostics over a parent store. Reads see the
// buffered state layered on the parent. Commit replays the buffered writes
// into the parent in the order they were made; Discard drops them. Both close
// the overlay.
type Temporary struct {
	parent  Store
	name    string
	entries map[entryKey]any
	order   map[sliceID][]any
	log     []pendingWrite
	diags   []diag.Diagnostic
	closed  bool
}

// NewTemporary opens an overlay over parent. name appears in fault messages.
func NewTemporary(parent Store, name string) *Temporary {
	return &Temporary{
		parent:  parent,
		name:    name,
		entries: make(map[entryKey]any),
		order:   make(map[sliceID][]any),
	}
}

func (t *Temporary) check() {
	if t.closed {
		panic(fmt.Errorf("%w: %s", ErrClosed, t.name))
	}
}

func (t *Temporary) lookup(s sliceID, key any) (any, bool) {
	t.check()
	if v, ok := t.entries[entryKey{slice: s, key: key}]; ok {
		return v, true
	}
	return t.parent.lookup(s, key)
}

func (t *Temporary) keys(s sliceID) []any {
	t.check()
	base := t.parent.keys(s)
	own := t.order[s]
	if len(own) == 0 {
		return base
	}
	out := make([]any, 0, len(base)+len(own))
	out = append(out, base...)
	return append(out, own...)
}

func (t *Temporary) write(b *sliceBase, key, value any) {
	t.check()
	w := &writeCtx{r: t, store: t.store}
	if w.apply(b, key, value) {
		t.log = append(t.log, pendingWrite{slice: b, key: key, value: value})
	}
}

func (t *Temporary) store(b *sliceBase, key, value any, existed bool) {
	ek := entryKey{slice: b.id, key: key}
	_, own := t.entries[ek]
	t.entries[ek] = value
	if !existed && !own {
		t.order[b.id] = append(t.order[b.id], key)
	}
}

func (t *Temporary) Report(d diag.Diagnostic) {
	t.check()
	t.diags = append(t.diags, d)
}

func (t *Temporary) Diagnostics() []diag.Diagnostic {
	t.check()
	base := t.parent.Diagnostics()
	if len(t.diags) == 0 {
		return base
	}
	out := make([]diag.Diagnostic, 0, len(base)+len(t.diags))
	out = append(out, base...)
	return append(out, t.diags...)
}

// Pending reports how many writes are buffered.
func (t *Temporary) Pending() int { return len(t.log) }

// Commit replays buffered writes and diagnostics into the parent. Writes
// replay in the order they were made rather than sorted by key: Keys reports
// first-write order and observers fire per write, so the parent must see the
// sequence a direct write would have produced.
func (t *Temporary) Commit() {
	t.check()
	t.closed = true
	for _, pw := range t.log {
		t.parent.write(pw.slice, pw.key, pw.value)
	}
	for _, d := range t.diags {
		t.parent.Report(d)
	}
	t.log, t.diags, t.entries, t.order = nil, nil, nil, nil
}

// Discard drops everything buffered.
func (t *Temporary) Discard() {
	t.check()
	t.closed = true
	t.log, t.diags, t.entries, t.order = nil, nil, nil, nil
}
