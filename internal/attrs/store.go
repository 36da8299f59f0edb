// Package attrs implements the attribute store: a database of analysis facts
// partitioned into typed slices, with discardable overlays for speculative
// resolution.
package attrs

import (
	"errors"
	"fmt"

	"lumen/internal/diag"
)

var (
	// ErrRewrite signals a conflicting write into a first-write-wins slice.
	ErrRewrite = errors.New("attrs: conflicting rewrite")
	// ErrClosed signals use of a temporary store after Commit or Discard.
	ErrClosed = errors.New("attrs: temporary store already closed")
)

type entryKey struct {
	slice sliceID
	key   any
}

// Reader is the read side of a store. Its methods are unexported: the only
// implementations are Trace and Temporary.
type Reader interface {
	lookup(s sliceID, key any) (any, bool)
	keys(s sliceID) []any
	// Diagnostics returns every diagnostic visible through this store.
	Diagnostics() []diag.Diagnostic
}

// Store is a readable and writable attribute store.
type Store interface {
	Reader
	write(s *sliceBase, key, value any)
	// Report records a diagnostic as a fact of this store.
	Report(d diag.Diagnostic)
}

// Get reads key from slice s, consulting fallback slices on a miss.
func Get[K comparable, V any](r Reader, s *Slice[K, V], key K) (V, bool) {
	if v, ok := r.lookup(s.base.id, key); ok {
		return v.(V), true
	}
	for _, fb := range s.fallbacks {
		if v, ok := Get(r, fb, key); ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Has reports whether key is bound in s or its fallbacks.
func Has[K comparable, V any](r Reader, s *Slice[K, V], key K) bool {
	_, ok := Get(r, s, key)
	return ok
}

// Set writes value under key. Writing a different value into a
// first-write-wins slice panics with ErrRewrite; writing an equal value is a
// silent no-op.
func Set[K comparable, V any](w Store, s *Slice[K, V], key K, value V) {
	w.write(s.base, key, value)
}

// Keys lists the keys bound directly in s, in first-write order.
func Keys[K comparable, V any](r Reader, s *Slice[K, V]) []K {
	raw := r.keys(s.base.id)
	out := make([]K, len(raw))
	for i, k := range raw {
		out[i] = k.(K)
	}
	return out
}

// writeCtx applies the rewrite policy against the full visible state of a
// store and delegates the physical write.
type writeCtx struct {
	r     Reader
	store func(b *sliceBase, key, value any, existed bool)
}

// check reports whether key is already bound in b and whether writing value
// would change it. A conflicting write into a first-write-wins slice panics.
func (w *writeCtx) check(b *sliceBase, key, value any) (existed, changed bool) {
	old, existed := w.r.lookup(b.id, key)
	if !existed {
		return false, true
	}
	if b.eq(old, value) {
		return true, false
	}
	if b.policy == FirstWriteWins {
		panic(fmt.Errorf("%w: slice %s, key %v: have %v, got %v", ErrRewrite, b.name, key, old, value))
	}
	return true, true
}

// apply checks the write and its opposite before storing either, so a
// conflict on the opposite side leaves the store untouched.
func (w *writeCtx) apply(b *sliceBase, key, value any) bool {
	existed, changed := w.check(b, key, value)
	if !changed {
		return false
	}
	var oppExisted, oppChanged bool
	if b.opposite != nil {
		oppExisted, oppChanged = w.check(b.opposite, value, key)
	}
	w.store(b, key, value, existed)
	if oppChanged {
		w.store(b.opposite, value, key, oppExisted)
	}
	return true
}

// Reporter adapts a store to diag.Reporter.
type Reporter struct {
	Store Store
}

func (r Reporter) Report(d diag.Diagnostic) {
	if r.Store != nil {
		r.Store.Report(d)
	}
}
