package attrs

import (
	"sync/atomic"
)

// RewritePolicy controls what happens when a key is written twice.
type RewritePolicy uint8

const (
	// FirstWriteWins accepts a repeated write only if it carries an equal value.
	FirstWriteWins RewritePolicy = iota
	// Rewritable lets later writes replace earlier ones.
	Rewritable
)

func (p RewritePolicy) String() string {
	if p == Rewritable {
		return "rewritable"
	}
	return "first-write-wins"
}

type sliceID uint32

var sliceSeq atomic.Uint32

// sliceBase is the untyped part of a slice that stores work with.
type sliceBase struct {
	id     sliceID
	name   string
	policy RewritePolicy
	eq     func(a, b any) bool
	// opposite receives (value, key) for every write of (key, value).
	opposite *sliceBase
}

// Slice is a named, typed partition of the attribute store.
type Slice[K comparable, V any] struct {
	base      *sliceBase
	fallbacks []*Slice[K, V]
}

// NewSlice declares a slice whose values are compared with ==.
func NewSlice[K, V comparable](name string, policy RewritePolicy) *Slice[K, V] {
	return NewSliceFunc[K, V](name, policy, func(a, b V) bool { return a == b })
}

// NewSliceFunc declares a slice with a custom value equality.
func NewSliceFunc[K comparable, V any](name string, policy RewritePolicy, eq func(a, b V) bool) *Slice[K, V] {
	return &Slice[K, V]{
		base: &sliceBase{
			id:     sliceID(sliceSeq.Add(1)),
			name:   name,
			policy: policy,
			eq: func(a, b any) bool {
				return eq(a.(V), b.(V))
			},
		},
	}
}

func (s *Slice[K, V]) Name() string { return s.base.name }

func (s *Slice[K, V]) Policy() RewritePolicy { return s.base.policy }

// WithFallback registers slices consulted, in order, when a key is missing
// from s. It returns s for use in declarations.
func (s *Slice[K, V]) WithFallback(fallbacks ...*Slice[K, V]) *Slice[K, V] {
	s.fallbacks = append(s.fallbacks, fallbacks...)
	return s
}

// Pair makes opp the opposite of s: every write of (k, v) into s also writes
// (v, k) into opp. Only one direction is wired; call Pair twice for both.
func Pair[K, V comparable](s *Slice[K, V], opp *Slice[V, K]) {
	s.base.opposite = opp.base
}
