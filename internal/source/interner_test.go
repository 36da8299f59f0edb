package source

import "testing"

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to the empty string, got %q ok=%v", s, ok)
	}
	first := interner.Intern("hello")
	if first == NoStringID {
		t.Fatalf("expected a fresh ID")
	}
	if again := interner.Intern("hello"); again != first {
		t.Fatalf("expected stable ID, got %d and %d", first, again)
	}
	if other := interner.Intern("world"); other == first {
		t.Fatalf("distinct strings must get distinct IDs")
	}
}

func TestInternerNormalizesNFC(t *testing.T) {
	interner := NewInterner()
	composed := interner.Intern("caf\u00e9")
	decomposed := interner.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("expected NFC-equal identifiers to share an ID, got %d and %d", composed, decomposed)
	}
	if got := interner.MustLookup(decomposed); got != "caf\u00e9" {
		t.Fatalf("expected normalized spelling, got %q", got)
	}
}

func TestInternerJoinPath(t *testing.T) {
	interner := NewInterner()
	path := interner.InternPath([]string{"a", "b", "c"})
	if got := interner.JoinPath(path); got != "a.b.c" {
		t.Fatalf("JoinPath = %q", got)
	}
}
