package types

import "testing"

const (
	ctorList CtorRef = iota + 10
	ctorInt
	ctorString
	ctorT
)

func testNamer(c CtorRef) string {
	switch c {
	case ctorList:
		return "List"
	case ctorInt:
		return "Int"
	case ctorString:
		return "String"
	case ctorT:
		return "T"
	}
	return "?"
}

func TestInternIsStructural(t *testing.T) {
	in := NewInterner()
	intT := in.Class(ctorInt)
	a := in.Class(ctorList, intT)
	b := in.Class(ctorList, in.Class(ctorInt))
	if a != b {
		t.Fatalf("structurally equal types must share an ID: %d vs %d", a, b)
	}
	if in.WithNullable(a, true) == a {
		t.Fatalf("nullable variant must differ")
	}
	if in.WithNullable(in.WithNullable(a, true), false) != a {
		t.Fatalf("nullability round trip must return the original ID")
	}
	if !in.IsError(in.Error()) || in.IsError(a) {
		t.Fatalf("error sentinel misclassified")
	}
}

func TestSubstitute(t *testing.T) {
	in := NewInterner()
	param := in.TypeParam(ctorT)
	listOfT := in.Class(ctorList, param)
	intT := in.Class(ctorInt)

	got := in.Substitute(listOfT, Subst{ctorT: intT})
	if got != in.Class(ctorList, intT) {
		t.Fatalf("Substitute = %s", in.Format(got, testNamer))
	}

	nullableT := in.WithNullable(param, true)
	if got := in.Substitute(nullableT, Subst{ctorT: intT}); got != in.WithNullable(intT, true) {
		t.Fatalf("nullable parameter must stay nullable, got %s", in.Format(got, testNamer))
	}

	fn := in.Function([]TypeID{param}, listOfT)
	want := in.Function([]TypeID{intT}, in.Class(ctorList, intT))
	if got := in.Substitute(fn, Subst{ctorT: intT}); got != want {
		t.Fatalf("function substitution = %s", in.Format(got, testNamer))
	}
	if !in.Mentions(fn, ctorT) || in.Mentions(want, ctorT) {
		t.Fatalf("Mentions misreports")
	}
}

func TestCompose(t *testing.T) {
	in := NewInterner()
	const ctorU CtorRef = 99
	inner := Subst{ctorT: in.Class(ctorList, in.TypeParam(ctorU))}
	outer := Subst{ctorU: in.Class(ctorString)}
	got := in.Compose(inner, outer)[ctorT]
	if want := in.Class(ctorList, in.Class(ctorString)); got != want {
		t.Fatalf("Compose = %s", in.Format(got, testNamer))
	}
}

func TestFormat(t *testing.T) {
	in := NewInterner()
	id := in.WithNullable(in.Class(ctorList, in.Class(ctorString)), true)
	if got := in.Format(id, testNamer); got != "List<String>?" {
		t.Fatalf("Format = %q", got)
	}
	fn := in.Function([]TypeID{in.Class(ctorInt)}, in.Class(ctorString))
	if got := in.Format(fn, testNamer); got != "(Int) -> String" {
		t.Fatalf("Format = %q", got)
	}
}
