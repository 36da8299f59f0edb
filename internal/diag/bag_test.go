package diag

import (
	"testing"

	"lumen/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	late := NewError(SemaRedeclaration, source.Span{File: 1, Line: 9}, "late")
	early := New(SevWarning, SemaUselessImport, source.Span{File: 1, Line: 2}, "early")
	if !bag.Add(late) || !bag.Add(early) {
		t.Fatalf("expected both diagnostics to fit")
	}
	if bag.Add(early) {
		t.Fatalf("expected limit to reject third diagnostic")
	}
	bag.Sort()
	if bag.Items()[0].Message != "early" {
		t.Fatalf("expected position order, got %q first", bag.Items()[0].Message)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("expected both error and warning flags")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	rep := NewDedupReporter(BagReporter{Bag: bag})
	d := NewError(SemaCyclicInheritance, source.Span{File: 1, Line: 1}, "cycle").WithArgs("A", "B")
	rep.Report(d)
	rep.Report(d)
	rep.Report(d.WithArgs("C"))
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, SemaTypeMismatch, source.Span{}, "mismatch").WithArgs("Int", "String")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected single emission, got %d", bag.Len())
	}
	if got := bag.Items()[0].Args; len(got) != 2 || got[1] != "String" {
		t.Fatalf("unexpected args %v", got)
	}
}

func TestCodeID(t *testing.T) {
	if got := SemaRedeclaration.ID(); got != "SEM3002" {
		t.Fatalf("ID = %q", got)
	}
	if got := IOLoadFileError.ID(); got != "IO4001" {
		t.Fatalf("ID = %q", got)
	}
}
