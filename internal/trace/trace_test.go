package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelUnit, ScopeUnit, true},
		{LevelUnit, ScopePhase, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeNode, false},
		{LevelNode, ScopeNode, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Fatalf("%s/%s: got %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if lvl, err := ParseLevel("PHASE"); err != nil || lvl != LevelPhase {
		t.Fatalf("unexpected %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if m, err := ParseMode(""); err != nil || m != ModeStream {
		t.Fatalf("unexpected %v %v", m, err)
	}
	if _, err := ParseMode("both"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSpansCarryUnitAndPhase(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	unit := Begin(tr, ScopeUnit, Frame{}, "geo")
	phase := Begin(tr, ScopePhase, unit.Frame(), "supertypes")
	Point(tr, ScopeNode, phase.Frame(), "cycle", "A")
	phase.Counts(2, 1).Set("classes", "3").End("1 cycles")
	unit.Counts(2, 0).End("analyzed")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"-> geo",
		"geo -> supertypes",
		"geo <- supertypes (1 cycles) diags=2 deferred=1",
		"{classes=3}",
		"<- geo (analyzed) diags=2 ",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "cycle ") {
		t.Fatalf("node events must be filtered at phase level:\n%s", out)
	}
}

func TestNDJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelNode, FormatNDJSON)
	Point(tr, ScopeNode, Frame{Unit: "geo", Phase: "bodies"}, "cycle", "A")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if ev["name"] != "cycle" || ev["unit"] != "geo" || ev["phase"] != "bodies" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestRingKeepsLatestEventsPerUnit(t *testing.T) {
	tr := NewRingTracer(2, LevelNode)
	for _, name := range []string{"a", "b", "c"} {
		Point(tr, ScopeNode, Frame{Unit: "noisy"}, name, "")
	}
	Point(tr, ScopeNode, Frame{Unit: "quiet"}, "only", "")
	Point(tr, ScopeDriver, Frame{}, "start", "")

	noisy := tr.Events("noisy")
	if len(noisy) != 2 || noisy[0].Name != "b" || noisy[1].Name != "c" {
		t.Fatalf("noisy ring = %+v", noisy)
	}
	if q := tr.Events("quiet"); len(q) != 1 || q[0].Name != "only" {
		t.Fatalf("quiet unit lost its history: %+v", q)
	}
	all := tr.Snapshot()
	if len(all) != 4 || all[0].Name != "b" || all[3].Name != "start" {
		t.Fatalf("snapshot = %+v", all)
	}

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	driver := strings.Index(out, "== (driver): 1 events, 0 dropped")
	noisyAt := strings.Index(out, "== noisy: 2 events, 1 dropped")
	quietAt := strings.Index(out, "== quiet: 1 events, 0 dropped")
	if driver < 0 || noisyAt < driver || quietAt < noisyAt {
		t.Fatalf("unexpected dump:\n%s", out)
	}
}

func TestRingDumpsOnClose(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelUnit, Mode: ModeRing, Format: FormatText, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeUnit, Frame{}, "geo").End("")
	if buf.Len() != 0 {
		t.Fatalf("ring wrote before close")
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "== geo: 2 events") {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestDisabledSpansAreNil(t *testing.T) {
	span := Begin(Nop, ScopeUnit, Frame{}, "geo")
	if span != nil || span.ID() != 0 || span.Frame() != (Frame{}) {
		t.Fatalf("disabled span should be nil")
	}
	span.Counts(1, 1).Set("k", "v").End("")
}

func TestContextCarriesTracerAndFrame(t *testing.T) {
	if Enabled(FromContext(context.Background()), ScopeDriver) {
		t.Fatalf("expected nop tracer")
	}
	tr := NewRingTracer(4, LevelPhase)
	ctx := WithFrame(context.Background(), Frame{Unit: "geo", Parent: 7})
	ctx = WithTracer(ctx, tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatalf("tracer not propagated")
	}
	if f := FrameOf(ctx); f.Unit != "geo" || f.Parent != 7 {
		t.Fatalf("frame lost when attaching tracer: %+v", f)
	}
}
