package ui

import (
	"strings"
	"testing"
	"time"

	"lumen/internal/driver"
)

func TestProgressModelTracksUnits(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("checking", []string{"geo", "app"}, events).(*progressModel)

	steps := []driver.Event{
		{Unit: "geo", Stage: driver.StageHash, Status: driver.StatusQueued},
		{Unit: "geo", Stage: driver.StageAnalyze, Status: driver.StatusWorking},
		{Unit: "app", Stage: driver.StageHash, Status: driver.StatusCached, Elapsed: time.Millisecond},
		{Unit: "other", Stage: driver.StageLoad, Status: driver.StatusWorking},
	}
	for _, ev := range steps {
		m.Update(eventMsg(ev))
	}
	if got := m.items[0].status; got != "analysing" {
		t.Fatalf("geo status = %q", got)
	}
	if !m.items[1].final || m.items[1].status != "cached" {
		t.Fatalf("app not finished: %+v", m.items[1])
	}
	if got, want := m.fraction(), (0.5+1.0)/2; got != want {
		t.Fatalf("fraction = %v, want %v", got, want)
	}

	view := m.View()
	if !strings.Contains(view, "checking 1/2") || !strings.Contains(view, "geo") {
		t.Fatalf("unexpected view:\n%s", view)
	}

	m.Update(eventMsg{Unit: "geo", Stage: driver.StageSnapshot, Status: driver.StatusDone})
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction after completion = %v", got)
	}
	m.Update(doneMsg{})
	if !m.done || !strings.Contains(m.View(), "done: checking 2/2") {
		t.Fatalf("model not done")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a-rather-long-unit-name", 10, "a-rathe..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
