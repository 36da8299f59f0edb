package diagfmt

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"lumen/internal/driver"
)

func init() {
	color.NoColor = true
}

func sampleSnapshot(t *testing.T) (*driver.Snapshot, string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "unit.yaml")
	src := "package: geo\ndecls:\n  - val: area\n    init: missing\n"
	if err := os.WriteFile(file, []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	snap := &driver.Snapshot{
		Unit: "geo",
		Diagnostics: []driver.DiagnosticRecord{
			{
				Severity: "ERROR",
				Code:     "SEM3001",
				Title:    "Unresolved reference",
				Message:  "unresolved reference 'missing'",
				Location: file + ":4:11",
				File:     file,
				Line:     4,
				Col:      11,
				Notes: []driver.NoteRecord{
					{Message: "declared here", Location: file + ":3:5", File: file, Line: 3, Col: 5},
				},
			},
			{
				Severity: "WARNING",
				Code:     "SEM3100",
				Message:  "unused value 'area'",
				Location: file + ":3:5",
				File:     file,
				Line:     3,
				Col:      5,
			},
		},
		Dropped: 2,
	}
	return snap, dir
}

func TestPrettyShowsSourceAndNotes(t *testing.T) {
	snap, dir := sampleSnapshot(t)
	var buf bytes.Buffer
	opts := PrettyOpts{PathMode: PathModeRelative, BaseDir: dir, ShowSource: true, ShowNotes: true}
	if err := Pretty(&buf, snap, opts); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"unit.yaml:4:11: error[SEM3001]: unresolved reference 'missing'",
		" 4 |     init: missing\n",
		"   |           ^\n",
		"note: unit.yaml:3:5: declared here",
		"unit.yaml:3:5: warning[SEM3100]:",
		"geo: 2 more diagnostics not shown",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShortSkipsWarnings(t *testing.T) {
	snap, dir := sampleSnapshot(t)
	var buf bytes.Buffer
	if err := Short(&buf, snap, PrettyOpts{PathMode: PathModeBasename, BaseDir: dir, NoWarnings: true}); err != nil {
		t.Fatalf("Short: %v", err)
	}
	want := "unit.yaml:4:11: error SEM3001: unresolved reference 'missing'\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestLocationFallsBackToRecordedText(t *testing.T) {
	if got := location("", 0, 0, "geo", PathModeAbsolute, ""); got != "geo" {
		t.Fatalf("got %q", got)
	}
	if got := location("/a/b/c.yaml", 0, 0, "", PathModeBasename, ""); got != "c.yaml" {
		t.Fatalf("got %q", got)
	}
	if got := formatPath("/elsewhere/x.yaml", PathModeAuto, "/work"); got != "/elsewhere/x.yaml" {
		t.Fatalf("auto mode left base dir: %q", got)
	}
}

func TestParsePathMode(t *testing.T) {
	cases := []struct {
		in   string
		want PathMode
		ok   bool
	}{
		{"", PathModeAuto, true},
		{"absolute", PathModeAbsolute, true},
		{"relative", PathModeRelative, true},
		{"basename", PathModeBasename, true},
		{"weird", PathModeAuto, false},
	}
	for _, tc := range cases {
		got, ok := ParsePathMode(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParsePathMode(%q) = %v, %v", tc.in, got, ok)
		}
	}
}

func TestJSONTruncatesAndCounts(t *testing.T) {
	snap, dir := sampleSnapshot(t)
	var buf bytes.Buffer
	if err := JSON(&buf, []*driver.Snapshot{snap}, JSONOpts{PathMode: PathModeRelative, BaseDir: dir, Max: 1, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || len(out.Units) != 1 {
		t.Fatalf("unexpected shape: %+v", out)
	}
	u := out.Units[0]
	if u.Unit != "geo" || u.Errors != 1 || u.Dropped != 3 {
		t.Fatalf("unexpected unit: %+v", u)
	}
	d := u.Diagnostics[0]
	if d.Location.File != "unit.yaml" || d.Location.Line != 4 || d.Location.Col != 11 {
		t.Fatalf("unexpected location: %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "declared here" {
		t.Fatalf("unexpected notes: %+v", d.Notes)
	}
}

func TestSarifLog(t *testing.T) {
	snap, dir := sampleSnapshot(t)
	var buf bytes.Buffer
	meta := SarifRunMeta{ToolName: "lumen", ToolVersion: "0.1.0", InvocationArgs: []string{"check"}, BaseDir: dir}
	if err := Sarif(&buf, []*driver.Snapshot{snap}, meta); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log: %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "lumen" || len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("unexpected driver: %+v", run.Tool.Driver)
	}
	if run.Tool.Driver.Rules[0].ID != "SEM3001" || run.Tool.Driver.Rules[0].ShortDescription.Text != "Unresolved reference" {
		t.Fatalf("unexpected first rule: %+v", run.Tool.Driver.Rules[0])
	}
	if len(run.Results) != 2 {
		t.Fatalf("want 2 results, got %d", len(run.Results))
	}
	first := run.Results[0]
	if first.Level != "error" || first.RuleID != "SEM3001" {
		t.Fatalf("unexpected result: %+v", first)
	}
	phys := first.Locations[0].PhysicalLocation
	if phys.ArtifactLocation.URI != "unit.yaml" || phys.Region == nil || phys.Region.StartLine != 4 {
		t.Fatalf("unexpected location: %+v", phys)
	}
	if len(first.RelatedLocations) != 1 {
		t.Fatalf("note not carried as related location")
	}
	if run.Results[1].Level != "warning" {
		t.Fatalf("unexpected level %q", run.Results[1].Level)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocation should record failure: %+v", run.Invocations)
	}
}
