package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"lumen/internal/diagfmt"
	"lumen/internal/driver"
	"lumen/internal/project"
)

const cleanTree = `
package: geo
decls:
  - trait: Shape
    decls:
      - fun: area
        mods: [abstract]
        returns: Double
  - class: Square
    primary: ["val side: Double"]
    supers: [Shape]
    decls:
      - fun: area
        mods: [override]
        returns: Double
        body: side * side
`

const faultyTree = `
package: app
decls:
  - val: a
    init: first
  - val: b
    type: Int
    init: '"text"'
`

// resetFlags restores every flag of cmd and its children to its default so
// runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color=off"}, args...))
	err := rootCmd.Execute()
	if stopErr := stopProfiling(); stopErr != nil {
		t.Fatalf("stop profiling: %v", stopErr)
	}
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExpandArgs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "decls: []\n")
	writeFile(t, filepath.Join(dir, "a.yml"), "decls: []\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")
	single := writeFile(t, filepath.Join(t.TempDir(), "single.yaml"), "decls: []\n")

	files, err := expandArgs([]string{dir, single})
	if err != nil {
		t.Fatalf("expandArgs: %v", err)
	}
	want := []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml"), single}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("files = %v, want %v", files, want)
	}

	if _, err := expandArgs([]string{t.TempDir()}); err == nil {
		t.Fatalf("expected an error for a directory without trees")
	}
	if _, err := expandArgs([]string{filepath.Join(dir, "missing.yaml")}); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestCheckCleanTree(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "geo.yaml"), cleanTree)
	out, err := run(t, "--config=", "check", path)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 unit(s) checked (0 cached): ok") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCheckReportsErrors(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "app.yaml"), faultyTree)
	out, err := run(t, "--config=", "check", "--format=json", path)
	if !errors.Is(err, errAnalysisFailed) {
		t.Fatalf("expected errAnalysisFailed, got %v", err)
	}
	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("bad json: %v\n%s", err, out)
	}
	if len(payload.Units) != 1 || payload.Units[0].Unit != "app" || payload.Units[0].Errors != 2 || payload.Count != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	out, _ = run(t, "--config=", "check", "--format=short", path)
	if lines := strings.Count(out, "\n"); lines != 2 {
		t.Fatalf("short format printed %d lines:\n%s", lines, out)
	}
	if !strings.Contains(out, "app.yaml:") || !strings.Contains(out, "error ") {
		t.Fatalf("short line lacks location or severity:\n%s", out)
	}
}

func TestCheckSarifAndProfiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "app.yaml"), faultyTree)
	cpu := filepath.Join(dir, "cpu.pprof")
	out, err := run(t, "--config=", "--cpu-profile", cpu, "check", "--format=sarif", path)
	if !errors.Is(err, errAnalysisFailed) {
		t.Fatalf("expected errAnalysisFailed, got %v", err)
	}
	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []struct {
				RuleID string `json:"ruleId"`
				Level  string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &log); err != nil {
		t.Fatalf("bad sarif: %v\n%s", err, out)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 || len(log.Runs[0].Results) != 2 {
		t.Fatalf("unexpected sarif log %+v", log)
	}
	if log.Runs[0].Results[0].Level != "error" {
		t.Fatalf("unexpected level %q", log.Runs[0].Results[0].Level)
	}
	if info, err := os.Stat(cpu); err != nil || info.Size() == 0 {
		t.Fatalf("cpu profile not written: %v", err)
	}

	if _, err := run(t, "--config=", "check", "--path-mode=sideways", path); err == nil {
		t.Fatalf("expected an error for an unknown path mode")
	}
	if _, err := run(t, "--config=", "check", "--ui=maybe", path); err == nil {
		t.Fatalf("expected an error for an unknown ui mode")
	}
}

func TestCheckManifestUnits(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "geo", "shapes.yaml"), cleanTree)
	writeFile(t, filepath.Join(root, "app", "main.yaml"), faultyTree)
	manifest := writeFile(t, filepath.Join(root, project.ManifestName), `
[driver]
cache_dir = ".cache"

[[unit]]
name = "geo"
files = ["geo/*.yaml"]

[[unit]]
name = "app"
files = ["app/*.yaml"]
`)

	out, err := run(t, "--config="+manifest, "check", "--unit=geo", "--cache")
	if err != nil {
		t.Fatalf("check geo: %v\n%s", err, out)
	}
	out, err = run(t, "--config="+manifest, "check", "--unit=geo", "--cache")
	if err != nil || !strings.Contains(out, "(1 cached)") {
		t.Fatalf("second run was not cached: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(root, ".cache")); err != nil {
		t.Fatalf("cache directory missing: %v", err)
	}

	if _, err := run(t, "--config="+manifest, "check"); !errors.Is(err, errAnalysisFailed) {
		t.Fatalf("expected the app unit to fail, got %v", err)
	}
	if _, err := run(t, "--config="+manifest, "check", "--unit=ghost"); err == nil {
		t.Fatalf("expected an error for an unknown unit")
	}

	out, err = run(t, "--config="+manifest, "cache", "clean")
	if err != nil || !strings.Contains(out, "cleaned") {
		t.Fatalf("cache clean: %v\n%s", err, out)
	}
	out, _ = run(t, "--config="+manifest, "check", "--unit=geo", "--cache")
	if !strings.Contains(out, "(0 cached)") {
		t.Fatalf("cleaned cache still served a unit:\n%s", out)
	}
}

func TestDumpClasses(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "geo.yaml"), cleanTree)
	out, err := run(t, "--config=", "dump", "--format=json", "--kind=class", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	var snaps []driver.Snapshot
	if err := json.Unmarshal([]byte(out), &snaps); err != nil {
		t.Fatalf("bad json: %v\n%s", err, out)
	}
	if len(snaps) != 1 || len(snaps[0].Symbols) != 2 {
		t.Fatalf("unexpected dump %+v", snaps)
	}
	for _, s := range snaps[0].Symbols {
		if s.Kind != "class" {
			t.Fatalf("kind filter let %s through", s.Kind)
		}
	}

	out, err = run(t, "--config=", "dump", path)
	if err != nil || !strings.Contains(out, "geo.Square") || !strings.Contains(out, "<: Shape") {
		t.Fatalf("text dump: %v\n%s", err, out)
	}

	bin := filepath.Join(t.TempDir(), "geo.mp")
	if _, err := run(t, "--config=", "dump", "--format=msgpack", "-o", bin, path); err != nil {
		t.Fatalf("msgpack dump: %v", err)
	}
	f, err := os.Open(bin)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	snap, err := driver.DecodeSnapshot(f)
	if err != nil || snap.Unit != "geo" {
		t.Fatalf("decoded %+v, err %v", snap, err)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "version", "--format=json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if payload.Tool != "lumen" || payload.Version == "" || payload.GitCommit != "unknown" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if _, err := run(t, "version", "--format=xml"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}
