package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lumen/internal/trace"
)

const sampleManifest = `
[analysis]
default_imports = ["std.*", "util.Strings"]
max_diagnostics = 20

[trace]
level = "phase"
output = "out/trace.ndjson"

[driver]
jobs = 4
cache_dir = ".lumen/cache"

[[unit]]
name = "app"
files = ["app/*.yaml"]

[[unit]]
name = "lib"
files = ["lib/core.yaml", "lib/*.yaml"]
`

func TestDecodeManifest(t *testing.T) {
	root := t.TempDir()
	cfg, err := Decode(sampleManifest, root)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(cfg.Analysis.DefaultImports) != 2 || cfg.Analysis.MaxDiagnostics != 20 {
		t.Fatalf("bad analysis section %+v", cfg.Analysis)
	}
	if cfg.Driver.Jobs != 4 || cfg.CachePath() != filepath.Join(root, ".lumen", "cache") {
		t.Fatalf("bad driver section %+v (cache %q)", cfg.Driver, cfg.CachePath())
	}
	if len(cfg.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(cfg.Units))
	}
	if _, ok := cfg.Unit("lib"); !ok {
		t.Fatalf("unit lib not found")
	}

	tc, err := cfg.TraceSettings()
	if err != nil {
		t.Fatalf("TraceSettings: %v", err)
	}
	if tc.Level != trace.LevelPhase || tc.OutputPath != filepath.Join(root, "out", "trace.ndjson") {
		t.Fatalf("bad trace settings %+v", tc)
	}
}

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode("", "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Analysis.DefaultImports != nil {
		t.Fatalf("absent default_imports must stay nil")
	}
	if cfg.Analysis.MaxDiagnostics != 100 || cfg.CachePath() != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	cfg, err = Decode("[analysis]\ndefault_imports = []\n", "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Analysis.DefaultImports == nil || len(cfg.Analysis.DefaultImports) != 0 {
		t.Fatalf("an empty default_imports must disable implicit imports")
	}
}

func TestDecodeRejectsInvalidManifests(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"syntax", "[analysis\n", "failed to parse TOML"},
		{"unknown key", "[analysis]\nstrict = true\n", "unknown keys analysis.strict"},
		{"negative jobs", "[driver]\njobs = -1\n", "driver.jobs"},
		{"negative limit", "[analysis]\nmax_diagnostics = -5\n", "max_diagnostics"},
		{"trace level", "[trace]\nlevel = \"loud\"\n", "invalid trace level"},
		{"trace format", "[trace]\nformat = \"xml\"\n", "invalid trace format"},
		{"unnamed unit", "[[unit]]\nfiles = [\"a.yaml\"]\n", "has no name"},
		{"duplicate unit", "[[unit]]\nname = \"a\"\nfiles = [\"a.yaml\"]\n[[unit]]\nname = \"a\"\nfiles = [\"b.yaml\"]\n", "declared twice"},
		{"no files", "[[unit]]\nname = \"a\"\n", "lists no files"},
		{"escaping pattern", "[[unit]]\nname = \"a\"\nfiles = [\"../x.yaml\"]\n", "escapes the project root"},
		{"bad import", "[analysis]\ndefault_imports = [\"a b\"]\n", "malformed default import"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.text, "/project")
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error %v does not wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAndExpandUnits(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), sampleManifest)
	writeFile(t, filepath.Join(root, "app", "b.yaml"), "decls: []\n")
	writeFile(t, filepath.Join(root, "app", "a.yaml"), "decls: []\n")
	writeFile(t, filepath.Join(root, "lib", "core.yaml"), "decls: []\n")
	writeFile(t, filepath.Join(root, "lib", "extra.yaml"), "decls: []\n")

	cfg, err := Load(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	app, _ := cfg.Unit("app")
	files, err := cfg.UnitFiles(app)
	if err != nil {
		t.Fatalf("UnitFiles: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.yaml" {
		t.Fatalf("app files = %v", files)
	}

	lib, _ := cfg.Unit("lib")
	files, err = cfg.UnitFiles(lib)
	if err != nil {
		t.Fatalf("UnitFiles: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "core.yaml" || filepath.Base(files[1]) != "extra.yaml" {
		t.Fatalf("lib files = %v", files)
	}

	_, err = cfg.UnitFiles(UnitConfig{Name: "ghost", Files: []string{"ghost/*.yaml"}})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist for an empty pattern, got %v", err)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := FindProjectRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.EvalSymlinks(root)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Fatalf("root = %q, want %q", got, root)
	}
}

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeFile(t, a, "one")
	writeFile(t, b, "two")

	ab, err := HashFiles(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := HashFiles(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab == ba {
		t.Fatalf("file order must change the digest")
	}
	again, _ := HashFiles(a, b)
	if again != ab || len(ab.String()) != 64 {
		t.Fatalf("digest is not stable")
	}
	text, _ := ab.MarshalText()
	var parsed Digest
	if err := parsed.UnmarshalText(text); err != nil || parsed != ab {
		t.Fatalf("text form does not parse back: %v", err)
	}
	if err := parsed.UnmarshalText([]byte("abc")); err == nil {
		t.Fatalf("expected an error for a short digest")
	}
	if _, err := HashFiles(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
