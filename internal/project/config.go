// Package project reads the lumen.toml project manifest: analysis options,
// tracing, driver settings and the list of compilation units.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"lumen/internal/trace"
)

// ErrInvalidConfig marks every manifest validation failure.
var ErrInvalidConfig = errors.New("invalid project configuration")

// Config is the decoded lumen.toml.
type Config struct {
	// Root is the directory of the manifest; unit patterns and the cache
	// directory are relative to it.
	Root string `toml:"-"`

	Analysis AnalysisConfig `toml:"analysis"`
	Trace    TraceConfig    `toml:"trace"`
	Driver   DriverConfig   `toml:"driver"`
	Units    []UnitConfig   `toml:"unit"`
}

type AnalysisConfig struct {
	// DefaultImports replaces the implicit import list when set; an empty
	// list disables implicit imports.
	DefaultImports []string `toml:"default_imports"`
	// MaxDiagnostics caps the diagnostics printed per unit, 0 = unlimited.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
	Mode   string `toml:"mode"`
}

type DriverConfig struct {
	// Jobs bounds concurrent unit analyses, 0 = GOMAXPROCS.
	Jobs int `toml:"jobs"`
	// CacheDir enables the on-disk result cache when set.
	CacheDir string `toml:"cache_dir"`
}

// UnitConfig names one compilation unit and the declaration-tree files it
// is built from. Files are glob patterns.
type UnitConfig struct {
	Name  string   `toml:"name"`
	Files []string `toml:"files"`
}

// Default returns the configuration used when no manifest exists.
func Default() Config {
	return Config{
		Analysis: AnalysisConfig{MaxDiagnostics: 100},
		Trace:    TraceConfig{Level: "off"},
	}
}

// Load reads and validates the manifest at path. Keys lumen does not know
// are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return Decode(string(data), filepath.Dir(abs))
}

// Decode parses manifest text whose relative paths resolve against root.
func Decode(text, root string) (Config, error) {
	cfg := Default()
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse TOML: %w", ErrInvalidConfig, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if meta.IsDefined("analysis", "default_imports") && cfg.Analysis.DefaultImports == nil {
		cfg.Analysis.DefaultImports = []string{}
	}
	cfg.Root = root
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges, trace settings and unit declarations.
func (c *Config) Validate() error {
	if c.Analysis.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: analysis.max_diagnostics must not be negative", ErrInvalidConfig)
	}
	for _, imp := range c.Analysis.DefaultImports {
		if strings.TrimSpace(imp) == "" || strings.Contains(imp, " ") {
			return fmt.Errorf("%w: malformed default import %q", ErrInvalidConfig, imp)
		}
	}
	if c.Driver.Jobs < 0 {
		return fmt.Errorf("%w: driver.jobs must not be negative", ErrInvalidConfig)
	}
	if _, err := c.TraceSettings(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Units))
	for i, u := range c.Units {
		name := strings.TrimSpace(u.Name)
		if name == "" {
			return fmt.Errorf("%w: unit #%d has no name", ErrInvalidConfig, i+1)
		}
		if seen[name] {
			return fmt.Errorf("%w: unit %q is declared twice", ErrInvalidConfig, name)
		}
		seen[name] = true
		if len(u.Files) == 0 {
			return fmt.Errorf("%w: unit %q lists no files", ErrInvalidConfig, name)
		}
		for _, pattern := range u.Files {
			if filepath.IsAbs(pattern) {
				return fmt.Errorf("%w: unit %q: pattern %q must be relative", ErrInvalidConfig, name, pattern)
			}
			if c.Root != "" && !pathWithin(c.Root, filepath.Join(c.Root, filepath.FromSlash(pattern))) {
				return fmt.Errorf("%w: unit %q: pattern %q escapes the project root", ErrInvalidConfig, name, pattern)
			}
		}
	}
	return nil
}

// TraceSettings converts the [trace] section into a tracer configuration.
// A relative output path resolves against the project root.
func (c *Config) TraceSettings() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	out := c.Trace.Output
	if out != "" && out != "-" && !filepath.IsAbs(out) && c.Root != "" {
		out = filepath.Join(c.Root, out)
	}
	return trace.Config{Level: level, Format: format, Mode: mode, OutputPath: out}, nil
}

// CachePath is the absolute cache directory, or "" when caching is off.
func (c *Config) CachePath() string {
	dir := c.Driver.CacheDir
	if dir == "" || filepath.IsAbs(dir) || c.Root == "" {
		return dir
	}
	return filepath.Join(c.Root, dir)
}

// Unit returns the unit named name.
func (c *Config) Unit(name string) (UnitConfig, bool) {
	i := slices.IndexFunc(c.Units, func(u UnitConfig) bool { return u.Name == name })
	if i < 0 {
		return UnitConfig{}, false
	}
	return c.Units[i], true
}

// UnitFiles expands the unit's patterns against the project root. The result
// keeps pattern order, sorts each pattern's matches and drops duplicates. A
// pattern that matches nothing is an error.
func (c *Config) UnitFiles(u UnitConfig) ([]string, error) {
	var out []string
	for _, pattern := range u.Files {
		full := filepath.Join(c.Root, filepath.FromSlash(pattern))
		matches, err := filepath.Glob(full)
		if err != nil {
			return nil, fmt.Errorf("%w: unit %q: bad pattern %q: %w", ErrInvalidConfig, u.Name, pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("unit %q: pattern %q matches no files: %w", u.Name, pattern, os.ErrNotExist)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}
