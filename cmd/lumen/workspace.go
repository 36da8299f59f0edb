package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/driver"
	"lumen/internal/project"
	"lumen/internal/sema"
)

// workspace is what a command analyses: the effective configuration and the
// units selected from the manifest or the command line.
type workspace struct {
	cfg      project.Config
	manifest string
	units    []driver.Unit
}

// loadWorkspaceConfig reads lumen.toml from --config or found upwards from
// the working directory. Without a manifest the defaults apply.
func loadWorkspaceConfig(cmd *cobra.Command) (*workspace, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		found, ok, err := project.FindManifest(wd)
		if err != nil {
			return nil, err
		}
		if ok {
			configPath = found
		}
	}

	ws := &workspace{cfg: project.Default(), manifest: configPath}
	if configPath != "" {
		if ws.cfg, err = project.Load(configPath); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

// loadWorkspace loads the configuration and selects units. Positional
// arguments replace the manifest's units with one unit named after the first
// argument; only restricts the manifest's units by name.
func loadWorkspace(cmd *cobra.Command, args, only []string) (*workspace, error) {
	ws, err := loadWorkspaceConfig(cmd)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		files, err := expandArgs(args)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		ws.units = []driver.Unit{{Name: name, Files: files}}
		return ws, nil
	}

	if len(ws.cfg.Units) == 0 {
		if ws.manifest == "" {
			return nil, errors.New("no lumen.toml found; pass tree files or run inside a project")
		}
		return nil, fmt.Errorf("%s declares no [[unit]]", ws.manifest)
	}
	for _, u := range ws.cfg.Units {
		if len(only) > 0 && !slices.Contains(only, u.Name) {
			continue
		}
		files, err := ws.cfg.UnitFiles(u)
		if err != nil {
			return nil, err
		}
		ws.units = append(ws.units, driver.Unit{Name: u.Name, Files: files})
	}
	for _, name := range only {
		if _, ok := ws.cfg.Unit(name); !ok {
			return nil, fmt.Errorf("unknown unit %q", name)
		}
	}
	return ws, nil
}

// expandArgs turns file and directory arguments into tree paths. Directories
// contribute their *.yaml and *.yml files in name order.
func expandArgs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			ext := filepath.Ext(e.Name())
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%s contains no declaration trees", arg)
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}

// driverOptions merges the global flags over the manifest settings.
func (ws *workspace) driverOptions(cmd *cobra.Command, useCache bool) (driver.Options, error) {
	flags := cmd.Root().PersistentFlags()
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = ws.cfg.Driver.Jobs
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics < 0 {
		maxDiagnostics = ws.cfg.Analysis.MaxDiagnostics
	}

	opts := driver.Options{
		Jobs:           jobs,
		Sema:           sema.Options{DefaultImports: ws.cfg.Analysis.DefaultImports},
		MaxDiagnostics: maxDiagnostics,
	}
	if useCache {
		if opts.Cache, err = driver.OpenDiskCache(ws.cfg.CachePath()); err != nil {
			return driver.Options{}, err
		}
	}
	return opts, nil
}
