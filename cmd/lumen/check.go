package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lumen/internal/diagfmt"
	"lumen/internal/driver"
	"lumen/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [tree.yaml|dir ...]",
	Short: "Analyse declaration trees and report diagnostics",
	Long: `Analyse the units of the current project, or the given tree files as one unit,
and print the diagnostics. The exit status is non-zero when any unit has errors.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().StringSlice("unit", nil, "analyse only the named manifest units")
	checkCmd.Flags().Bool("no-warnings", false, "hide warnings")
	checkCmd.Flags().Bool("with-notes", true, "print diagnostic notes")
	checkCmd.Flags().Bool("with-source", false, "print the offending tree line under each diagnostic")
	checkCmd.Flags().String("path-mode", "auto", "path display (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("cache", false, "serve unchanged units from the disk cache")
	checkCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "short", "json", "sarif":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, short, json or sarif)", format)
	}
	only, err := cmd.Flags().GetStringSlice("unit")
	if err != nil {
		return fmt.Errorf("failed to get unit flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	withSource, err := cmd.Flags().GetBool("with-source")
	if err != nil {
		return fmt.Errorf("failed to get with-source flag: %w", err)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("unsupported path mode %q", pathModeStr)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	uiMode, err := readUIMode(cmd)
	if err != nil {
		return err
	}

	results, stats, err := analyzeWorkspace(cmd, args, only, useCache, shouldUseTUI(cmd, uiMode, format))
	if err != nil {
		return err
	}

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}
	out := cmd.OutOrStdout()
	snaps := make([]*driver.Snapshot, 0, len(results))
	errorsTotal := 0
	for _, r := range results {
		snaps = append(snaps, r.Snapshot)
		errorsTotal += r.Snapshot.ErrorCount()
	}
	switch format {
	case "json":
		opts := diagfmt.JSONOpts{PathMode: pathMode, BaseDir: baseDir, IncludeNotes: withNotes, NoWarnings: noWarnings}
		if err := diagfmt.JSON(out, snaps, opts); err != nil {
			return err
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "lumen",
			ToolVersion:    version.Current().Version,
			InvocationArgs: os.Args[1:],
			BaseDir:        baseDir,
		}
		if err := diagfmt.Sarif(out, snaps, meta); err != nil {
			return err
		}
	default:
		opts := diagfmt.PrettyOpts{
			PathMode:   pathMode,
			BaseDir:    baseDir,
			ShowSource: withSource,
			ShowNotes:  withNotes,
			NoWarnings: noWarnings,
		}
		render := diagfmt.Pretty
		if format == "short" {
			render = diagfmt.Short
		}
		for _, snap := range snaps {
			if err := render(out, snap, opts); err != nil {
				return err
			}
		}
		if format == "pretty" && !quiet(cmd) {
			renderSummary(out, results, errorsTotal)
		}
	}
	if err := printTimings(cmd, results, stats); err != nil {
		return err
	}
	if errorsTotal > 0 {
		return errAnalysisFailed
	}
	return nil
}

// analyzeWorkspace runs the driver with tracing set up from the manifest and
// the global flags, optionally behind the live progress display.
func analyzeWorkspace(cmd *cobra.Command, args, only []string, useCache, useTUI bool) ([]driver.UnitResult, driver.Stats, error) {
	ws, err := loadWorkspace(cmd, args, only)
	if err != nil {
		return nil, driver.Stats{}, err
	}
	traceCfg, err := ws.cfg.TraceSettings()
	if err != nil {
		return nil, driver.Stats{}, err
	}
	cleanup, err := setupTracing(cmd, traceCfg)
	if err != nil {
		return nil, driver.Stats{}, err
	}
	defer cleanup()

	opts, err := ws.driverOptions(cmd, useCache)
	if err != nil {
		return nil, driver.Stats{}, err
	}
	if useTUI {
		return runAnalyzeWithUI(cmd.Context(), "checking", ws.units, opts)
	}
	return driver.AnalyzeAll(cmd.Context(), ws.units, opts)
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}

func renderSummary(out io.Writer, results []driver.UnitResult, errorsTotal int) {
	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	status := color.New(color.FgGreen, color.Bold).Sprint("ok")
	if errorsTotal > 0 {
		status = color.New(color.FgRed, color.Bold).Sprintf("%d error(s)", errorsTotal)
	}
	fmt.Fprintf(out, "%d unit(s) checked (%d cached): %s\n", len(results), cached, status)
}

// printTimings writes per-unit timings and driver counters to stderr when
// --timings is set.
func printTimings(cmd *cobra.Command, results []driver.UnitResult, stats driver.Stats) error {
	show, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if !show {
		return nil
	}
	errOut := cmd.ErrOrStderr()
	for _, r := range results {
		fmt.Fprintf(errOut, "unit %s\n%s", r.Snapshot.Unit, r.Snapshot.Timing.Summary())
	}
	fmt.Fprintln(errOut, stats)
	return nil
}
