package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lumen/internal/version"
)

// errAnalysisFailed is returned after error diagnostics were printed; main
// exits non-zero without printing it again.
var errAnalysisFailed = errors.New("analysis reported errors")

var rootCmd = &cobra.Command{
	Use:           "lumen",
	Short:         "Semantic analysis for lumen declaration trees",
	Long:          `lumen resolves names, types, inheritance and overloads of declaration trees and reports diagnostics`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		return setupProfiling(cmd)
	},
}

func init() {
	rootCmd.Version = version.Current().Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show per-unit timing information")
	flags.Int("max-diagnostics", -1, "maximum number of diagnostics per unit (-1 = from lumen.toml)")
	flags.Int("jobs", 0, "max units analysed in parallel (0 = from lumen.toml or GOMAXPROCS)")
	flags.String("config", "", "path to lumen.toml (default: search upwards from the working directory)")
	flags.String("trace", "", "trace output file ('-' for stderr)")
	flags.String("trace-level", "", "trace level (off|unit|phase|node)")
	flags.String("trace-mode", "", "trace storage mode (stream|ring)")
	flags.String("trace-format", "", "trace format (auto|text|ndjson)")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
}

func main() {
	err := rootCmd.Execute()
	if stopErr := stopProfiling(); stopErr != nil {
		fmt.Fprintln(os.Stderr, "failed to write profiles:", stopErr)
	}
	if err != nil {
		if !errors.Is(err, errAnalysisFailed) {
			fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		}
		os.Exit(1)
	}
}

// setupColor applies the --color flag to every colorized writer.
func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(os.Stdout) || os.Getenv("NO_COLOR") != ""
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
