package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lumen/internal/driver"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] [tree.yaml|dir ...]",
	Short: "Print the resolved declarations of each unit",
	Long: `Analyse the units and print their descriptors: kind, qualified name,
type, supertypes and location. The msgpack format writes the raw snapshots
that the disk cache stores.`,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	dumpCmd.Flags().StringSlice("unit", nil, "dump only the named manifest units")
	dumpCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	dumpCmd.Flags().String("kind", "", "only list descriptors of this kind (class|method|variable|...)")
}

func runDump(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	only, err := cmd.Flags().GetStringSlice("unit")
	if err != nil {
		return fmt.Errorf("failed to get unit flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	kind, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	switch format {
	case "text", "json":
	case "msgpack":
		if outPath == "" && isTerminal(os.Stdout) {
			return errors.New("refusing to write msgpack to a terminal; use --output")
		}
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or msgpack)", format)
	}

	results, _, err := analyzeWorkspace(cmd, args, only, false, false)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		defer bw.Flush()
		out = bw
	}

	snaps := make([]*driver.Snapshot, len(results))
	for i, r := range results {
		snaps[i] = filterSymbols(r.Snapshot, kind)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	case "msgpack":
		for _, s := range snaps {
			if err := s.Encode(out); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, s := range snaps {
			renderSnapshotText(out, s)
		}
		return nil
	}
}

// filterSymbols returns a copy of snap that keeps only symbols of kind.
func filterSymbols(snap *driver.Snapshot, kind string) *driver.Snapshot {
	if kind == "" {
		return snap
	}
	cp := *snap
	cp.Symbols = nil
	for _, s := range snap.Symbols {
		if s.Kind == kind {
			cp.Symbols = append(cp.Symbols, s)
		}
	}
	return &cp
}

var (
	unitColor = color.New(color.FgMagenta, color.Bold)
	kindColor = color.New(color.FgCyan)
)

func renderSnapshotText(out io.Writer, s *driver.Snapshot) {
	fmt.Fprintf(out, "%s %s\n", unitColor.Sprint("unit "+s.Unit), s.Hash.String()[:12])
	for _, sym := range s.Symbols {
		var sb strings.Builder
		sb.WriteString("  ")
		sb.WriteString(kindColor.Sprintf("%-14s", sym.Kind))
		if sym.Visibility != "" {
			sb.WriteString(sym.Visibility + " ")
		}
		if sym.Modality != "" && sym.Modality != "final" {
			sb.WriteString(sym.Modality + " ")
		}
		sb.WriteString(sym.FQName)
		if sym.Type != "" {
			sb.WriteString(": " + sym.Type)
		}
		if len(sym.Supertypes) > 0 {
			sb.WriteString(" <: " + strings.Join(sym.Supertypes, ", "))
		}
		if len(sym.Flags) > 0 {
			sb.WriteString(" [" + strings.Join(sym.Flags, " ") + "]")
		}
		if sym.Location != "" {
			sb.WriteString("  @" + sym.Location)
		}
		fmt.Fprintln(out, sb.String())
	}
	f := s.Facts
	fmt.Fprintf(out, "  facts: %d references, %d calls, %d typed expressions, %d ambiguous, %d delegations\n",
		f.References, f.Calls, f.Expressions, f.Ambiguous, f.Delegations)
	if n := s.ErrorCount(); n > 0 {
		fmt.Fprintf(out, "  %s\n", color.New(color.FgRed, color.Bold).Sprintf("%d error(s); run lumen check for details", n))
	}
}
