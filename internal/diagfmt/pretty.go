package diagfmt

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"lumen/internal/driver"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	locColor     = color.New(color.Bold)
	noteColor    = color.New(color.FgBlue)
	gutterColor  = color.New(color.FgBlue)
)

func severityColor(sev string) *color.Color {
	switch sev {
	case "ERROR":
		return errorColor
	case "WARNING":
		return warningColor
	default:
		return infoColor
	}
}

// Pretty prints the diagnostics of snap, one header line each:
//
//	<path>:<line>:<col>: <severity>[<code>]: <message>
//
// followed by the source line and a caret when ShowSource is set, then the
// notes. Colors follow color.NoColor.
func Pretty(w io.Writer, snap *driver.Snapshot, opts PrettyOpts) error {
	lines := sourceLines{}
	for _, d := range snap.Diagnostics {
		if opts.NoWarnings && d.Severity == "WARNING" {
			continue
		}
		loc := location(d.File, d.Line, d.Col, d.Location, opts.PathMode, opts.BaseDir)
		if _, err := fmt.Fprintf(w, "%s %s %s\n",
			locColor.Sprint(loc+":"),
			severityColor(d.Severity).Sprintf("%s[%s]:", strings.ToLower(d.Severity), d.Code),
			d.Message); err != nil {
			return err
		}
		if opts.ShowSource {
			if err := lines.excerpt(w, d.File, d.Line, d.Col); err != nil {
				return err
			}
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				nloc := location(n.File, n.Line, n.Col, n.Location, opts.PathMode, opts.BaseDir)
				if _, err := fmt.Fprintf(w, "    %s %s: %s\n", noteColor.Sprint("note:"), nloc, n.Message); err != nil {
					return err
				}
			}
		}
	}
	if snap.Dropped > 0 {
		if _, err := fmt.Fprintf(w, "%s: %d more diagnostics not shown\n", snap.Unit, snap.Dropped); err != nil {
			return err
		}
	}
	return nil
}

// Short prints one uncolored line per diagnostic.
func Short(w io.Writer, snap *driver.Snapshot, opts PrettyOpts) error {
	for _, d := range snap.Diagnostics {
		if opts.NoWarnings && d.Severity == "WARNING" {
			continue
		}
		loc := location(d.File, d.Line, d.Col, d.Location, opts.PathMode, opts.BaseDir)
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, strings.ToLower(d.Severity), d.Code, d.Message); err != nil {
			return err
		}
	}
	return nil
}

// sourceLines caches tree files read for excerpts. Unreadable files are
// remembered as empty and produce no excerpt.
type sourceLines map[string][]string

func (s sourceLines) excerpt(w io.Writer, file string, line, col uint32) error {
	if file == "" || line == 0 {
		return nil
	}
	text, ok := s[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err == nil {
			text = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		s[file] = text
	}
	if int(line) > len(text) {
		return nil
	}
	src := strings.ReplaceAll(text[line-1], "\t", " ")
	num := fmt.Sprint(line)
	pad := strings.Repeat(" ", len(num))
	caret := ""
	if col > 0 && int(col) <= len(src)+1 {
		caret = strings.Repeat(" ", int(col)-1) + errorColor.Sprint("^")
	}
	_, err := fmt.Fprintf(w, " %s %s %s\n %s %s %s\n",
		gutterColor.Sprint(num), gutterColor.Sprint("|"), src,
		pad, gutterColor.Sprint("|"), caret)
	return err
}
