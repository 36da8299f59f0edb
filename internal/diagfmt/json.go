package diagfmt

import (
	"encoding/json"
	"io"

	"lumen/internal/driver"
)

// LocationJSON is a position in a tree file.
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

// NoteJSON is a secondary position with its message.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is one diagnostic.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Args     []string     `json:"args,omitempty"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// UnitJSON holds the diagnostics of one unit.
type UnitJSON struct {
	Unit        string           `json:"unit"`
	Errors      int              `json:"errors"`
	Dropped     int              `json:"dropped,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

// DiagnosticsOutput is the root of the JSON document.
type DiagnosticsOutput struct {
	Units []UnitJSON `json:"units"`
	Count int        `json:"count"`
}

func makeLocation(file string, line, col uint32, fallback string, mode PathMode, base string) LocationJSON {
	if file == "" {
		return LocationJSON{File: fallback}
	}
	return LocationJSON{File: formatPath(file, mode, base), Line: line, Col: col}
}

// BuildDiagnosticsOutput assembles the JSON document without serializing it.
func BuildDiagnosticsOutput(snaps []*driver.Snapshot, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Units: make([]UnitJSON, 0, len(snaps))}
	for _, snap := range snaps {
		unit := UnitJSON{
			Unit:        snap.Unit,
			Errors:      snap.ErrorCount(),
			Dropped:     snap.Dropped,
			Diagnostics: []DiagnosticJSON{},
		}
		for _, d := range snap.Diagnostics {
			if opts.NoWarnings && d.Severity == "WARNING" {
				continue
			}
			if opts.Max > 0 && len(unit.Diagnostics) == opts.Max {
				unit.Dropped++
				continue
			}
			dj := DiagnosticJSON{
				Severity: d.Severity,
				Code:     d.Code,
				Title:    d.Title,
				Message:  d.Message,
				Location: makeLocation(d.File, d.Line, d.Col, d.Location, opts.PathMode, opts.BaseDir),
				Args:     d.Args,
			}
			if opts.IncludeNotes {
				for _, n := range d.Notes {
					dj.Notes = append(dj.Notes, NoteJSON{
						Message:  n.Message,
						Location: makeLocation(n.File, n.Line, n.Col, n.Location, opts.PathMode, opts.BaseDir),
					})
				}
			}
			unit.Diagnostics = append(unit.Diagnostics, dj)
		}
		out.Count += len(unit.Diagnostics)
		out.Units = append(out.Units, unit)
	}
	return out
}

// JSON writes the diagnostics of snaps as an indented JSON document.
func JSON(w io.Writer, snaps []*driver.Snapshot, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(snaps, opts))
}
