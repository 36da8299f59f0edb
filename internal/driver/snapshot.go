package driver

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"lumen/internal/attrs"
	"lumen/internal/bindings"
	"lumen/internal/diag"
	"lumen/internal/observ"
	"lumen/internal/project"
	"lumen/internal/sema"
	"lumen/internal/source"
	"lumen/internal/symbols"
)

// snapshotSchema is bumped whenever the encoded layout changes; cached
// snapshots of another schema are ignored.
const snapshotSchema uint16 = 1

// Snapshot is the frozen, serializable model of one analysed unit. It is
// what the disk cache stores and what `lumen dump` prints.
type Snapshot struct {
	Schema uint16         `json:"schema" msgpack:"schema"`
	Unit   string         `json:"unit" msgpack:"unit"`
	Hash   project.Digest `json:"hash" msgpack:"hash"`
	Files  []string       `json:"files" msgpack:"files"`

	Symbols     []SymbolRecord     `json:"symbols" msgpack:"symbols"`
	Diagnostics []DiagnosticRecord `json:"diagnostics" msgpack:"diagnostics"`
	// Dropped counts diagnostics beyond the configured limit.
	Dropped int        `json:"dropped,omitempty" msgpack:"dropped,omitempty"`
	Facts   FactCounts `json:"facts" msgpack:"facts"`

	Timing observ.Report `json:"timing" msgpack:"timing"`
}

// SymbolRecord describes one user descriptor.
type SymbolRecord struct {
	ID         uint32   `json:"id" msgpack:"id"`
	Name       string   `json:"name" msgpack:"name"`
	FQName     string   `json:"fq_name" msgpack:"fq_name"`
	Kind       string   `json:"kind" msgpack:"kind"`
	Owner      uint32   `json:"owner,omitempty" msgpack:"owner,omitempty"`
	Visibility string   `json:"visibility,omitempty" msgpack:"visibility,omitempty"`
	Modality   string   `json:"modality,omitempty" msgpack:"modality,omitempty"`
	Flags      []string `json:"flags,omitempty" msgpack:"flags,omitempty"`
	Type       string   `json:"type,omitempty" msgpack:"type,omitempty"`
	Supertypes []string `json:"supertypes,omitempty" msgpack:"supertypes,omitempty"`
	Location   string   `json:"location,omitempty" msgpack:"location,omitempty"`
}

// DiagnosticRecord is a diagnostic with its position resolved. Location is
// the rendered path:line:col; File is empty when the position is unknown.
type DiagnosticRecord struct {
	Severity string       `json:"severity" msgpack:"severity"`
	Code     string       `json:"code" msgpack:"code"`
	Title    string       `json:"title" msgpack:"title"`
	Message  string       `json:"message" msgpack:"message"`
	Location string       `json:"location" msgpack:"location"`
	File     string       `json:"file,omitempty" msgpack:"file,omitempty"`
	Line     uint32       `json:"line,omitempty" msgpack:"line,omitempty"`
	Col      uint32       `json:"col,omitempty" msgpack:"col,omitempty"`
	Args     []string     `json:"args,omitempty" msgpack:"args,omitempty"`
	Notes    []NoteRecord `json:"notes,omitempty" msgpack:"notes,omitempty"`
}

// NoteRecord is a secondary position attached to a diagnostic.
type NoteRecord struct {
	Message  string `json:"message" msgpack:"message"`
	Location string `json:"location" msgpack:"location"`
	File     string `json:"file,omitempty" msgpack:"file,omitempty"`
	Line     uint32 `json:"line,omitempty" msgpack:"line,omitempty"`
	Col      uint32 `json:"col,omitempty" msgpack:"col,omitempty"`
}

func (d DiagnosticRecord) IsError() bool { return d.Severity == diag.SevError.String() }

// FactCounts summarizes the per-expression facts of the unit.
type FactCounts struct {
	References  int `json:"references" msgpack:"references"`
	Calls       int `json:"calls" msgpack:"calls"`
	Expressions int `json:"expressions" msgpack:"expressions"`
	Ambiguous   int `json:"ambiguous" msgpack:"ambiguous"`
	Delegations int `json:"delegations" msgpack:"delegations"`
}

// NewSnapshot freezes res. maxDiagnostics <= 0 keeps every diagnostic.
func NewSnapshot(unit string, hash project.Digest, files []string, res *sema.Result, fset *source.FileSet, maxDiagnostics int) *Snapshot {
	s := &Snapshot{
		Schema: snapshotSchema,
		Unit:   unit,
		Hash:   hash,
		Files:  files,
	}
	s.addDiagnostics(res.Diagnostics, fset, maxDiagnostics)

	table := res.Table
	for _, id := range table.Symbols.IDs() {
		sym := table.Symbols.Get(id)
		if sym.Has(symbols.FlagBuiltin) || id == table.ErrorSymbol || id == table.Root || id == res.Builtins.Std {
			continue
		}
		s.Symbols = append(s.Symbols, symbolRecord(res, fset, id, sym))
	}

	store := res.Store
	s.Facts = FactCounts{
		References:  len(attrs.Keys(store, bindings.ReferenceTarget)),
		Calls:       len(attrs.Keys(store, bindings.ResolvedCall)),
		Expressions: len(attrs.Keys(store, bindings.ExpressionType)),
		Ambiguous:   len(attrs.Keys(store, bindings.AmbiguousTarget)),
		Delegations: len(attrs.Keys(store, bindings.DelegatedCall)),
	}
	return s
}

// failedSnapshot records a unit whose trees could not be loaded. The
// diagnostic has no position; the unit name stands in for it.
func failedSnapshot(unit string, hash project.Digest, files []string, d diag.Diagnostic) *Snapshot {
	return &Snapshot{
		Schema: snapshotSchema,
		Unit:   unit,
		Hash:   hash,
		Files:  files,
		Diagnostics: []DiagnosticRecord{{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: unit,
		}},
	}
}

func (s *Snapshot) addDiagnostics(ds []diag.Diagnostic, fset *source.FileSet, limit int) {
	bag := diag.NewBag(limit)
	rep := diag.NewDedupReporter(limitReporter{bag: bag, dropped: &s.Dropped})
	for _, d := range ds {
		rep.Report(d)
	}
	bag.Sort()
	for _, d := range bag.Items() {
		rec := DiagnosticRecord{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: fset.Format(d.Primary),
			File:     fset.Path(d.Primary.File),
			Line:     d.Primary.Line,
			Col:      d.Primary.Col,
			Args:     d.Args,
		}
		for _, n := range d.Notes {
			rec.Notes = append(rec.Notes, NoteRecord{
				Message:  n.Msg,
				Location: fset.Format(n.Span),
				File:     fset.Path(n.Span.File),
				Line:     n.Span.Line,
				Col:      n.Span.Col,
			})
		}
		s.Diagnostics = append(s.Diagnostics, rec)
	}
}

// limitReporter fills a bounded bag and counts what did not fit.
type limitReporter struct {
	bag     *diag.Bag
	dropped *int
}

func (r limitReporter) Report(d diag.Diagnostic) {
	if !r.bag.Add(d) {
		*r.dropped++
	}
}

func symbolRecord(res *sema.Result, fset *source.FileSet, id symbols.SymbolID, sym *symbols.Symbol) SymbolRecord {
	table, namer := res.Table, res.Table.Namer()
	rec := SymbolRecord{
		ID:     uint32(id),
		Name:   table.Name(id),
		FQName: table.FQName(id),
		Kind:   sym.Kind.String(),
		Owner:  uint32(sym.Owner),
		Flags:  sym.Flags.Strings(),
	}
	if sym.Kind != symbols.SymbolPackage && sym.Kind != symbols.SymbolTypeParameter {
		rec.Visibility = sym.Visibility.String()
	}
	if sym.Kind == symbols.SymbolClass || sym.IsCallable() || sym.Has(symbols.FlagProperty) {
		rec.Modality = sym.Modality.String()
	}
	typ := res.TypeOf(id)
	if sym.Kind == symbols.SymbolTypeParameter {
		typ = sym.Bound
	}
	if typ.IsValid() {
		rec.Type = res.Types.Format(typ, namer)
	}
	for _, st := range sym.Supertypes {
		rec.Supertypes = append(rec.Supertypes, res.Types.Format(st, namer))
	}
	if sym.Span.Line != 0 {
		rec.Location = fset.Format(sym.Span)
	}
	return rec
}

// ErrorCount returns the number of error diagnostics kept in the snapshot.
func (s *Snapshot) ErrorCount() int {
	n := 0
	for _, d := range s.Diagnostics {
		if d.IsError() {
			n++
		}
	}
	return n
}

// Encode writes the snapshot as msgpack.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding snapshot of %s: %w", s.Unit, err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by Encode.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &s, nil
}
