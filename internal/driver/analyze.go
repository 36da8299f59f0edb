// Package driver runs the semantic analysis over whole projects: it loads
// each unit's declaration trees, analyses units in parallel, freezes the
// results into snapshots and serves unchanged units from the disk cache.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"lumen/internal/ast"
	"lumen/internal/diag"
	"lumen/internal/observ"
	"lumen/internal/project"
	"lumen/internal/sema"
	"lumen/internal/source"
	"lumen/internal/trace"
	"lumen/internal/treefile"
	"lumen/internal/version"
)

// Unit is one compilation unit: a name and the tree files it is built from.
type Unit struct {
	Name  string
	Files []string
}

// Options configure AnalyzeAll.
type Options struct {
	// Jobs bounds concurrent units, <= 0 selects GOMAXPROCS.
	Jobs int
	// Sema is passed to every unit's analysis.
	Sema sema.Options
	// Cache serves and stores snapshots; nil disables caching. Units analysed
	// with a custom typer are never cached.
	Cache *DiskCache
	// MaxDiagnostics caps the diagnostics kept per snapshot, 0 = unlimited.
	MaxDiagnostics int
	// Progress receives per-unit events; nil disables reporting.
	Progress ProgressSink
}

// UnitResult is the outcome of one unit.
type UnitResult struct {
	Snapshot *Snapshot
	// Result is set only when the unit was analysed in this run; Files is
	// nil for cached snapshots.
	Result *sema.Result
	Files  *source.FileSet
	Cached bool
}

// Stats counts what AnalyzeAll did.
type Stats struct {
	Units      int64
	Analyzed   int64
	CacheHits  int64
	LoadErrors int64
	CacheFails int64
}

func (s Stats) String() string {
	return fmt.Sprintf("units: %d | analyzed: %d | cache hits: %d | load errors: %d | cache errors: %d",
		s.Units, s.Analyzed, s.CacheHits, s.LoadErrors, s.CacheFails)
}

type metrics struct {
	analyzed   atomic.Int64
	cacheHits  atomic.Int64
	loadErrors atomic.Int64
	cacheFails atomic.Int64
}

func (m *metrics) stats(units int) Stats {
	return Stats{
		Units:      int64(units),
		Analyzed:   m.analyzed.Load(),
		CacheHits:  m.cacheHits.Load(),
		LoadErrors: m.loadErrors.Load(),
		CacheFails: m.cacheFails.Load(),
	}
}

// AnalyzeAll analyses units concurrently. Results keep the order of units.
// The error is non-nil only when ctx is cancelled; per-unit problems are
// reported as diagnostics in the unit's snapshot.
func AnalyzeAll(ctx context.Context, units []Unit, opts Options) ([]UnitResult, Stats, error) {
	var m metrics
	if len(units) == 0 {
		return nil, m.stats(0), nil
	}
	tracer := opts.Sema.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(tracer, trace.ScopeDriver, trace.FrameOf(ctx), "analyze")
	defer func() { span.End(m.stats(len(units)).String()) }()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, u := range units {
		emit(opts.Progress, Event{Unit: u.Name, Stage: StageHash, Status: StatusQueued})
	}

	// each goroutine owns its index
	results := make([]UnitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := analyzeUnit(gctx, tracer, span.Frame(), u, opts, &m)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, m.stats(len(units)), err
	}
	return results, m.stats(len(units)), nil
}

func analyzeUnit(ctx context.Context, tracer trace.Tracer, parent trace.Frame, u Unit, opts Options, m *metrics) (UnitResult, error) {
	span := trace.Begin(tracer, trace.ScopeUnit, parent, u.Name)
	timer := observ.NewTimer()
	started := time.Now()
	var out UnitResult
	stage := func(st Stage) {
		emit(opts.Progress, Event{Unit: u.Name, Stage: st, Status: StatusWorking})
	}
	finish := func(st Stage, status Status, err error) {
		emit(opts.Progress, Event{Unit: u.Name, Stage: st, Status: status, Err: err, Elapsed: time.Since(started)})
	}
	defer func() {
		detail := "analyzed"
		if out.Cached {
			detail = "cached"
		}
		if out.Snapshot != nil {
			span.Counts(len(out.Snapshot.Diagnostics)+out.Snapshot.Dropped, 0)
		}
		span.End(detail)
	}()

	stage(StageHash)

	var (
		key     project.Digest
		hashErr error
	)
	timer.Measure("hash", func() string {
		key, hashErr = unitKey(u, opts)
		return strconv.Itoa(len(u.Files)) + " files"
	})
	if hashErr != nil {
		finish(StageHash, StatusError, hashErr)
		m.loadErrors.Add(1)
		out.Snapshot = failedSnapshot(u.Name, key, u.Files, loadDiagnostic(hashErr))
		out.Snapshot.Timing = timer.Report()
		return out, nil
	}

	cacheable := opts.Cache != nil && opts.Sema.Typer == nil
	if cacheable {
		var (
			snap *Snapshot
			hit  bool
		)
		timer.Measure("cache-read", func() string {
			var err error
			snap, hit, err = opts.Cache.Get(key)
			if err != nil {
				m.cacheFails.Add(1)
				return err.Error()
			}
			if hit {
				return "hit"
			}
			return "miss"
		})
		if hit {
			finish(StageHash, StatusCached, nil)
			m.cacheHits.Add(1)
			snap.Timing = timer.Report()
			out.Snapshot, out.Cached = snap, true
			return out, nil
		}
	}

	stage(StageLoad)
	fset := source.NewFileSet()
	out.Files = fset
	var (
		tree    *ast.Tree
		loadErr error
	)
	timer.Measure("load", func() string {
		tree, loadErr = treefile.Load(fset, u.Files...)
		if loadErr != nil {
			return "failed"
		}
		return strconv.Itoa(fset.Len()) + " trees"
	})
	if loadErr != nil {
		finish(StageLoad, StatusError, loadErr)
		m.loadErrors.Add(1)
		out.Snapshot = failedSnapshot(u.Name, key, u.Files, loadDiagnostic(loadErr))
		out.Snapshot.Timing = timer.Report()
		return out, nil
	}

	stage(StageAnalyze)
	var semaErr error
	timer.Measure("analyze", func() string {
		semaOpts := opts.Sema
		semaOpts.Tracer = tracer
		semaOpts.TraceFrame = span.Frame()
		out.Result, semaErr = sema.Analyze(ctx, tree, semaOpts)
		if semaErr != nil {
			return "cancelled"
		}
		return strconv.Itoa(len(out.Result.Diagnostics)) + " diagnostics"
	})
	if semaErr != nil {
		finish(StageAnalyze, StatusError, semaErr)
		return UnitResult{}, semaErr
	}
	m.analyzed.Add(1)

	stage(StageSnapshot)
	timer.Measure("snapshot", func() string {
		out.Snapshot = NewSnapshot(u.Name, key, u.Files, out.Result, fset, opts.MaxDiagnostics)
		return fmt.Sprintf("%d symbols", len(out.Snapshot.Symbols))
	})
	out.Snapshot.Timing = timer.Report()

	if cacheable {
		if err := opts.Cache.Put(key, out.Snapshot); err != nil {
			m.cacheFails.Add(1)
			trace.Point(tracer, trace.ScopeUnit, span.Frame(), "cache-write", err.Error())
		}
	}
	finish(StageSnapshot, StatusDone, nil)
	return out, nil
}

// unitKey digests everything a snapshot depends on: the tree files in order,
// the implicit import list, the diagnostic limit and the analyser version.
func unitKey(u Unit, opts Options) (project.Digest, error) {
	content, err := project.HashFiles(u.Files...)
	if err != nil {
		return project.Digest{}, err
	}
	imports := "<default>"
	if opts.Sema.DefaultImports != nil {
		imports = "[" + strings.Join(opts.Sema.DefaultImports, ",") + "]"
	}
	return project.Combine(content,
		project.Sum([]byte(u.Name)),
		project.Sum([]byte(imports)),
		project.Sum([]byte(strconv.Itoa(opts.MaxDiagnostics))),
		project.Sum([]byte(version.Current().Version)),
	), nil
}

// loadDiagnostic converts a read or decode failure into a diagnostic.
func loadDiagnostic(err error) diag.Diagnostic {
	code := diag.IOLoadFileError
	if errors.Is(err, treefile.ErrInvalidTree) {
		code = diag.IOInvalidTree
	}
	return diag.NewError(code, source.Span{}, err.Error())
}
