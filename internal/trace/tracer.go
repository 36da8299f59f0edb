package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer records events. Emit must be safe for concurrent use: units are
// analysed in parallel and share one tracer.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

// Enabled reports whether t records events of scope.
func Enabled(t Tracer, scope Scope) bool {
	return t != nil && t.Level().ShouldEmit(scope)
}

// Mode selects where events go.
type Mode uint8

const (
	// ModeStream writes each event as it happens.
	ModeStream Mode = iota + 1
	// ModeRing keeps the last events of every unit and writes them grouped
	// by unit when the tracer closes.
	ModeRing
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name. The empty string is stream.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	default:
		return ModeStream, fmt.Errorf("invalid trace mode: %q (expected: stream|ring)", s)
	}
}

// Config describes a tracer.
type Config struct {
	Level  Level
	Mode   Mode
	Format Format // FormatAuto picks NDJSON for .json and .ndjson paths
	// Output wins over OutputPath; "-" or "" means stderr.
	Output     io.Writer
	OutputPath string
	// RingSize bounds the events kept per unit in ring mode.
	RingSize int
}

// DefaultRingSize is the per-unit capacity used when RingSize is unset.
const DefaultRingSize = 512

// New builds the tracer cfg describes. Closing it flushes and, for a file
// output, closes the file.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatFor(cfg.OutputPath)
	}
	switch cfg.Mode {
	case 0, ModeStream:
		return NewStreamTracer(w, cfg.Level, format), nil
	case ModeRing:
		size := cfg.RingSize
		if size <= 0 {
			size = DefaultRingSize
		}
		return NewRingTracer(size, cfg.Level).DumpOnClose(w, format), nil
	default:
		return nil, fmt.Errorf("unknown trace mode: %v", cfg.Mode)
	}
}

func formatFor(path string) Format {
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".json") {
		return FormatNDJSON
	}
	return FormatText
}

// keepOpen hides Close so that closing a tracer never closes stderr or a
// caller-owned writer.
type keepOpen struct{ io.Writer }

func openOutput(cfg Config) (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return keepOpen{cfg.Output}, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return keepOpen{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("open trace output: %w", err)
	}
	return f, nil
}
