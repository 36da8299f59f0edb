package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/internal/trace"
)

// setupTracing merges the trace flags over the manifest's [trace] section,
// attaches the tracer to the command context and returns its cleanup.
func setupTracing(cmd *cobra.Command, base trace.Config) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	cfg := base

	output, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if output != "" {
		cfg.OutputPath = output
	}

	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if levelStr != "" {
		if cfg.Level, err = trace.ParseLevel(levelStr); err != nil {
			return nil, err
		}
	} else if output != "" && cfg.Level == trace.LevelOff {
		// an output file alone asks for phase spans
		cfg.Level = trace.LevelPhase
	}

	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if modeStr != "" {
		if cfg.Mode, err = trace.ParseMode(modeStr); err != nil {
			return nil, err
		}
	}

	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	if formatStr != "" {
		if cfg.Format, err = trace.ParseFormat(formatStr); err != nil {
			return nil, err
		}
	}

	if cfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	if cfg.OutputPath == "" && cfg.Output == nil {
		cfg.OutputPath = "-"
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		// ring mode writes its per-unit dump here
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
