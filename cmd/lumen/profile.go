package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/internal/prof"
)

// profiling is the session started for the current command, if any.
var profiling *prof.Session

// setupProfiling starts the profilers requested by the persistent flags.
func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var paths prof.Paths
	var err error
	if paths.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if paths.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if paths.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !paths.Enabled() {
		return nil
	}
	if profiling, err = prof.Start(paths); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}
	return nil
}

// stopProfiling finishes the active session. It is safe to call when none
// was started.
func stopProfiling() error {
	s := profiling
	profiling = nil
	return s.Stop()
}
