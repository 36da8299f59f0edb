package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lumen/internal/driver"
	"lumen/internal/ui"
)

type analyzeOutcome struct {
	results []driver.UnitResult
	stats   driver.Stats
	err     error
}

// runAnalyzeWithUI runs AnalyzeAll in the background while a progress
// program renders its events. The program exits once the event channel is
// closed.
func runAnalyzeWithUI(ctx context.Context, title string, units []driver.Unit, opts driver.Options) ([]driver.UnitResult, driver.Stats, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		o := opts
		o.Progress = driver.ChannelSink{Ch: events}
		res, stats, err := driver.AnalyzeAll(ctx, units, o)
		outcomeCh <- analyzeOutcome{results: res, stats: stats, err: err}
		close(events)
	}()

	names := make([]string, len(units))
	for i, u := range units {
		names[i] = u.Name
	}
	program := tea.NewProgram(ui.NewProgressModel(title, names, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// The program may quit early; keep draining so workers never block.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, outcome.stats, uiErr
	}
	return outcome.results, outcome.stats, outcome.err
}
