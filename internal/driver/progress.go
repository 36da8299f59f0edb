package driver

import "time"

// Stage is a step of one unit's analysis.
type Stage string

const (
	StageHash     Stage = "hash"
	StageLoad     Stage = "load"
	StageAnalyze  Stage = "analyze"
	StageSnapshot Stage = "snapshot"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the unit is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage has started.
	StatusWorking Status = "working"
	// StatusCached indicates the snapshot came from the disk cache.
	StatusCached Status = "cached"
	// StatusDone indicates the unit finished, with or without diagnostics.
	StatusDone Status = "done"
	// StatusError indicates the unit could not be loaded.
	StatusError Status = "error"
)

// Event reports progress for one unit.
type Event struct {
	Unit    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
