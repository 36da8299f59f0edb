package trace

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"
)

// ring is a fixed-capacity buffer of the latest events.
type ring struct {
	events  []Event
	next    int
	wrapped bool
	dropped int
}

func (r *ring) add(ev Event) {
	if r.wrapped {
		r.dropped++
	}
	r.events[r.next] = ev
	r.next++
	if r.next == len(r.events) {
		r.next, r.wrapped = 0, true
	}
}

func (r *ring) ordered() []Event {
	if !r.wrapped {
		return slices.Clone(r.events[:r.next])
	}
	return append(slices.Clone(r.events[r.next:]), r.events[:r.next]...)
}

// RingTracer keeps the latest events of each unit in memory, so one noisy
// unit cannot push out the history of another. Driver events, which have no
// unit, share a ring of their own.
type RingTracer struct {
	mu       sync.Mutex
	capacity int
	level    Level
	units    map[string]*ring
	order    []string // first-seen unit order

	out    io.Writer
	format Format
}

// NewRingTracer keeps up to capacity events per unit.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = DefaultRingSize
	}
	return &RingTracer{capacity: capacity, level: level, units: make(map[string]*ring)}
}

// DumpOnClose makes Close write the buffered events to w.
func (t *RingTracer) DumpOnClose(w io.Writer, format Format) *RingTracer {
	t.out, t.format = w, format
	return t
}

func (t *RingTracer) Emit(ev Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.units[ev.Unit]
	if !ok {
		r = &ring{events: make([]Event, t.capacity)}
		t.units[ev.Unit] = r
		t.order = append(t.order, ev.Unit)
	}
	r.add(ev)
}

func (t *RingTracer) Level() Level { return t.level }

// Units lists the units that emitted events, in first-seen order. The
// driver's events are listed under "".
func (t *RingTracer) Units() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.order)
}

// Events returns the retained events of unit, oldest first.
func (t *RingTracer) Events(unit string) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.units[unit]; ok {
		return r.ordered()
	}
	return nil
}

// Snapshot returns the retained events of every unit in emission order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	var all []Event
	for _, unit := range t.order {
		all = append(all, t.units[unit].ordered()...)
	}
	t.mu.Unlock()
	slices.SortFunc(all, func(a, b Event) int { return cmp.Compare(a.Seq, b.Seq) })
	return all
}

// Dump writes the retained events grouped by unit, driver events first. In
// text format each group opens with a header naming the unit and how many of
// its events were overwritten.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	units := t.Units()
	if i := slices.Index(units, ""); i > 0 {
		units = append(append([]string{""}, units[:i]...), units[i+1:]...)
	}
	for _, unit := range units {
		t.mu.Lock()
		r := t.units[unit]
		events, dropped := r.ordered(), r.dropped
		t.mu.Unlock()
		if format != FormatNDJSON {
			name := unit
			if name == "" {
				name = "(driver)"
			}
			if _, err := fmt.Fprintf(w, "== %s: %d events, %d dropped\n", name, len(events), dropped); err != nil {
				return err
			}
		}
		for i := range events {
			if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close dumps to the writer set by DumpOnClose, if any.
func (t *RingTracer) Close() error {
	if t.out == nil {
		return nil
	}
	err := t.Dump(t.out, t.format)
	if c, ok := t.out.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
