// Package trace records what the driver and the resolver do as span and
// point events. Every event names the unit and resolver phase it belongs to;
// span ends carry the unit's diagnostic count and queued inferences.
//
//	lumen check --trace=- --trace-level=phase project/
//
// Stream mode writes events as they happen, in text or NDJSON. Concurrent
// units interleave there; ring mode instead keeps the latest events per unit
// and writes them grouped by unit when the command ends.
//
// Tracers travel in a context together with the current Frame:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, trace.FrameOf(ctx), "geo")
//	ctx = trace.WithFrame(ctx, span.Frame())
//	defer span.End("")
package trace
