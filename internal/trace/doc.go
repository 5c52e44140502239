// Package trace records what the backend is doing while it runs: one span
// for the build, one per translation unit and, at detail level, one per
// lowered function.
//
// Enable tracing from the command line:
//
//	mirc build --trace=- --trace-level=detail bundle.mirb
//
// Tracers:
//
//   - Nop: tracing disabled
//   - StreamTracer: writes every event as it happens (text or NDJSON)
//   - RingTracer: keeps the last events in memory for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Levels map onto scopes. LevelPhase shows driver and unit spans,
// LevelDetail adds function spans, LevelDebug shows everything.
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "translate lib", 0)
//	defer span.End("")
package trace
