// Package diag defines the two failure classes the lowering backend reports.
//
// # Severities
//
//   - SevBug: an internal-consistency violation: a construct that earlier
//     phases must have eliminated (generic placeholder, raw unsized value type,
//     unbound path, ...) reached the backend. The input broke its contract.
//   - SevTodo: a recognised construct the backend does not lower yet. These
//     are expected to shrink over time and must never be silently skipped.
//
// Neither is retryable. The backend is a pure function of its inputs, so a
// failure aborts the compilation unit that produced it.
//
// # Location
//
// Error carries the item Span handed down by upstream phases plus a Where
// string naming the position inside the backend's input (function path,
// basic block, statement index). Producers create errors with Bug/Todo at the
// point of detection; callers higher up attach context with At as the error
// propagates, the same way fmt.Errorf("%w") chains are built elsewhere.
package diag
