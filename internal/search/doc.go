// Package search implements single-pair shortest-path search over a road
// graph: uniform-cost search (Dijkstra) and heuristic-guided search (A*).
//
// # Why Search Package Exists
//
// Both variants share one traversal. They differ only in the priority a
// relaxed neighbor receives: uniform-cost search uses the candidate distance,
// heuristic-guided search adds an estimate of the remaining distance to the
// destination. The traversal is therefore written once (traverse) and
// parameterized by a priority function; each variant is a small type that
// satisfies the Algorithm interface.
//
// # Observation
//
// Every node whose entry is popped and not found stale is reported to an
// Observer before its edges are relaxed. The destination itself is not
// reported: the search stops as soon as it surfaces. Observers must not block
// for long; the visit package provides a bounded, asynchronous emitter for
// that purpose. A nil Observer is allowed and the result is identical.
//
// # Outcomes
//
// A search ends in one of three outcomes. Found carries the path and its
// cost. Unreachable means the frontier was exhausted; the path is empty and
// the cost is +Inf. Cancelled means the context ended; no path is returned
// and Result.Cause holds the cancellation cause. None of these is an error.
// Errors are reserved for invalid input such as an unknown start node.
//
// # Determinism
//
// Edges are relaxed in insertion order and the frontier breaks priority ties
// by node id and push order, so identical inputs yield identical paths,
// costs and observation sequences.
package search
