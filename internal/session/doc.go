// Package session runs searches on behalf of callers and manages their
// lifecycle.
//
// # Why Session Package Exists
//
// A search needs more than an algorithm: a graph has to be loaded, the
// request validated, an event emitter attached, a deadline enforced and the
// run made cancellable from outside (a client pressing "stop" or
// disconnecting). The Manager owns those concerns so that the search package
// stays a pure computation over an in-memory graph.
//
// # Validation Order
//
// Start and Run fail fast, before any goroutine is spawned, in this order:
// algorithm and heuristic names (search.ErrInvalidAlgorithm,
// heuristic.ErrInvalidHeuristic), the graph (graphstore.ErrGraphNotFound),
// then the start and end nodes (graph.ErrNodeNotFound). Only a request that
// passes all checks becomes a Session.
//
// # Lifecycle
//
//  1. Start validates, assigns a UUID and registers the Session.
//  2. The session goroutine waits for a concurrency slot, runs the search and
//     streams visits through a visit.Emitter.
//  3. On completion the emitter is drained; on cancellation it is aborted so
//     nothing is delivered past the cancel point.
//  4. The Session is unregistered and Done is closed.
//
// Cancellation (Session.Cancel, Manager.Cancel, a deadline, or the parent
// context ending) yields a Result with search.OutcomeCancelled rather than
// an error.
package session
