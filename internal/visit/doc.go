// Package visit streams node-visit events from a running search to a sink.
//
// # Why Visit Package Exists
//
// A search loop is CPU-bound and must not wait on a network round trip for
// every expanded node. The Emitter decouples the two: the search pushes
// events into a bounded queue and a single delivery goroutine hands them to
// the Sink in production order. When the sink falls behind, the overflow
// policy decides what gives way. DropOldest discards the oldest undelivered
// event, so the search never stalls and the client always sees the most
// recent part of the frontier. Block applies backpressure until the session
// context ends.
//
// # Lifecycle
//
// An Emitter is created per session. Close waits until every queued event
// has been delivered. Abort discards whatever is still queued and returns
// once the delivery goroutine has exited; sessions use it on cancellation so
// no event is delivered after the cancel point. Both are idempotent.
//
// # Delivery Guarantees
//
// Delivery is best effort. Events are never reordered or duplicated, but they
// may be dropped under overflow, after Abort, or when the sink fails. Sink
// errors are logged and counted; they do not stop the search.
package visit
