// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// key/value store.
//
// # Purpose
//
// The store backs the process-local registries of the service: the set of
// running search sessions and the cache of decoded road graphs. Both are
// keyed by a string id and are written from many goroutines at once.
//
// # Characteristics
//
//   - **Ephemeral:** Lives for the lifetime of the process, not persistent
//   - **Thread-Safe:** Uses sync.Map for lock-free concurrent access in most cases
//   - **Typed:** The generic wrapper removes type assertions at call sites
//
// # Concurrency Model
//
// sync.Map suits this workload because keys are independent: one session
// finishing never contends with another starting, and cached graphs are
// written once and read many times.
//
// For a registry shared between several processes a different
// implementation (e.g., backed by Redis) would be needed.
package inmemorystore
