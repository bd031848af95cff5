// Package graph provides the in-memory road network model used by the search
// engine: nodes with geographic coordinates and directed, weighted edges.
//
// # Why Graph Package Exists
//
// Every other part of the system reads road networks but none of them should
// care where a network came from. Graph data arrives from files, from the
// SQLite graph store, or from a test fixture; this package turns all of them
// into one immutable value with a small read-only API:
//
//   - Node lookup by id and coordinate lookup (used by heuristics)
//   - Outgoing edge enumeration (used by the traversal loop)
//   - Bounds and counts (used by the graph store and the HTTP API)
//
// # Multigraph Semantics
//
// Road networks exported by osmnx are multigraphs: two intersections may be
// connected by several parallel ways of different length. Edges are kept
// exactly as loaded, in insertion order, and the search considers every one of
// them.
//
// # Lifecycle
//
//  1. **Construction:** a Builder collects nodes and edges (directly or from a
//     Document decoded from JSON, YAML or gob).
//  2. **Validation:** Build rejects dangling endpoints and negative lengths.
//  3. **Use:** the resulting Graph is never mutated again.
//
// # Thread-Safety
//
// A built Graph is read-only. Any number of search sessions may read it
// concurrently without synchronization.
package graph
