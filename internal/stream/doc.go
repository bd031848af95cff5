// Package stream exposes path searches over socket.io so that clients can
// watch the frontier expand in real time.
//
// # Protocol
//
// A client emits "find_path" with a FindPathRequest. The server answers with
// "session_started" carrying the session id, then one "node_visit" event per
// expanded node in expansion order, and finally exactly one of "path_result"
// (a session.Summary, also used for cancelled and unreachable outcomes) or
// "path_error" when the request was rejected before the search began. Every
// event echoes the request_id of the find_path that caused it.
//
// Events are written in that order, but clients that dispatch packets
// concurrently may observe them out of order. Visits carry a per-session seq
// starting at 1 and the result reports how many visits were delivered, which
// is enough to restore the order; the watch package does so.
//
// Emitting "cancel" with a session id or request id stops that session;
// without either every session owned by the connection is stopped.
// Disconnecting stops them too.
package stream
