package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/session"
	"github.com/specialistvlad/pathfinder/internal/visit"
)

// Event names.
const (
	EventFindPath       = "find_path"
	EventCancel         = "cancel"
	EventSessionStarted = "session_started"
	EventNodeVisit      = "node_visit"
	EventPathResult     = "path_result"
	EventPathError      = "path_error"
)

// Error codes carried by PathError.
const (
	CodeInvalidRequest = "invalid_request"
	CodeGraphNotFound  = "graph_not_found"
	CodeNodeNotFound   = "node_not_found"
	CodeInternal       = "internal"
)

// FindPathRequest uses the same field names as the HTTP route endpoint.
type FindPathRequest struct {
	RequestID      string `json:"request_id,omitempty"`
	PlaceName      string `json:"place_name"`
	StartNode      *int64 `json:"start_node"`
	EndNode        *int64 `json:"end_node"`
	Algorithm      string `json:"algorithm,omitempty"`
	AstarHeuristic string `json:"astar_heuristic,omitempty"`
	Timeout        string `json:"timeout,omitempty"`
}

// SessionStarted acknowledges a find_path request.
type SessionStarted struct {
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id"`
	Algorithm string `json:"algorithm"`
}

// NodeVisit is a visit event tagged with the request that started its
// session, so a client can route it before session_started arrives.
type NodeVisit struct {
	RequestID string `json:"request_id,omitempty"`
	visit.Event
}

// PathResult is the terminal event of a session. Events.Delivered tells the
// client how many node_visit events were sent before it.
type PathResult struct {
	RequestID string `json:"request_id,omitempty"`
	session.Summary
}

// PathError reports a request rejected before its search started.
type PathError struct {
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

// CancelRequest targets one session by SessionID or by the RequestID that
// started it. With neither set every session of the connection is stopped.
type CancelRequest struct {
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Decode converts a socket.io payload, which arrives as generic JSON values,
// into v.
func Decode(payload any, v any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

var errInvalidRequest = errors.New("invalid request")

func (r FindPathRequest) sessionRequest() (session.Request, error) {
	switch {
	case r.PlaceName == "":
		return session.Request{}, fmt.Errorf("%w: place_name is required", errInvalidRequest)
	case r.StartNode == nil:
		return session.Request{}, fmt.Errorf("%w: start_node is required", errInvalidRequest)
	case r.EndNode == nil:
		return session.Request{}, fmt.Errorf("%w: end_node is required", errInvalidRequest)
	}

	var timeout time.Duration
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil || d < 0 {
			return session.Request{}, fmt.Errorf("%w: timeout %q", errInvalidRequest, r.Timeout)
		}
		timeout = d
	}

	return session.Request{
		Graph:     r.PlaceName,
		Start:     graph.NodeID(*r.StartNode),
		End:       graph.NodeID(*r.EndNode),
		Algorithm: r.Algorithm,
		Heuristic: r.AstarHeuristic,
		Timeout:   timeout,
	}, nil
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, search.ErrInvalidAlgorithm),
		errors.Is(err, heuristic.ErrInvalidHeuristic):
		return CodeInvalidRequest
	case errors.Is(err, graphstore.ErrGraphNotFound):
		return CodeGraphNotFound
	case errors.Is(err, graph.ErrNodeNotFound):
		return CodeNodeNotFound
	default:
		return CodeInternal
	}
}
