package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
	"github.com/specialistvlad/pathfinder/internal/search"
	"github.com/specialistvlad/pathfinder/internal/session"
)

// RouteRequest is the input of /api/pathfinding/route, read from the JSON
// body or the query string.
type RouteRequest struct {
	PlaceName      string `json:"place_name" form:"place_name" binding:"required"`
	StartNode      *int64 `json:"start_node" form:"start_node" binding:"required"`
	EndNode        *int64 `json:"end_node" form:"end_node" binding:"required"`
	Algorithm      string `json:"algorithm" form:"algorithm"`
	AstarHeuristic string `json:"astar_heuristic" form:"astar_heuristic"`
	// Timeout is a Go duration such as "5s"; empty uses the server default.
	Timeout string `json:"timeout" form:"timeout"`
}

func (s *Server) handleRoute(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	var timeout time.Duration
	if req.Timeout != "" {
		d, err := time.ParseDuration(req.Timeout)
		if err != nil || d < 0 {
			fail(c, http.StatusBadRequest, fmt.Errorf("invalid timeout %q", req.Timeout))
			return
		}
		timeout = d
	}

	res, err := s.manager.Run(c.Request.Context(), session.Request{
		Graph:     req.PlaceName,
		Start:     graph.NodeID(*req.StartNode),
		End:       graph.NodeID(*req.EndNode),
		Algorithm: req.Algorithm,
		Heuristic: req.AstarHeuristic,
		Timeout:   timeout,
	}, nil)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}

	if res.Outcome == search.OutcomeCancelled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search cancelled", "result": res.Summary()})
		return
	}
	c.JSON(http.StatusOK, res.Summary())
}

type heuristicInfo struct {
	Name       string `json:"name"`
	Admissible bool   `json:"admissible"`
}

func (s *Server) handleHeuristics(c *gin.Context) {
	names := heuristic.Names()
	out := make([]heuristicInfo, 0, len(names))
	for _, name := range names {
		k, _ := heuristic.Parse(name)
		out = append(out, heuristicInfo{Name: name, Admissible: k.Admissible()})
	}
	opts := s.manager.Options()
	c.JSON(http.StatusOK, gin.H{
		"algorithms":        search.Names(),
		"heuristics":        out,
		"default_algorithm": opts.Algorithm,
		"default_heuristic": opts.Heuristic,
	})
}

func (s *Server) handleSessions(c *gin.Context) {
	sessions := s.manager.Sessions()
	if sessions == nil {
		sessions = []session.Info{}
	}
	c.JSON(http.StatusOK, gin.H{"active": len(sessions), "sessions": sessions})
}

func (s *Server) handleGetSession(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.manager.Get(id)
	if !ok {
		fail(c, http.StatusNotFound, errors.New("session "+id+" not found"))
		return
	}
	c.JSON(http.StatusOK, sess.Info())
}

func (s *Server) handleCancelSession(c *gin.Context) {
	id := c.Param("id")
	if !s.manager.Cancel(id) {
		fail(c, http.StatusNotFound, errors.New("session "+id+" not found"))
		return
	}
	c.Status(http.StatusAccepted)
}
