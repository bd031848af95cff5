package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/heuristic"
	"github.com/specialistvlad/pathfinder/internal/search"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrInvalidAlgorithm),
		errors.Is(err, heuristic.ErrInvalidHeuristic):
		return http.StatusBadRequest
	case errors.Is(err, graphstore.ErrGraphNotFound),
		errors.Is(err, graph.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrInvalidGraph):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graphstore.ErrReadOnly):
		return http.StatusMethodNotAllowed
	case errors.Is(err, graphstore.ErrNoLocator):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		ctxlog.FromContext(c.Request.Context()).Error("Request failed.", "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
