package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/specialistvlad/pathfinder/internal/ctxlog"
	"github.com/specialistvlad/pathfinder/internal/graph"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
)

// locationQuery filters the graph listing by a coordinate.
type locationQuery struct {
	Lat *float64 `form:"lat" binding:"required_with=Lon"`
	Lon *float64 `form:"lon" binding:"required_with=Lat"`
}

func (s *Server) handleListGraphs(c *gin.Context) {
	var q locationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	var (
		infos []graphstore.Info
		err   error
	)
	if q.Lat != nil {
		loc, ok := s.graphs.(graphstore.Locator)
		if !ok {
			fail(c, statusFor(graphstore.ErrNoLocator), graphstore.ErrNoLocator)
			return
		}
		infos, err = loc.Contains(c.Request.Context(), graph.Coordinate{Lat: *q.Lat, Lon: *q.Lon})
	} else {
		infos, err = s.graphs.List(c.Request.Context())
	}
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	if infos == nil {
		infos = []graphstore.Info{}
	}
	c.JSON(http.StatusOK, gin.H{"graphs": infos})
}

func (s *Server) handleGetGraph(c *gin.Context) {
	ctx := c.Request.Context()
	place := c.Param("place")

	info, err := s.graphs.Info(ctx, place)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	body := gin.H{"place_name": place, "info": info}

	if c.Query("include_data") == "true" {
		g, err := s.graphs.Graph(ctx, place)
		if err != nil {
			fail(c, statusFor(err), err)
			return
		}
		body["graph_data"] = graph.NewDocument(g)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handlePutGraph(c *gin.Context) {
	w, ok := s.graphs.(graphstore.Writer)
	if !ok {
		fail(c, http.StatusMethodNotAllowed, graphstore.ErrReadOnly)
		return
	}

	format := graph.FormatJSON
	if ct := c.ContentType(); strings.Contains(ct, "yaml") {
		format = graph.FormatYAML
	}
	g, err := graph.Decode(c.Request.Body, format)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	place := c.Param("place")
	info, err := w.Put(c.Request.Context(), place, g)
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	ctxlog.FromContext(c.Request.Context()).Info("Graph imported.", "graph", place, "node_count", info.NodeCount, "edge_count", info.EdgeCount)
	c.JSON(http.StatusCreated, gin.H{"place_name": place, "info": info})
}

func (s *Server) handleDeleteGraph(c *gin.Context) {
	w, ok := s.graphs.(graphstore.Writer)
	if !ok {
		fail(c, http.StatusMethodNotAllowed, graphstore.ErrReadOnly)
		return
	}
	if err := w.Delete(c.Request.Context(), c.Param("place")); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}
