package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/specialistvlad/pathfinder/internal/graphstore"
	"github.com/specialistvlad/pathfinder/internal/session"
)

// Config holds the HTTP-level settings.
type Config struct {
	CORSOrigins []string
	RateLimit   float64
	RateBurst   int
}

// Server is the HTTP front end.
type Server struct {
	router  *gin.Engine
	manager *session.Manager
	graphs  graphstore.Store
	logger  *slog.Logger
}

// New builds the router. gatherer may be nil to disable /metrics.
func New(cfg Config, manager *session.Manager, graphs graphstore.Store, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	s := &Server{
		router:  gin.New(),
		manager: manager,
		graphs:  graphs,
		logger:  logger,
	}

	s.router.Use(gin.Recovery(), requestLogger(logger), cors.New(corsConfig(cfg.CORSOrigins)))

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Pathfinding Engine is running."})
	})
	s.router.GET("/health", s.handleHealth)
	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	pf := s.router.Group("/api/pathfinding")
	limit := rateLimit(cfg.RateLimit, cfg.RateBurst)
	pf.POST("/route", limit, s.handleRoute)
	pf.GET("/route", limit, s.handleRoute)
	pf.GET("/heuristics", s.handleHeuristics)
	pf.GET("/sessions", s.handleSessions)
	pf.GET("/sessions/:id", s.handleGetSession)
	pf.DELETE("/sessions/:id", s.handleCancelSession)

	g := s.router.Group("/graphs")
	g.GET("", s.handleListGraphs)
	g.GET("/:place", s.handleGetGraph)
	g.POST("/:place", s.handlePutGraph)
	g.DELETE("/:place", s.handleDeleteGraph)

	return s
}

// Mount serves h for every method under prefix, for example "/socket.io/".
func (s *Server) Mount(prefix string, h http.Handler) {
	s.router.Any(prefix+"*any", gin.WrapH(h))
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "active_sessions": s.manager.Active()})
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return config
}
