package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	configflow "github.com/hearthhub/configflow"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/internal/util"
	"github.com/hearthhub/configflow/pkg/api"
)

// Server implements the HTTP API server for the config-flow engine
type Server struct {
	engine  *engine.Engine
	sockets util.Set[*Client]
	mu      sync.Mutex
}

var ErrInvalidJSON = errors.New("invalid JSON payload")

// NewServer creates a new HTTP API server
func NewServer(eng *engine.Engine) *Server {
	return &Server{
		engine:  eng,
		sockets: util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", s.handleHealth)

	// Flow endpoints
	flow := router.Group("/flow")
	{
		flow.GET("", s.listFlows)
		flow.POST("", s.startFlow)
		flow.GET("/:flowID", s.getFlow)
		flow.POST("/:flowID", s.advanceFlow)
		flow.POST("/:flowID/confirm", s.confirmFlow)
		flow.POST("/:flowID/next", s.nextStep)
	}

	// External-step callback
	router.POST("/callback/:flowID", s.handleCallback)

	// Config entries
	router.GET("/entry", s.listEntries)

	// Definition catalog
	def := router.Group("/definition")
	{
		def.POST("/:domain", s.createDefinition)
		def.GET("/:domain", s.getActiveDefinition)
		def.GET("/:domain/versions", s.listDefinitionVersions)
	}

	// WebSocket
	router.GET("/ws", s.handleWebSocket)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: configflow.Name,
		Version: configflow.Version,
		Status:  "ok",
	})
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections.
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := s.sockets.Items()
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
