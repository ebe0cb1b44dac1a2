// Package api exposes the agent over a local HTTP API plus a WebSocket
// event stream. It is a thin translation layer: every endpoint maps onto
// one core call and no printing logic lives here.
package api

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/WILMAR-10/wilpos-print-agent/internal/command"
	"github.com/WILMAR-10/wilpos-print-agent/internal/config"
	"github.com/WILMAR-10/wilpos-print-agent/internal/device"
	"github.com/WILMAR-10/wilpos-print-agent/internal/diag"
	"github.com/WILMAR-10/wilpos-print-agent/internal/dispatch"
	"github.com/WILMAR-10/wilpos-print-agent/internal/hub"
	"github.com/WILMAR-10/wilpos-print-agent/internal/joblog"
	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Config wires a Server. Hub and Settings are optional; everything else is
// required.
type Config struct {
	Registry   *device.Registry
	Network    *device.NetworkSource
	Dispatcher *dispatch.Dispatcher
	Reporter   *diag.Reporter
	Jobs       *joblog.Log
	Hub        *hub.Hub
	Executor   *command.Executor
	Settings   *config.Store
	Version    string
	Logger     *zap.Logger
}

// Server is the agent HTTP surface
type Server struct {
	router     *gin.Engine
	registry   *device.Registry
	network    *device.NetworkSource
	dispatcher *dispatch.Dispatcher
	reporter   *diag.Reporter
	jobs       *joblog.Log
	hub        *hub.Hub
	executor   *command.Executor
	settings   *config.Store
	version    string
	log        *zap.Logger
}

// NewServer builds the router and binds every route
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		router:     router,
		registry:   cfg.Registry,
		network:    cfg.Network,
		dispatcher: cfg.Dispatcher,
		reporter:   cfg.Reporter,
		jobs:       cfg.Jobs,
		hub:        cfg.Hub,
		executor:   cfg.Executor,
		settings:   cfg.Settings,
		version:    cfg.Version,
		log:        log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/devices", s.handleGetDevices)
		api.POST("/devices/refresh", s.handleRefreshDevices)
		api.POST("/devices/network", s.handleAddNetworkDevice)

		api.POST("/print", s.handlePrint)
		api.GET("/jobs", s.handleGetJobs)
		api.GET("/jobs/:id", s.handleGetJob)

		api.GET("/diagnostics", s.handleDiagnostics)
		api.POST("/diagnostics/device", s.handleTestDevice)
		api.POST("/diagnostics/drawer", s.handleTestDrawer)

		api.POST("/command", s.handleCommand)
		api.GET("/health", s.handleHealth)
	}

	if s.hub != nil {
		s.router.GET("/ws", func(c *gin.Context) {
			s.hub.HandleUpgrade(c.Writer, c.Request)
		})
	}
}

// handleGetDevices returns the current snapshot without touching hardware
func (s *Server) handleGetDevices(c *gin.Context) {
	c.JSON(200, gin.H{"devices": s.registry.Current()})
}

// handleRefreshDevices re-enumerates every source
func (s *Server) handleRefreshDevices(c *gin.Context) {
	devices := s.registry.Refresh(c.Request.Context())
	if s.hub != nil {
		s.hub.BroadcastDevices(devices)
	}
	c.JSON(200, gin.H{"devices": devices})
}

// handleAddNetworkDevice registers a raw network endpoint, persists it to
// the settings file and refreshes the snapshot so it shows up immediately.
func (s *Server) handleAddNetworkDevice(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Host string `json:"host" binding:"required"`
		Port int    `json:"port"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "host is required"})
		return
	}
	if s.network == nil {
		c.JSON(503, gin.H{"error": "network devices are not enabled"})
		return
	}

	if req.Port == 0 {
		req.Port = 9100
	}
	if req.Name == "" {
		req.Name = net.JoinHostPort(req.Host, strconv.Itoa(req.Port))
	}

	endpoint := device.NetworkEndpoint{Name: req.Name, Host: req.Host, Port: req.Port}
	s.network.Add(endpoint)

	if s.settings != nil {
		err := s.settings.Update(func(set *config.Settings) {
			for i, e := range set.NetworkDevices {
				if e.Name == endpoint.Name {
					set.NetworkDevices[i] = endpoint
					return
				}
			}
			set.NetworkDevices = append(set.NetworkDevices, endpoint)
		})
		if err != nil {
			s.log.Warn("network device not persisted", zap.Error(err))
		}
	}

	devices := s.registry.Refresh(c.Request.Context())
	if s.hub != nil {
		s.hub.BroadcastDevices(devices)
	}
	c.JSON(200, gin.H{"success": true, "devices": devices})
}

// handlePrint submits one job and returns its result. A failed print is
// still a 200: the result object carries the outcome, and only a request
// the dispatcher never saw (malformed JSON) is an HTTP error.
func (s *Server) handlePrint(c *gin.Context) {
	var job printjob.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	res := s.dispatcher.Submit(c.Request.Context(), job)
	c.JSON(200, res)
}

// handleGetJobs lists recent submits, newest first
func (s *Server) handleGetJobs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		c.JSON(400, gin.H{"error": "limit must be a positive number"})
		return
	}
	c.JSON(200, gin.H{"jobs": s.jobs.Recent(limit)})
}

// handleGetJob returns one recorded submit
func (s *Server) handleGetJob(c *gin.Context) {
	entry, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "job not found"})
		return
	}
	c.JSON(200, entry)
}

// handleDiagnostics runs the full diagnostic. ?format=text returns the
// human-readable document instead of JSON.
func (s *Server) handleDiagnostics(c *gin.Context) {
	report := s.reporter.Run(c.Request.Context())
	if c.Query("format") == "text" {
		c.String(200, report.Render())
		return
	}
	c.JSON(200, report)
}

// handleTestDevice prints a synthetic receipt on the named device
func (s *Server) handleTestDevice(c *gin.Context) {
	name, ok := bindDeviceName(c)
	if !ok {
		return
	}
	c.JSON(200, s.reporter.TestDevice(c.Request.Context(), name))
}

// handleTestDrawer fires a kick pulse at the named device
func (s *Server) handleTestDrawer(c *gin.Context) {
	name, ok := bindDeviceName(c)
	if !ok {
		return
	}
	c.JSON(200, s.reporter.TestDrawer(c.Request.Context(), name))
}

func bindDeviceName(c *gin.Context) (string, bool) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "name is required"})
		return "", false
	}
	return req.Name, true
}

// handleCommand executes one operator command line. The executor result is
// returned as-is so the CLI sees the same shape the TUI does; a failed
// command keeps its data (attempt logs) but comes back as a 400.
func (s *Server) handleCommand(c *gin.Context) {
	var req struct {
		Command string `json:"command" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "command is required"})
		return
	}

	result := s.executor.Execute(c.Request.Context(), req.Command)
	if !result.Success {
		c.JSON(400, result)
		return
	}
	c.JSON(200, result)
}

// handleHealth is the liveness probe
func (s *Server) handleHealth(c *gin.Context) {
	h := gin.H{"status": "ok"}
	if s.version != "" {
		h["version"] = s.version
	}
	if s.hub != nil {
		h["ws_clients"] = s.hub.ClientCount()
	}
	c.JSON(200, h)
}

// Handler exposes the router for an http.Server and for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
