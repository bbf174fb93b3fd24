package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
)

// Controller is the narrow refresh contract required by the HTTP API.
type Controller interface {
	Snapshot() refresh.Snapshot
	RequestRefresh(id refresh.TargetID, reason refresh.Reason) bool
}

// Server exposes the watcher's refresh state over HTTP.
type Server struct {
	addr      string
	ctrl      Controller
	server    *http.Server
	listener  net.Listener
	serveErr  chan error
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time

	mu         sync.RWMutex
	users      []model.User
	containers []model.Container
	usersAt    time.Time
	contAt     time.Time
	lastErr    map[refresh.TargetID]string
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, ctrl Controller) *Server {
	if addr == "" {
		addr = "127.0.0.1:3900"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		ctrl:      ctrl,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		serveErr:  make(chan error, 1),
		lastErr:   make(map[refresh.TargetID]string),
	}
}

// Observe records a refresh result. Wire it as the controller's render
// callback.
func (s *Server) Observe(res refresh.Result) {
	if res.Phase == refresh.PhaseLoading {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Phase == refresh.PhaseFailed {
		if res.Err != nil {
			s.lastErr[res.Target] = res.Err.Error()
		}
		return
	}
	delete(s.lastErr, res.Target)
	switch res.Target {
	case refresh.TargetUsers:
		s.users = res.Users
		s.usersAt = res.At
	case refresh.TargetContainers:
		s.containers = res.Containers
		s.contAt = res.At
	}
}

// Handler builds the gin engine serving the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/status", s.handleStatus)
	r.GET("/api/summary", s.handleSummary)
	r.POST("/api/refresh/:target", s.handleRefresh)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go func() {
		defer close(s.serveErr)
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr <- err
		}
	}()
	return nil
}

// Errors delivers the error that stopped serving, if any. The channel is
// closed once the server has stopped.
func (s *Server) Errors() <-chan error { return s.serveErr }

// Addr returns the listen address, resolved after Start.
func (s *Server) Addr() string { return s.addr }

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.ctrl.Snapshot()
	status := "ok"
	for _, ts := range snap.Targets {
		if ts.Failed || ts.ConsecutiveErrs > 0 {
			status = "degraded"
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"uptime": time.Since(s.startTime).String(),
		"paused": snap.Paused,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.RLock()
	errs := make(map[refresh.TargetID]string, len(s.lastErr))
	for k, v := range s.lastErr {
		errs[k] = v
	}
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"session": s.ctrl.Snapshot(),
		"errors":  errs,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	s.mu.RLock()
	sum := model.Summarize(s.users, s.containers)
	usersAt, contAt := s.usersAt, s.contAt
	s.mu.RUnlock()

	if usersAt.IsZero() && contAt.IsZero() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no data fetched yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":                 sum,
		"users_refreshed_at":      usersAt,
		"containers_refreshed_at": contAt,
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	id, err := refresh.ParseTarget(c.Param("target"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if !s.ctrl.RequestRefresh(id, refresh.ReasonManual) {
		c.JSON(http.StatusConflict, gin.H{"target": id, "started": false, "error": "refresh already in flight"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"target": id, "started": true})
}
