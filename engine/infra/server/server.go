package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flowboard/flowboard/engine/automation"
	"github.com/flowboard/flowboard/engine/infra/postgres"
	"github.com/flowboard/flowboard/engine/notify"
	notifyrouter "github.com/flowboard/flowboard/engine/notify/router"
	"github.com/flowboard/flowboard/engine/rule"
	rulerouter "github.com/flowboard/flowboard/engine/rule/router"
	"github.com/flowboard/flowboard/engine/task"
	tkrouter "github.com/flowboard/flowboard/engine/task/router"
	"github.com/flowboard/flowboard/pkg/config"
	"github.com/flowboard/flowboard/pkg/logger"
)

const (
	httpReadTimeout  = 15 * time.Second
	httpWriteTimeout = 15 * time.Second
	httpIdleTimeout  = 60 * time.Second
)

// Deps carries everything the HTTP surface needs. The engine arrives already
// wired to its collaborators; the server only routes requests into it.
type Deps struct {
	Tasks      task.Repository
	Rules      rule.Repository
	Executions rule.ExecutionRepository
	Channels   notify.ChannelRepository
	Engine     *automation.Engine
	Store      *postgres.Store
}

type Server struct {
	cfg        *config.ServerConfig
	deps       *Deps
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(cfg *config.ServerConfig, env string, deps *Deps) *Server {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/healthz", s.healthz)

	api := r.Group("/api/v0")
	tkrouter.RegisterRoutes(api, s.deps.Tasks, s.deps.Engine)
	rulerouter.RegisterRoutes(api, s.deps.Rules, s.deps.Executions)
	notifyrouter.RegisterRoutes(api, s.deps.Channels)
	return r
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) healthz(c *gin.Context) {
	status := http.StatusOK
	health := gin.H{"status": "healthy"}
	if s.deps.Store != nil {
		if err := s.deps.Store.HealthCheck(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["database"] = err.Error()
		}
	}
	c.JSON(status, gin.H{"data": health, "message": "Success"})
}

// Run serves HTTP until the context is canceled, then drains connections
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	log := logger.FromContext(ctx)
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return <-errCh
}

// requestLogger logs one line per request with latency and status.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.FromContext(c.Request.Context()).Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
