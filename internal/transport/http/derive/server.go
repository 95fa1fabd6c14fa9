package derivehttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bpxgen/internal/logger"
	"bpxgen/internal/pipeline"
	"bpxgen/internal/store"

	"github.com/gin-gonic/gin"
)

const defaultAddr = ":9992"

// Deriver runs derivations for the API.
type Deriver interface {
	GetParams(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server serves the derive API.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig lists the dependencies of the derive API.
type ServerConfig struct {
	Addr    string
	Deriver Deriver
	// Runs is optional; without it nothing is recorded and the run
	// endpoints answer 503.
	Runs store.RunRepository
	// Root confines request paths to one directory.
	Root string
}

// NewServer builds the HTTP server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Deriver == nil {
		return nil, errors.New("derive http server requires a deriver")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	NewRouter(cfg.Deriver, cfg.Runs, cfg.Root).Register(router.Group("/api"))

	return &Server{addr: cfg.Addr, router: router}, nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s",
			c.Request.Method, path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("derive api listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
