// Package server exposes the rotating logger over HTTP: inspection of the
// log directory and ingestion of records from other NetView components.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/pkg/version"
)

const (
	defaultTail     = 100
	shutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr string
	// TailLimit caps the n parameter of /api/logs/tail.
	TailLimit int
}

// Server is the HTTP front of a RotatingLogger.
type Server struct {
	logger *logging.RotatingLogger
	viewer *logging.Viewer
	opts   Options
	engine *gin.Engine
}

// New builds the router. It does not start listening.
func New(logger *logging.RotatingLogger, opts Options) *Server {
	if opts.TailLimit <= 0 {
		opts.TailLimit = 1000
	}

	s := &Server{
		logger: logger,
		viewer: logging.NewViewer(logging.ViewerConfig{
			NoColor: true,
			Prefix:  logger.Config().FilePrefix,
		}, nil),
		opts: opts,
	}

	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())
	r.GET("/health", s.health)

	api := r.Group("/api/logs")
	api.GET("/stats", s.stats)
	api.GET("/files", s.files)
	api.GET("/tail", s.tail)
	api.POST("", s.write)
	api.POST("/rotate", s.rotate)

	s.engine = r
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on Options.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return nverrors.New(nverrors.ErrCodeListenFailed, "failed to listen on "+s.opts.Addr, err).
			WithSuggestion("Choose another address with --addr or NETVIEW_HTTP_ADDR")
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- srv.Shutdown(sctx)
	}()

	slog.Info("log server listening", slog.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Short()})
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.logger.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) files(c *gin.Context) {
	files, err := s.logger.Files()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) tail(c *gin.Context) {
	n := defaultTail
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, nverrors.ValidationError("n must be a positive integer", err).
				WithDetail("n", raw))
			return
		}
		n = min(parsed, s.opts.TailLimit)
	}

	entries, err := s.viewer.Tail(c.Request.Context(), s.logger.Directory(), n)
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []logging.LogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) rotate(c *gin.Context) {
	if err := s.logger.Rotate(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_file": s.logger.CurrentFile()})
}

// writeRequest is the body of POST /api/logs.
type writeRequest struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

func (s *Server) write(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, nverrors.ValidationError("invalid JSON body", err))
		return
	}
	if req.Message == "" {
		respondError(c, nverrors.New(nverrors.ErrCodeEmptyMessage, "message is required", nil))
		return
	}
	level := logging.LevelInfo
	if req.Level != "" {
		var err error
		if level, err = logging.ParseLevel(req.Level); err != nil {
			respondError(c, err)
			return
		}
	}

	if err := s.logger.Log(level, req.Message, req.Source); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if ne, ok := nverrors.As(err); ok && ne.Category == nverrors.CategoryValidation {
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		slog.Error("log API request failed",
			append([]any{slog.String("path", c.FullPath())}, nverrors.FormatForLog(err)...)...)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": nverrors.ToMap(err)})
}

// requestLogger logs each request through slog, which lands in the rotating
// files under the "http" source.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			slog.String("source", "http"),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)))
	}
}
