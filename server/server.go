// Package server exposes the router as an HTTP webhook, for chat adapters
// that can POST what they hear and post back what we reply.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tranvictor/kredits/metrics"
	"github.com/tranvictor/kredits/router"
	"github.com/tranvictor/kredits/ui"
)

// TokenHeader carries the shared secret when one is configured.
const TokenHeader = "X-Kredits-Token"

const shutdownTimeout = 5 * time.Second

// Handler is what the webhook feeds messages to. *router.Router is one.
type Handler interface {
	Handle(ctx context.Context, msg router.Message, u ui.UI) error
}

type Options struct {
	Addr string
	// empty disables the token check
	Token string
}

// HearRequest is the body of POST /hear.
type HearRequest struct {
	User string `json:"user"`
	Room string `json:"room"`
	Text string `json:"text" binding:"required"`
}

// HearResponse lists the reply lines, possibly none.
type HearResponse struct {
	Lines []string `json:"lines"`
}

type Server struct {
	opts    Options
	handler Handler
	metrics *metrics.Metrics
	logger  *zap.Logger

	engine     *gin.Engine
	httpServer *http.Server
}

func New(opts Options, handler Handler, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		opts:    opts,
		handler: handler,
		metrics: m,
		logger:  logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), m.GinMiddleware())
	engine.GET("/healthz", s.healthz)
	engine.GET("/metrics", gin.WrapH(m.Handler()))
	engine.POST("/hear", s.requireToken(), s.hear)
	s.engine = engine
	return s
}

// Handler returns the routes, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on opts.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook listening", zap.String("addr", s.opts.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down webhook")
	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.Token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.Token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func (s *Server) hear(c *gin.Context) {
	var req HearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := ui.NewLinesUI()
	msg := router.Message{User: req.User, Room: req.Room, Text: req.Text}
	if err := s.handler.Handle(c.Request.Context(), msg, lines); err != nil {
		s.logger.Warn("message not handled", zap.String("user", req.User), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, HearResponse{Lines: append([]string{}, lines.Lines()...)})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("webhook request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
