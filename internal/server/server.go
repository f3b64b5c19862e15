// Package server exposes the batch trigger over HTTP. The caller only ever
// sees accept or reject; batch outcomes surface via email and the ledger.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/bevalen/tune-energy-ocr-ui/internal/batch"
	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
)

// Runner is the slice of the orchestrator the server needs.
type Runner interface {
	Run(ctx context.Context, req batch.Request) (batch.Summary, error)
}

// Server handles trigger requests and launches background batches.
type Server struct {
	runner Runner
	log    *slog.Logger
	wg     sync.WaitGroup
}

// New builds a Server around a batch runner.
func New(runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{runner: runner, log: logger}
}

// Routes builds the gin engine.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/batches", s.handleTrigger)
	return r
}

// handleTrigger validates the request, replies 202 immediately, and runs the
// batch on a background goroutine decoupled from the request context.
func (s *Server) handleTrigger(c *gin.Context) {
	var req batch.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if err := req.Validate(); err != nil {
		var appErr *common.AppError
		msg := "invalid request"
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The request context dies with the response; the batch must not.
		if _, err := s.runner.Run(context.Background(), req); err != nil {
			s.log.Error("server.batch_crashed", "error", err, "customer", req.Customer)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// Wait blocks until all in-flight batches finish, for graceful shutdown.
func (s *Server) Wait() {
	s.wg.Wait()
}
