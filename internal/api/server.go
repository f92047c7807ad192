// Package api exposes the ticket engine over HTTP: ticket processing,
// run history, knowledge ingestion, and the escalation log.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/resolvd/resolvd/internal/retrieval"
	"github.com/resolvd/resolvd/internal/storage"
	"github.com/resolvd/resolvd/internal/types"
)

// TicketProcessor runs one ticket to termination.
type TicketProcessor interface {
	Run(ctx context.Context, ticket *types.Ticket) (*types.Result, error)
}

// Server wires the engine, storage, and ingestor into an HTTP API.
type Server struct {
	engine   TicketProcessor
	store    storage.Storage
	ingestor *retrieval.Ingestor
	router   *gin.Engine
}

// NewServer creates the API server and registers its routes.
func NewServer(engine TicketProcessor, store storage.Storage, ingestor *retrieval.Ingestor) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		engine:   engine,
		store:    store,
		ingestor: ingestor,
		router:   router,
	}

	router.GET("/healthz", s.handleHealthz)
	router.POST("/tickets/process", s.handleProcessTicket)
	router.GET("/tickets/:id/history", s.handleTicketHistory)
	router.GET("/tickets/recent", s.handleRecentRuns)
	router.POST("/knowledge/:category", s.handleIngestKnowledge)
	router.GET("/escalations", s.handleEscalations)

	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger logs one line per request via slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	}
}
