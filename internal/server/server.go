package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

var _logger = logger_i.NewLogger("Server")

// SessionCloser ends every live session, dropping their indices.
type SessionCloser interface {
	Close(ctx context.Context) error
}

type Server struct {
	http *http.Server
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	Sessions         SessionCloser
	CloseServices    context.CancelFunc
}

func New(listenAddr string, handler http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:         listenAddr,
		Handler:      handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}}
}

func (s *Server) Run() {
	_logger.Info("Server is listening at", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", s.http.Addr)
	}
}

// ShutDownHandler waits for a signal, then stops in order: HTTP, workers,
// sessions (their collections live in the vector store), external clients.
func (s *Server) ShutDownHandler(p ShutdownParams) {
	state := <-p.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.http.SetKeepAlivesEnabled(false)
		if err := s.http.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		close(p.WorkerStop)
		p.Group.Wait()

		if p.Sessions != nil {
			if err := p.Sessions.Close(ctx); err != nil {
				_logger.Error("Sessions not fully released", "error", err)
			}
		}
		p.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
		close(p.StopExecution)
	case <-ctx.Done():
		_logger.Error("Force shut down")
		os.Exit(1)
	}
}
