package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router       *gin.Engine
	container    *Container
	httpServer   *http.Server
	workerCtx    context.Context
	workerCancel context.CancelFunc
}

func NewServer(container *Container) *Server {
	router := SetupRouter(container)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	return &Server{
		router:       router,
		container:    container,
		workerCtx:    workerCtx,
		workerCancel: workerCancel,
	}
}

// Start runs the HTTP server and the background workers until a
// shutdown signal arrives or the listener fails.
func (s *Server) Start() error {
	s.container.StartWorkers(s.workerCtx)

	cfg := s.container.Config.Server
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	s.container.Logger.Info(s.workerCtx,
		fmt.Sprintf("Starting server on %s", addr),
		zap.String("env", cfg.Env),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		s.container.Logger.Info(s.workerCtx, "Shutdown signal received", zap.String("signal", sig.String()))
		return s.gracefulShutdown()
	}
}

func (s *Server) gracefulShutdown() error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.container.Config.Server.ShutdownTimeout)
	defer shutdownCancel()

	s.container.Logger.Info(s.workerCtx, "Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.container.Logger.Error(s.workerCtx, "HTTP server shutdown failed", zap.Error(err))
	}

	s.container.Logger.Info(s.workerCtx, "Stopping background workers...")
	s.workerCancel()

	workersDone := make(chan struct{})
	go func() {
		s.container.WaitForWorkers()
		close(workersDone)
	}()

	select {
	case <-workersDone:
		s.container.Logger.Info(s.workerCtx, "Background workers finished")
	case <-time.After(10 * time.Second):
		s.container.Logger.Warn(s.workerCtx, "Background workers did not finish in time, proceeding with shutdown")
	}

	s.container.Logger.Info(s.workerCtx, "Closing infrastructure connections...")
	if err := s.container.DB.Close(); err != nil {
		s.container.Logger.Error(s.workerCtx, "Failed to close database", zap.Error(err))
	}
	s.container.Logger.Info(s.workerCtx, "Server exited gracefully")
	return nil
}
