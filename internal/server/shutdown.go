// If you are AI: This file handles graceful shutdown orchestration for the server process.

package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// shutdownTimeout bounds the graceful stop.
const shutdownTimeout = 5 * time.Second

// ShutdownHandler manages graceful shutdown on SIGINT or SIGTERM.
type ShutdownHandler struct {
	server *Server
	log    *slog.Logger
	ctx    context.Context
}

// NewShutdownHandler creates a handler that stops server on a termination signal or when ctx ends.
func NewShutdownHandler(ctx context.Context, server *Server, log *slog.Logger) *ShutdownHandler {
	return &ShutdownHandler{server: server, log: log, ctx: ctx}
}

// Wait blocks until a termination signal is received or the context ends, then shuts down.
// This method should be called from the main goroutine.
func (h *ShutdownHandler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.log.Info("shutdown signal received", "signal", sig.String())
	case <-h.ctx.Done():
		h.log.Info("shutdown requested")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.server.Shutdown(ctx)
}
