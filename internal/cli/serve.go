// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Local development backend.
//
// Command: serve
// Short:   Run a backend that answers POST /api/chat with an echo reply
//
// Examples:
//   chatline serve
//   chatline serve --addr 127.0.0.1:9000
//   chatline --api-url http://127.0.0.1:8787   (in another terminal)
//
// Flags:
//   --addr HOST:PORT     Listen address (default server.addr, 127.0.0.1:8787)

package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/chatline/internal/backend"
	"github.com/jeranaias/chatline/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, a Args) error {
	cfg, err := LoadConfig(a)
	if err != nil {
		return err
	}

	addr := a.Addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	logger := log.New(stderr(a), "", log.LstdFlags)
	srv := server.NewServer(addr).
		WithResponder(server.EchoResponder{}).
		WithCORS(cfg.Server.AllowedOrigins).
		WithRateLimit(cfg.Server.RatePerSec, cfg.Server.Burst).
		WithLogger(logger)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serveUntilDone(ctx, srv, ln, a)
}

// serveUntilDone serves on ln until ctx is cancelled, then shuts down.
func serveUntilDone(ctx context.Context, srv *server.Server, ln net.Listener, a Args) error {
	fmt.Fprintf(a.Stdout, "Serving chat backend on http://%s (POST %s)\n", ln.Addr(), backend.ChatPath)
	fmt.Fprintln(a.Stdout, "Press Ctrl+C to stop.")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil {
		return err
	}

	stats := srv.GetStats()
	fmt.Fprintf(a.Stdout, "Stopped after %s, %d requests.\n", stats.Uptime().Round(time.Second), stats.TotalRequests)
	return nil
}
