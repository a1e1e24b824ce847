// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a local development backend for the chat client.
//
// It speaks the same JSON contract as the production service so the TUI and
// CLI can be exercised offline. Replies are produced by a Responder; the
// default EchoResponder answers in the markdown subset the client renders.
//
// # Endpoints
//
//   - POST /api/chat - {"message", "threadId"} -> {"response", "threadId"}
//   - GET  /health   - Health check with uptime and thread counts
//
// # Middleware
//
//   - Panic recovery with stack trace logging
//   - Request logging with timing information
//   - CORS headers for browser frontends
//   - Per-client rate limiting (golang.org/x/time/rate)
//   - Security headers (X-Content-Type-Options, X-Frame-Options)
//
// # Key Types
//
//   - Server: HTTP server with router and middleware
//   - Responder: Produces the assistant text for one turn
//   - RateLimiter: Token bucket per client IP
//
// # Usage
//
//	srv := server.NewServer("127.0.0.1:8787").
//		WithCORS([]string{"http://localhost:5173"}).
//		WithRateLimit(5, 10)
//	if err := srv.Start(); err != nil {
//		log.Fatal(err)
//	}
package server
