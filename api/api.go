// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api serves the governance engine over REST/JSON
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultListenAddress = ":8080"

	// CallerHeader carries the authenticated caller identity. Authentication
	// happens in front of this server
	CallerHeader    = "X-Caller"
	RequestIdHeader = "X-Request-Id"
)

type Config struct {
	ListenAddress string
	// DevMode enables the ledger funding endpoint
	DevMode bool
	// Funder backs the funding endpoint in dev mode
	Funder Funder
}

// Server is the governance REST API server
type Server struct {
	config     Config
	logger     *slog.Logger
	engine     Engine
	httpServer *http.Server
	mu         sync.Mutex
}

func New(
	cfg Config,
	engine Engine,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Server{
		config: cfg,
		logger: logger,
		engine: engine,
	}
}

// Handler returns the routed handler, wrapped with request id tagging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/initialize", s.handleInitialize)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/config", s.handleGlobalConfig)
	mux.HandleFunc("PUT /api/v1/config/access-cost", s.handleChangeAccessCost)
	mux.HandleFunc("PUT /api/v1/config/fee-mode", s.handleChangeFeeMode)
	mux.HandleFunc("PUT /api/v1/config/sponsor", s.handleChangeSponsor)
	mux.HandleFunc("GET /api/v1/journal", s.handleJournal)

	mux.HandleFunc("POST /api/v1/passes", s.handleBurnForPass)
	mux.HandleFunc("GET /api/v1/passes/{user}", s.handleGetAccessPass)
	mux.HandleFunc("GET /api/v1/users/{user}/eligibility", s.handleEligibility)

	mux.HandleFunc("POST /api/v1/proposals", s.handleCreateProposal)
	mux.HandleFunc("GET /api/v1/proposals/{id}", s.handleGetProposal)
	mux.HandleFunc("POST /api/v1/proposals/{id}/votes", s.handleVote)
	mux.HandleFunc("GET /api/v1/proposals/{id}/votes", s.handleVotes)
	mux.HandleFunc("GET /api/v1/proposals/{id}/votes/{user}", s.handleHasVoted)
	mux.HandleFunc("POST /api/v1/proposals/{id}/execute", s.handleExecuteProposal)
	mux.HandleFunc("POST /api/v1/proposals/{id}/cancel", s.handleCancelProposal)

	mux.HandleFunc("GET /api/v1/emergency/limits", s.handleEmergencyLimits)
	mux.HandleFunc("POST /api/v1/emergency/unlocks", s.handleInitiateUnlock)
	mux.HandleFunc("GET /api/v1/emergency/unlocks/{id}", s.handleGetUnlock)
	mux.HandleFunc("GET /api/v1/emergency/unlocks/{id}/signatures", s.handleUnlockSignatures)
	mux.HandleFunc("POST /api/v1/emergency/unlocks/{id}/sign", s.handleSignUnlock)
	mux.HandleFunc("POST /api/v1/emergency/unlocks/{id}/execute", s.handleExecuteUnlock)
	mux.HandleFunc("POST /api/v1/emergency/unlocks/{id}/cancel", s.handleCancelUnlock)

	mux.HandleFunc("POST /api/v1/distributions", s.handleSubmitDistribution)
	mux.HandleFunc("GET /api/v1/distributions/{id}", s.handleGetDistribution)
	mux.HandleFunc("POST /api/v1/distributions/{id}/execute", s.handleExecuteDistribution)
	mux.HandleFunc("POST /api/v1/distributions/{id}/cancel", s.handleCancelDistribution)
	mux.HandleFunc("POST /api/v1/seasons", s.handleStartNewSeason)

	if s.config.DevMode && s.config.Funder != nil {
		mux.HandleFunc("POST /api/v1/dev/fund", s.handleFund)
	}
	return s.withRequestId(mux)
}

func (s *Server) withRequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqId := r.Header.Get(RequestIdHeader)
		if reqId == "" {
			reqId = uuid.NewString()
		}
		w.Header().Set(RequestIdHeader, reqId)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(
			"handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", reqId,
			"duration", time.Since(start),
		)
	})
}

// Start starts the HTTP server in a background goroutine. The server shuts
// down when ctx is cancelled
func (s *Server) Start(
	ctx context.Context,
) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	if err := s.startServer(server); err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}

	s.logger.Info(
		"API listener started on " + s.config.ListenAddress,
	)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		srv := s.httpServer
		s.httpServer = nil
		s.mu.Unlock()

		if srv != nil {
			s.logger.Debug(
				"context cancelled, shutting down API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(
	ctx context.Context,
) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer binds the listening socket first so port conflicts surface
// from Start, then serves in a background goroutine
func (s *Server) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for API server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}
