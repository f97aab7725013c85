// Copyright (c) 2025, The OpenStack Inventory Exporter Authors.
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

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/collector"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/config"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/defaults"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/gatherer"
)

// Server is the exporter's HTTP frontend.
type Server struct {
	cfg        *config.Config
	factory    *collector.Factory
	gatherer   *gatherer.Gatherer
	httpServer *http.Server

	rateLimiter *rate.Limiter

	mu    sync.RWMutex
	ready bool
}

// New creates a server wired to the collector factory and the gatherer.
func New(cfg *config.Config, factory *collector.Factory, g *gatherer.Gatherer) *Server {
	s := &Server{
		cfg:         cfg,
		factory:     factory,
		gatherer:    g,
		rateLimiter: rate.NewLimiter(defaults.ServerRateLimit, defaults.ServerRateLimitBurst),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort),
		Handler:      s.routes(),
		ReadTimeout:  defaults.ServerReadTimeout,
		WriteTimeout: defaults.ServerWriteTimeout,
		IdleTimeout:  defaults.ServerIdleTimeout,
	}

	return s
}

// routes configures all HTTP routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Index handler also owns the 404 for unmatched paths.
	mux.HandleFunc("/", s.handleIndex)

	// System endpoints (no rate limiting)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	mux.HandleFunc("/metrics", s.withMiddleware(s.handleMetrics))

	return mux
}

// SetReady marks the server as ready to serve traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.SetReady(true)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, defaults.ServerShutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
