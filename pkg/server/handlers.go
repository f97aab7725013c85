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
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/metrics"
)

const indexPage = `<html>
<head><title>OpenStack Inventory Exporter</title></head>
<body>
<h1>OpenStack Inventory Exporter</h1>
<p><a href="/metrics">Metrics</a></p>
</body>
</html>
`

// handleMetrics serves one scrape: every enabled collector is constructed
// against the current snapshot and their rendered outputs are concatenated
// with the freshness gauges and the process self metrics. Any failure fails
// the whole request; a scrape is never partially served.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	for _, name := range s.cfg.EnabledCollectors {
		col, err := s.factory.Create(name)
		if err != nil {
			s.failScrape(w, r, name, err)
			return
		}
		out, err := col.GetStats()
		if err != nil {
			s.failScrape(w, r, name, err)
			return
		}
		buf.Write(out)
	}

	fresh, err := s.gatherer.Freshness(time.Now())
	if err != nil {
		s.failScrape(w, r, "freshness", err)
		return
	}
	buf.Write(fresh)

	self, err := renderSelfMetrics()
	if err != nil {
		s.failScrape(w, r, "self", err)
		return
	}
	buf.Write(self)

	w.Header().Set("Content-Type", metrics.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// failScrape responds 500 with diagnostic detail in the body.
func (s *Server) failScrape(w http.ResponseWriter, r *http.Request, source string, err error) {
	scrapeFailures.Inc()
	slog.Error("scrape failed",
		"source", source,
		"error", err,
		"requestID", r.Context().Value(contextKeyRequestID),
	)
	http.Error(w, fmt.Sprintf("collecting %s metrics: %v", source, err), http.StatusInternalServerError)
}

// renderSelfMetrics serializes the process-level metrics (gather cycle and
// HTTP counters registered through promauto) in the same exposition format as
// the collector output.
func renderSelfMetrics() ([]byte, error) {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// handleIndex serves the static informational page on / and a 404 anywhere
// else, since the root pattern matches every otherwise-unrouted path.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, indexPage)
}

// HealthResponse represents a health or readiness check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// handleReady handles GET /ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "not_ready",
			Timestamp: time.Now(),
			Reason:    "service is shutting down",
		})
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now(),
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}
