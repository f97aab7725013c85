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

package gatherer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gather cycle self metrics.
	gatherCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osinv_gather_cycles_total",
			Help: "Total number of inventory gather cycles",
		},
		[]string{"status"}, // committed or failed
	)

	gatherCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "osinv_gather_cycle_duration_seconds",
			Help:    "Time taken by one full fetch-and-commit pass",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	gatherAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osinv_gather_api_calls_total",
			Help: "Control-plane API calls issued by the gatherer",
		},
		[]string{"service"}, // identity, network, compute, volume
	)
)
