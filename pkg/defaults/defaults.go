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

// Package defaults provides centralized configuration constants for the
// exporter: cache layout, gather pacing, server timeouts, and outbound HTTP
// client tuning. Centralizing these values keeps the config surface and the
// component constructors in agreement.
package defaults

import "time"

// Cache and gather pacing.
const (
	// CacheFile is the default location of the durable snapshot.
	CacheFile = "/var/cache/openstack-inventory/cache.json"

	// CacheRefreshInterval is the default sleep between gather cycles.
	CacheRefreshInterval = 900 * time.Second
)

// Metric labeling.
const (
	// Cloud is the default value of the cloud label stamped on all metrics.
	Cloud = "openstack"
)

// Server configuration.
const (
	// ListenPort is the default metrics listen port.
	ListenPort = 9130

	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second

	// ServerRateLimit is the sustained request rate allowed per second.
	ServerRateLimit = 100

	// ServerRateLimitBurst is the short-term burst allowance.
	ServerRateLimitBurst = 200
)

// Outbound control-plane client tuning.
const (
	// ClientRequestTimeout is the total timeout for one control-plane request.
	ClientRequestTimeout = 60 * time.Second

	// ClientRetryMax is the retry budget per control-plane request.
	ClientRetryMax = 3

	// ClientRetryWaitMin is the initial retry backoff.
	ClientRetryWaitMin = 1 * time.Second

	// ClientRetryWaitMax is the retry backoff ceiling.
	ClientRetryWaitMax = 10 * time.Second

	// InstancePageSize is the page size for the marker-based instance listing.
	InstancePageSize = 100
)

// Overcommit ratios applied to raw hypervisor capacity.
const (
	// AllocationRatioVCPU is the default vcpu overcommit multiplier.
	AllocationRatioVCPU = 1.0

	// AllocationRatioRAM is the default ram overcommit multiplier.
	AllocationRatioRAM = 1.0

	// AllocationRatioDisk is the default disk overcommit multiplier.
	AllocationRatioDisk = 1.0
)
