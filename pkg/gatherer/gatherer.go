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

// Package gatherer runs the background inventory collection loop.
//
// One long-lived goroutine cycles IDLE → FETCHING → (COMMITTED | FAILED) →
// IDLE forever: it pulls identity, network, and compute inventory from the
// control plane, assembles a snapshot, and commits it atomically through the
// cache store. After each cycle, success or failure, it sleeps the configured
// refresh interval, so cycles never overlap and a slow control plane
// self-throttles the loop. A failed cycle leaves the previous snapshot
// untouched; staleness is visible to scrape consumers only through the
// cache-age gauge.
package gatherer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/cache"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/config"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/metrics"
)

// Source is the inventory boundary of the control plane, implemented by
// *openstack.Client. The gatherer owns the calling order; implementations
// only answer listings.
type Source interface {
	ListTenants(ctx context.Context) ([]inventory.Tenant, error)

	ListNetworks(ctx context.Context) ([]inventory.Network, error)
	ListSubnets(ctx context.Context) (map[string]inventory.Subnet, error)
	ListRouters(ctx context.Context) ([]inventory.Router, error)
	ListPorts(ctx context.Context) ([]inventory.Port, error)
	ListFloatingIPs(ctx context.Context) ([]inventory.FloatingIP, error)
	ListNetworkAgents(ctx context.Context) ([]inventory.NetworkAgent, error)

	ListHypervisors(ctx context.Context) ([]inventory.Hypervisor, error)
	ListComputeServices(ctx context.Context) ([]inventory.ComputeService, error)
	ListFlavors(ctx context.Context) (map[string]inventory.Flavor, error)
	ListAggregates(ctx context.Context) ([]inventory.Aggregate, error)
	ListInstances(ctx context.Context) ([]inventory.Instance, error)

	ComputeQuota(ctx context.Context, tenantID string) (inventory.QuotaSet, error)
	VolumeQuota(ctx context.Context, tenantID string) (inventory.QuotaSet, error)
}

// Connect builds an authenticated Source. The gatherer reconnects every
// cycle so token expiry surfaces as an ordinary cycle failure.
type Connect func(ctx context.Context) (Source, error)

// Gatherer is the background collection loop.
type Gatherer struct {
	cfg     *config.Config
	store   *cache.Store
	connect Connect

	// lastDuration holds the wall-clock duration of the most recent
	// successful cycle, in nanoseconds, for the freshness gauge.
	lastDuration atomic.Int64
}

// New creates a Gatherer writing through the given store.
func New(cfg *config.Config, store *cache.Store, connect Connect) *Gatherer {
	return &Gatherer{cfg: cfg, store: store, connect: connect}
}

// Run executes gather cycles until the context is canceled. The sleep is a
// fixed interval after each cycle finishes, not a fixed-rate clock.
func (g *Gatherer) Run(ctx context.Context) error {
	for {
		g.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.cfg.RefreshInterval()):
		}
	}
}

// RunOnce executes a single gather cycle. Transient control-plane failures
// are logged and swallowed: the previous snapshot stays in place and the
// next scheduled cycle retries unconditionally.
func (g *Gatherer) RunOnce(ctx context.Context) {
	start := time.Now()

	snap, err := g.fetch(ctx)
	if err != nil {
		gatherCyclesTotal.WithLabelValues("failed").Inc()
		slog.Error("gather cycle failed, keeping previous snapshot", "error", err)
		return
	}

	if err := g.store.Write(snap); err != nil {
		gatherCyclesTotal.WithLabelValues("failed").Inc()
		slog.Error("snapshot commit failed, keeping previous snapshot", "error", err)
		return
	}

	elapsed := time.Since(start)
	g.lastDuration.Store(int64(elapsed))
	gatherCyclesTotal.WithLabelValues("committed").Inc()
	gatherCycleDuration.Observe(elapsed.Seconds())

	slog.Info("gather cycle committed",
		"duration_ms", elapsed.Milliseconds(),
		"tenants", len(snap.Tenants),
		"instances", len(snap.Instances),
		"hypervisors", len(snap.Hypervisors),
	)
}

// fetch pulls the full inventory sequentially: identity, then network, then
// compute, then per-tenant quotas.
func (g *Gatherer) fetch(ctx context.Context) (*inventory.Snapshot, error) {
	src, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}

	snap := &inventory.Snapshot{
		ComputeQuotas: make(map[string]inventory.QuotaSet),
		VolumeQuotas:  make(map[string]inventory.QuotaSet),
	}

	gatherAPICalls.WithLabelValues("identity").Inc()
	if snap.Tenants, err = src.ListTenants(ctx); err != nil {
		return nil, err
	}

	gatherAPICalls.WithLabelValues("network").Inc()
	if snap.Networks, err = src.ListNetworks(ctx); err != nil {
		return nil, err
	}
	if snap.Subnets, err = src.ListSubnets(ctx); err != nil {
		return nil, err
	}
	if snap.Routers, err = src.ListRouters(ctx); err != nil {
		return nil, err
	}
	if snap.Ports, err = src.ListPorts(ctx); err != nil {
		return nil, err
	}
	if snap.FloatingIPs, err = src.ListFloatingIPs(ctx); err != nil {
		return nil, err
	}
	if snap.NetworkAgents, err = src.ListNetworkAgents(ctx); err != nil {
		return nil, err
	}

	gatherAPICalls.WithLabelValues("compute").Inc()
	if snap.Hypervisors, err = src.ListHypervisors(ctx); err != nil {
		return nil, err
	}
	if snap.ComputeServices, err = src.ListComputeServices(ctx); err != nil {
		return nil, err
	}
	if snap.Flavors, err = src.ListFlavors(ctx); err != nil {
		return nil, err
	}
	if snap.Aggregates, err = src.ListAggregates(ctx); err != nil {
		return nil, err
	}
	if snap.Instances, err = src.ListInstances(ctx); err != nil {
		return nil, err
	}

	for _, tenant := range snap.Tenants {
		qs, err := src.ComputeQuota(ctx, tenant.ID)
		if err != nil {
			return nil, err
		}
		snap.ComputeQuotas[tenant.ID] = qs
	}

	if g.cfg.CollectorEnabled(config.CollectorCinder) {
		if err := g.fetchVolumeQuotas(ctx, src, snap); err != nil {
			return nil, err
		}
	}

	return snap, nil
}

// fetchVolumeQuotas fills the volume quota map. With use_nova_volumes the
// compute quota set already carries the volume resources (clouds where nova
// still owns volumes), so it is reused instead of calling the volume service.
func (g *Gatherer) fetchVolumeQuotas(ctx context.Context, src Source, snap *inventory.Snapshot) error {
	if g.cfg.UseNovaVolumes {
		for id, qs := range snap.ComputeQuotas {
			snap.VolumeQuotas[id] = qs
		}
		return nil
	}

	gatherAPICalls.WithLabelValues("volume").Inc()
	for _, tenant := range snap.Tenants {
		qs, err := src.VolumeQuota(ctx, tenant.ID)
		if err != nil {
			return err
		}
		snap.VolumeQuotas[tenant.ID] = qs
	}
	return nil
}

// Freshness renders the cache freshness gauges included in every scrape:
// cache age (from the store's commit time) and the duration of the last
// successful refresh. Before the first commit both families are empty.
func (g *Gatherer) Freshness(now time.Time) ([]byte, error) {
	reg := metrics.NewRegistry()

	age := reg.Family("openstack_inventory_cache_age_seconds",
		"Seconds since the last successful inventory gather", metrics.Gauge, "cloud")
	if mtime, err := g.store.LastModified(); err == nil {
		age.Add(now.Sub(mtime).Seconds(), g.cfg.Cloud)
	}

	duration := reg.Family("openstack_inventory_cache_refresh_duration_seconds",
		"Wall-clock duration of the last successful gather cycle", metrics.Gauge, "cloud")
	if d := g.lastDuration.Load(); d > 0 {
		duration.Add(time.Duration(d).Seconds(), g.cfg.Cloud)
	}

	return reg.Render()
}
