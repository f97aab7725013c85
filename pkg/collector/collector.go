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

package collector

import (
	"fmt"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/cache"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/config"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/metrics"
)

// Collector derives one family group of metrics from the current snapshot.
// Collectors are constructed per request and never touch the live control
// plane; GetStats is a pure function of the snapshot and the configuration.
type Collector interface {
	GetStats() ([]byte, error)
}

// Factory creates collectors bound to the configuration and snapshot store.
// Construction reads the current snapshot; a read before the first
// successful gather fails with ErrCodeNotFound, which the server surfaces as
// a hard per-request failure.
type Factory struct {
	cfg   *config.Config
	store *cache.Store
}

// NewFactory creates a collector factory.
func NewFactory(cfg *config.Config, store *cache.Store) *Factory {
	return &Factory{cfg: cfg, store: store}
}

// Create builds the named collector family against the current snapshot.
func (f *Factory) Create(name string) (Collector, error) {
	b, err := newBase(f.cfg, f.store)
	if err != nil {
		return nil, err
	}

	switch name {
	case config.CollectorNova:
		return &NovaCollector{base: b}, nil
	case config.CollectorNeutron:
		return &NeutronCollector{base: b}, nil
	case config.CollectorCinder:
		return &CinderCollector{base: b}, nil
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInternal, "unknown collector",
			map[string]any{"collector": name})
	}
}

// base carries the snapshot, configuration, and shared lookup tables used by
// every collector family.
type base struct {
	cfg        *config.Config
	snap       *inventory.Snapshot
	reg        *metrics.Registry
	tenantName map[string]string
}

func newBase(cfg *config.Config, store *cache.Store) (base, error) {
	snap, _, err := store.Read()
	if err != nil {
		return base{}, err
	}

	tenantName := make(map[string]string, len(snap.Tenants))
	for _, t := range snap.Tenants {
		tenantName[t.ID] = t.Name
	}

	return base{
		cfg:        cfg,
		snap:       snap,
		tenantName: tenantName,
	}, nil
}

// beginScrape resets the sample registry. Every GetStats call builds its
// samples from scratch, so repeated calls on one instance render identical
// output instead of accumulating across invocations.
func (b *base) beginScrape() {
	b.reg = metrics.NewRegistry()
}

// tenantLabel resolves a tenant id to its name, degrading to an explicit
// sentinel when the tenant vanished after the resource was allocated.
func (b *base) tenantLabel(id string) string {
	if name, ok := b.tenantName[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown tenant (%s)", id)
}

// tenantOrOrphaned resolves a tenant id to its name, folding unresolvable
// owners into the single "orphaned" bucket used by the instance rollup.
func (b *base) tenantOrOrphaned(id string) string {
	if name, ok := b.tenantName[id]; ok {
		return name
	}
	return "orphaned"
}

// addQuota renders one quota value: a legacy value yields a single limit
// sample, a tiered value yields limit/in_use/reserved samples. Samples
// accumulate across repeated keys rather than overwriting.
func addQuota(f *metrics.Family, q inventory.QuotaValue, labels ...string) {
	if !q.Detailed {
		f.Add(q.Limit, append(labels, "limit")...)
		return
	}
	f.Add(q.Limit, append(labels, "limit")...)
	f.Add(q.InUse, append(labels, "in_use")...)
	f.Add(q.Reserved, append(labels, "reserved")...)
}
