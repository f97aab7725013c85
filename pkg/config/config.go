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

package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/defaults"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
)

// Collector family names accepted in enabled_collectors.
const (
	CollectorNova    = "nova"
	CollectorNeutron = "neutron"
	CollectorCinder  = "cinder"
)

// Config is the exporter configuration, constructed once at startup and
// passed by reference into the gatherer, the snapshot store, and each
// collector constructor. There is no ambient global configuration.
type Config struct {
	// CacheFile is the path of the durable snapshot.
	CacheFile string `yaml:"cache_file"`

	// CacheRefreshInterval is the sleep between gather cycles, in seconds.
	CacheRefreshInterval int `yaml:"cache_refresh_interval"`

	// Cloud is the label value stamped on all metrics.
	Cloud string `yaml:"cloud"`

	// EnabledCollectors is the subset of {nova, neutron, cinder} to serve.
	EnabledCollectors []string `yaml:"enabled_collectors"`

	// UseNovaVolumes gates volume-quota collection through the compute API.
	UseNovaVolumes bool `yaml:"use_nova_volumes"`

	// Overcommit multipliers applied to raw hypervisor capacity.
	AllocationRatioVCPU float64 `yaml:"openstack_allocation_ratio_vcpu"`
	AllocationRatioRAM  float64 `yaml:"openstack_allocation_ratio_ram"`
	AllocationRatioDisk float64 `yaml:"openstack_allocation_ratio_disk"`

	// SchedulableInstanceSize is the unit workload used by the
	// schedulable-instance estimate. The estimate is only emitted when set.
	SchedulableInstanceSize *InstanceSize `yaml:"schedulable_instance_size"`

	// Listen address and port for the metrics endpoint.
	ListenAddress string `yaml:"listen_address"`
	ListenPort    int    `yaml:"listen_port"`
}

// InstanceSize is the resource footprint of one unit instance.
type InstanceSize struct {
	VCPUs   int64 `yaml:"vcpus"`
	RAMMBs  int64 `yaml:"ram_mbs"`
	DiskGBs int64 `yaml:"disk_gbs"`
}

// Default returns a Config populated with package defaults.
func Default() *Config {
	return &Config{
		CacheFile:            defaults.CacheFile,
		CacheRefreshInterval: int(defaults.CacheRefreshInterval / time.Second),
		Cloud:                defaults.Cloud,
		EnabledCollectors:    []string{CollectorNova, CollectorNeutron, CollectorCinder},
		AllocationRatioVCPU:  defaults.AllocationRatioVCPU,
		AllocationRatioRAM:   defaults.AllocationRatioRAM,
		AllocationRatioDisk:  defaults.AllocationRatioDisk,
		ListenPort:           defaults.ListenPort,
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// An empty path returns validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, fmt.Sprintf("read config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, fmt.Sprintf("parse config file %s", path), err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.CacheFile == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_file must not be empty")
	}
	if c.CacheRefreshInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_refresh_interval must be positive")
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return errors.New(errors.ErrCodeInvalidConfig, "listen_port out of range")
	}
	for _, name := range c.EnabledCollectors {
		switch name {
		case CollectorNova, CollectorNeutron, CollectorCinder:
		default:
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"unknown collector in enabled_collectors",
				map[string]any{"collector": name})
		}
	}
	for _, ratio := range []float64{c.AllocationRatioVCPU, c.AllocationRatioRAM, c.AllocationRatioDisk} {
		if ratio <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "allocation ratios must be positive")
		}
	}
	if s := c.SchedulableInstanceSize; s != nil {
		if s.VCPUs <= 0 || s.RAMMBs <= 0 || s.DiskGBs <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "schedulable_instance_size fields must be positive")
		}
	}
	return nil
}

// RefreshInterval returns the gather pacing as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.CacheRefreshInterval) * time.Second
}

// CollectorEnabled reports whether the named collector family is enabled.
func (c *Config) CollectorEnabled(name string) bool {
	return slices.Contains(c.EnabledCollectors, name)
}
