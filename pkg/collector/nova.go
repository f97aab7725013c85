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
	"log/slog"
	"math"
	"slices"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/metrics"
)

// unknownArch labels hypervisors whose cpu_info carries no architecture.
const unknownArch = "Unknown"

// NovaCollector derives compute metrics: hypervisor capacity, schedulable
// instance estimates, instance and resource rollups, compute quotas, and
// service liveness.
type NovaCollector struct {
	base
}

// GetStats renders the nova metric families from the snapshot.
func (c *NovaCollector) GetStats() ([]byte, error) {
	c.beginScrape()
	c.genHypervisorStats()
	c.genSchedulableInstances()
	c.genInstanceStats()
	c.genQuotas()
	c.genServiceStates()
	return c.reg.Render()
}

// genHypervisorStats exposes the raw per-host capacity and usage figures.
// Usage fields reported as null (disabled hosts) are exposed as zero.
func (c *NovaCollector) genHypervisorStats() {
	labels := []string{"cloud", "host", "arch"}
	families := map[string]*metrics.Family{
		"vcpus":         c.reg.Family("hypervisor_vcpus", "Hypervisor vcpu capacity", metrics.Gauge, labels...),
		"vcpus_used":    c.reg.Family("hypervisor_vcpus_used", "Hypervisor vcpus in use", metrics.Gauge, labels...),
		"memory_mbs":    c.reg.Family("hypervisor_memory_mbs", "Hypervisor memory capacity in MB", metrics.Gauge, labels...),
		"memory_used":   c.reg.Family("hypervisor_memory_mbs_used", "Hypervisor memory in use in MB", metrics.Gauge, labels...),
		"disk_gbs":      c.reg.Family("hypervisor_disk_gbs", "Hypervisor local disk capacity in GB", metrics.Gauge, labels...),
		"disk_gbs_used": c.reg.Family("hypervisor_disk_gbs_used", "Hypervisor local disk in use in GB", metrics.Gauge, labels...),
		"running_vms":   c.reg.Family("hypervisor_running_vms", "Instances running on the hypervisor", metrics.Gauge, labels...),
	}

	for _, h := range c.snap.Hypervisors {
		arch := c.hypervisorArch(h)
		families["vcpus"].Add(float64(h.VCPUs), c.cfg.Cloud, h.Host, arch)
		families["vcpus_used"].Add(float64(inventory.ValueOrZero(h.VCPUsUsed)), c.cfg.Cloud, h.Host, arch)
		families["memory_mbs"].Add(float64(h.MemoryMB), c.cfg.Cloud, h.Host, arch)
		families["memory_used"].Add(float64(inventory.ValueOrZero(h.MemoryMBUsed)), c.cfg.Cloud, h.Host, arch)
		families["disk_gbs"].Add(float64(h.LocalGB), c.cfg.Cloud, h.Host, arch)
		families["disk_gbs_used"].Add(float64(inventory.ValueOrZero(h.LocalGBUsed)), c.cfg.Cloud, h.Host, arch)
		families["running_vms"].Add(float64(inventory.ValueOrZero(h.RunningVMs)), c.cfg.Cloud, h.Host, arch)
	}
}

// hypervisorArch extracts the architecture label. A host without usable
// cpu_info is labeled Unknown; that is an expected state for disabled hosts,
// not an error.
func (c *NovaCollector) hypervisorArch(h inventory.Hypervisor) string {
	arch, ok := h.Architecture()
	if !ok {
		slog.Info("hypervisor reports no cpu architecture", "host", h.Host)
		return unknownArch
	}
	return arch
}

// genSchedulableInstances estimates how many unit-sized instances each host
// can still accept. Per resource, free = capacity*ratio - used, and the term
// is floored before the minimum is taken across resources. The capacity
// variant omits the used term. Both are emitted only when the unit instance
// size is configured.
func (c *NovaCollector) genSchedulableInstances() {
	unit := c.cfg.SchedulableInstanceSize
	if unit == nil {
		return
	}

	free := c.reg.Family("hypervisor_schedulable_instances",
		"Unit-sized instances the hypervisor can still accept",
		metrics.Gauge, "cloud", "host", "aggregate")
	capacity := c.reg.Family("hypervisor_schedulable_instances_capacity",
		"Unit-sized instances the hypervisor could hold when empty",
		metrics.Gauge, "cloud", "host", "aggregate")

	for _, h := range c.snap.Hypervisors {
		aggregate := c.hostAggregate(h)

		free.Add(c.schedulable(h, unit.VCPUs, unit.RAMMBs, unit.DiskGBs, true),
			c.cfg.Cloud, h.Host, aggregate)
		capacity.Add(c.schedulable(h, unit.VCPUs, unit.RAMMBs, unit.DiskGBs, false),
			c.cfg.Cloud, h.Host, aggregate)
	}
}

// schedulable computes the floored-per-term minimum across vcpu, ram, and
// disk. Floor-then-min matches the long-observed behavior of this metric.
func (c *NovaCollector) schedulable(h inventory.Hypervisor, unitVCPU, unitRAM, unitDisk int64, subtractUsed bool) float64 {
	term := func(capacity, used int64, ratio float64, unit int64) float64 {
		allocatable := float64(capacity) * ratio
		if subtractUsed {
			allocatable -= float64(used)
		}
		return math.Floor(allocatable / float64(unit))
	}

	vcpu := term(h.VCPUs, inventory.ValueOrZero(h.VCPUsUsed), c.cfg.AllocationRatioVCPU, unitVCPU)
	ram := term(h.MemoryMB, inventory.ValueOrZero(h.MemoryMBUsed), c.cfg.AllocationRatioRAM, unitRAM)
	disk := term(h.LocalGB, inventory.ValueOrZero(h.LocalGBUsed), c.cfg.AllocationRatioDisk, unitDisk)

	return math.Min(vcpu, math.Min(ram, disk))
}

// hostAggregate resolves the first aggregate containing the hypervisor's
// service host.
func (c *NovaCollector) hostAggregate(h inventory.Hypervisor) string {
	for _, agg := range c.snap.Aggregates {
		if slices.Contains(agg.Hosts, h.ServiceHost) || slices.Contains(agg.Hosts, h.Host) {
			return agg.Name
		}
	}
	return "unknown"
}

// genInstanceStats rolls up the instance listing into per-tenant counts and
// flavor-derived resource totals. If any instance references a flavor that
// no longer exists, the whole ram/vcpu/disk family group is replaced by a
// single unlabeled unavailable marker: a partial aggregate would silently
// understate usage, which is worse than reporting nothing.
func (c *NovaCollector) genInstanceStats() {
	instances := c.reg.Family("nova_instances",
		"Instances per tenant and state", metrics.Counter, "cloud", "tenant", "instance_state")

	resourceLabels := []string{"cloud", "tenant"}
	ram := c.reg.Family("nova_resources_ram_mbs", "RAM allocated to instances per tenant in MB", metrics.Gauge, resourceLabels...)
	vcpus := c.reg.Family("nova_resources_vcpus", "VCPUs allocated to instances per tenant", metrics.Gauge, resourceLabels...)
	disk := c.reg.Family("nova_resources_disk_gbs", "Disk allocated to instances per tenant in GB", metrics.Gauge, resourceLabels...)

	flavorMissing := false
	for _, instance := range c.snap.Instances {
		tenant := c.tenantOrOrphaned(instance.TenantID)
		instances.Add(1, c.cfg.Cloud, tenant, instance.Status)

		flavor, ok := c.snap.Flavors[instance.FlavorID]
		if !ok {
			flavorMissing = true
			continue
		}
		ram.Add(float64(flavor.RAM), c.cfg.Cloud, tenant)
		vcpus.Add(float64(flavor.VCPUs), c.cfg.Cloud, tenant)
		disk.Add(float64(flavor.Disk), c.cfg.Cloud, tenant)
	}

	if flavorMissing {
		slog.Warn("instance references a deleted flavor, withholding resource rollup")
		c.reg.Drop("nova_resources_ram_mbs")
		c.reg.Drop("nova_resources_vcpus")
		c.reg.Drop("nova_resources_disk_gbs")
		c.reg.Family("nova_resources_unavailable",
			"Resource rollup withheld because an instance references a deleted flavor",
			metrics.Gauge).Add(0)
	}
}

// computeQuotaResources maps quota resources to their metric families.
var computeQuotaResources = []struct {
	resource string
	metric   string
	help     string
}{
	{"cores", "nova_quota_cores", "Compute core quota"},
	{"ram", "nova_quota_ram_mbs", "Compute RAM quota in MB"},
	{"instances", "nova_quota_instances", "Compute instance quota"},
	{"floating_ips", "nova_quota_floating_ips", "Floating IP quota"},
}

// genQuotas renders the per-tenant compute quotas. Legacy values yield one
// limit sample per resource; tiered values yield limit/in_use/reserved.
func (c *NovaCollector) genQuotas() {
	for _, spec := range computeQuotaResources {
		family := c.reg.Family(spec.metric, spec.help, metrics.Gauge, "cloud", "tenant", "type")
		for tenantID, quotas := range c.snap.ComputeQuotas {
			q, ok := quotas[spec.resource]
			if !ok {
				continue
			}
			addQuota(family, q, c.cfg.Cloud, c.tenantLabel(tenantID))
		}
	}
}

// genServiceStates maps the compute service listing to liveness gauges. The
// compute feed spells liveness as state=up/down and admin state as
// status=enabled/disabled; both are normalized to the shared vocabulary used
// by the network agent feed.
func (c *NovaCollector) genServiceStates() {
	state := c.reg.Family("nova_service_state",
		"Compute service liveness (1 up, 0 down)",
		metrics.Gauge, "cloud", "host", "service", "zone", "admin_state")

	for _, svc := range c.snap.ComputeServices {
		state.Add(boolToFloat(svc.State == "up"),
			c.cfg.Cloud, svc.Host, svc.Binary, svc.Zone, svc.Status)
	}
}
