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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/config"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
)

func TestHypervisorStats(t *testing.T) {
	snap := &inventory.Snapshot{
		Hypervisors: []inventory.Hypervisor{
			{
				Host:         "cmp-01",
				CPUInfo:      json.RawMessage(`"{\"arch\": \"x86_64\"}"`),
				VCPUs:        32,
				VCPUsUsed:    int64p(12),
				MemoryMB:     65536,
				MemoryMBUsed: int64p(4096),
				LocalGB:      1000,
				LocalGBUsed:  int64p(250),
				RunningVMs:   int64p(7),
			},
			// Disabled host: usage fields are null, cpu_info absent.
			{Host: "cmp-02", VCPUs: 16, MemoryMB: 32768, LocalGB: 500},
		},
	}

	out := collect(t, config.CollectorNova, testConfig(), snap)

	assert.Contains(t, out, `hypervisor_vcpus{arch="x86_64",cloud="testcloud",host="cmp-01"} 32`)
	assert.Contains(t, out, `hypervisor_vcpus_used{arch="x86_64",cloud="testcloud",host="cmp-01"} 12`)
	assert.Contains(t, out, `hypervisor_memory_mbs{arch="x86_64",cloud="testcloud",host="cmp-01"} 65536`)
	assert.Contains(t, out, `hypervisor_disk_gbs_used{arch="x86_64",cloud="testcloud",host="cmp-01"} 250`)
	assert.Contains(t, out, `hypervisor_running_vms{arch="x86_64",cloud="testcloud",host="cmp-01"} 7`)

	assert.Contains(t, out, `hypervisor_vcpus{arch="Unknown",cloud="testcloud",host="cmp-02"} 16`)
	assert.Contains(t, out, `hypervisor_vcpus_used{arch="Unknown",cloud="testcloud",host="cmp-02"} 0`)
	assert.Contains(t, out, `hypervisor_running_vms{arch="Unknown",cloud="testcloud",host="cmp-02"} 0`)
}

func TestSchedulableInstances(t *testing.T) {
	cfg := testConfig()
	cfg.AllocationRatioVCPU = 2.0
	cfg.AllocationRatioRAM = 1.0
	cfg.AllocationRatioDisk = 1.0
	cfg.SchedulableInstanceSize = &config.InstanceSize{VCPUs: 2, RAMMBs: 1024, DiskGBs: 10}

	snap := &inventory.Snapshot{
		Hypervisors: []inventory.Hypervisor{{
			Host:         "cmp-01",
			VCPUs:        8,
			VCPUsUsed:    int64p(4),
			MemoryMB:     65536,
			MemoryMBUsed: int64p(8192),
			LocalGB:      1000,
			LocalGBUsed:  int64p(100),
			ServiceHost:  "cmp-01.internal",
		}},
		Aggregates: []inventory.Aggregate{
			{Name: "general", Hosts: []string{"cmp-01.internal", "cmp-02.internal"}},
		},
	}

	out := collect(t, config.CollectorNova, cfg, snap)

	// vcpu term (8*2-4)/2 = 6 is the binding minimum; ram and disk terms are
	// 56 and 90.
	assert.Contains(t, out, `hypervisor_schedulable_instances{aggregate="general",cloud="testcloud",host="cmp-01"} 6`)
	// Capacity variant ignores usage: vcpu term 8*2/2 = 8.
	assert.Contains(t, out, `hypervisor_schedulable_instances_capacity{aggregate="general",cloud="testcloud",host="cmp-01"} 8`)
}

func TestSchedulableInstancesDisabledWithoutUnitSize(t *testing.T) {
	snap := &inventory.Snapshot{
		Hypervisors: []inventory.Hypervisor{{Host: "cmp-01", VCPUs: 8, MemoryMB: 1024, LocalGB: 10}},
	}

	out := collect(t, config.CollectorNova, testConfig(), snap)
	assert.NotContains(t, out, "hypervisor_schedulable_instances")
}

func TestInstanceStats(t *testing.T) {
	snap := &inventory.Snapshot{
		Tenants: []inventory.Tenant{{ID: "t1", Name: "alpha"}},
		Flavors: map[string]inventory.Flavor{
			"small": {RAM: 2048, Disk: 20, VCPUs: 2},
		},
		Instances: []inventory.Instance{
			{ID: "i1", TenantID: "t1", Status: "ACTIVE", FlavorID: "small"},
			{ID: "i2", TenantID: "t1", Status: "ACTIVE", FlavorID: "small"},
			{ID: "i3", TenantID: "t1", Status: "SHUTOFF", FlavorID: "small"},
			{ID: "i4", TenantID: "deleted-tenant", Status: "ACTIVE", FlavorID: "small"},
		},
	}

	out := collect(t, config.CollectorNova, testConfig(), snap)

	assert.Contains(t, out, `nova_instances{cloud="testcloud",instance_state="ACTIVE",tenant="alpha"} 2`)
	assert.Contains(t, out, `nova_instances{cloud="testcloud",instance_state="SHUTOFF",tenant="alpha"} 1`)
	assert.Contains(t, out, `nova_instances{cloud="testcloud",instance_state="ACTIVE",tenant="orphaned"} 1`)

	assert.Contains(t, out, `nova_resources_ram_mbs{cloud="testcloud",tenant="alpha"} 6144`)
	assert.Contains(t, out, `nova_resources_vcpus{cloud="testcloud",tenant="alpha"} 6`)
	assert.Contains(t, out, `nova_resources_disk_gbs{cloud="testcloud",tenant="alpha"} 60`)
	assert.Contains(t, out, `nova_resources_ram_mbs{cloud="testcloud",tenant="orphaned"} 2048`)
	assert.NotContains(t, out, "nova_resources_unavailable")
}

func TestInstanceStatsMissingFlavorGuard(t *testing.T) {
	snap := &inventory.Snapshot{
		Tenants: []inventory.Tenant{{ID: "t1", Name: "alpha"}},
		Flavors: map[string]inventory.Flavor{
			"small": {RAM: 2048, Disk: 20, VCPUs: 2},
		},
		Instances: []inventory.Instance{
			{ID: "i1", TenantID: "t1", Status: "ACTIVE", FlavorID: "small"},
			{ID: "i2", TenantID: "t1", Status: "ACTIVE", FlavorID: "retired-flavor"},
		},
	}

	out := collect(t, config.CollectorNova, testConfig(), snap)

	// One unresolvable flavor withdraws the whole rollup, not just one sample.
	assert.NotContains(t, out, "nova_resources_ram_mbs{")
	assert.NotContains(t, out, "nova_resources_vcpus{")
	assert.NotContains(t, out, "nova_resources_disk_gbs{")
	assert.Contains(t, out, "nova_resources_unavailable 0")

	// The instance counter is unaffected by the guard.
	assert.Contains(t, out, `nova_instances{cloud="testcloud",instance_state="ACTIVE",tenant="alpha"} 2`)
}

func TestComputeQuotas(t *testing.T) {
	snap := &inventory.Snapshot{
		Tenants: []inventory.Tenant{{ID: "t1", Name: "alpha"}, {ID: "t2", Name: "beta"}},
		ComputeQuotas: map[string]inventory.QuotaSet{
			"t1": {
				"cores":        inventory.Tiered(10, 3, 0),
				"ram":          inventory.Tiered(51200, 6144, 0),
				"instances":    inventory.Tiered(20, 4, 1),
				"floating_ips": inventory.Tiered(5, 2, 0),
			},
			"t2": {
				"cores": inventory.Legacy(40),
			},
		},
	}

	out := collect(t, config.CollectorNova, testConfig(), snap)

	assert.Contains(t, out, `nova_quota_cores{cloud="testcloud",tenant="alpha",type="limit"} 10`)
	assert.Contains(t, out, `nova_quota_cores{cloud="testcloud",tenant="alpha",type="in_use"} 3`)
	assert.Contains(t, out, `nova_quota_cores{cloud="testcloud",tenant="alpha",type="reserved"} 0`)
	assert.Contains(t, out, `nova_quota_ram_mbs{cloud="testcloud",tenant="alpha",type="limit"} 51200`)
	assert.Contains(t, out, `nova_quota_instances{cloud="testcloud",tenant="alpha",type="reserved"} 1`)
	assert.Contains(t, out, `nova_quota_floating_ips{cloud="testcloud",tenant="alpha",type="limit"} 5`)

	// Legacy shape yields the limit sample only.
	assert.Contains(t, out, `nova_quota_cores{cloud="testcloud",tenant="beta",type="limit"} 40`)
	assert.NotContains(t, out, `nova_quota_cores{cloud="testcloud",tenant="beta",type="in_use"}`)
}

func TestServiceStates(t *testing.T) {
	snap := &inventory.Snapshot{
		ComputeServices: []inventory.ComputeService{
			{Host: "cmp-01", Binary: "nova-compute", Zone: "nova", Status: "enabled", State: "up"},
			{Host: "cmp-02", Binary: "nova-compute", Zone: "nova", Status: "disabled", State: "down"},
		},
	}

	out := collect(t, config.CollectorNova, testConfig(), snap)

	assert.Contains(t, out,
		`nova_service_state{admin_state="enabled",cloud="testcloud",host="cmp-01",service="nova-compute",zone="nova"} 1`)
	assert.Contains(t, out,
		`nova_service_state{admin_state="disabled",cloud="testcloud",host="cmp-02",service="nova-compute",zone="nova"} 0`)
}
