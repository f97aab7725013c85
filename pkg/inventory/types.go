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

package inventory

import "encoding/json"

// Snapshot is one complete, immutable, point-in-time capture of cloud
// inventory. It is assembled by a single gather cycle and committed atomically
// to the cache; readers never observe a partially written snapshot.
type Snapshot struct {
	Tenants     []Tenant          `json:"tenants"`
	Networks    []Network         `json:"networks"`
	Subnets     map[string]Subnet `json:"subnets"`
	Routers     []Router          `json:"routers"`
	Ports       []Port            `json:"ports"`
	FloatingIPs []FloatingIP      `json:"floating_ips"`

	Hypervisors     []Hypervisor      `json:"hypervisors"`
	ComputeServices []ComputeService  `json:"compute_services"`
	NetworkAgents   []NetworkAgent    `json:"network_agents"`
	Flavors         map[string]Flavor `json:"flavors"`
	Aggregates      []Aggregate       `json:"aggregates"`
	Instances       []Instance        `json:"instances"`

	ComputeQuotas map[string]QuotaSet `json:"compute_quotas"`
	VolumeQuotas  map[string]QuotaSet `json:"volume_quotas"`
}

// Tenant is a billing/isolation boundary. The identity API calls these
// "projects" in v3 and "tenants" in v2; the client normalizes both
// vocabularies into this one type.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Network is a neutron network with the ids of its subnets.
type Network struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SubnetIDs []string `json:"subnet_ids"`
}

// Subnet holds the fields needed for address-pool sizing.
type Subnet struct {
	Name            string           `json:"name"`
	AllocationPools []AllocationPool `json:"allocation_pools"`
}

// AllocationPool is an inclusive address range within a subnet.
type AllocationPool struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Router is a neutron router. Its external gateway port, if any, is found in
// the snapshot's port list by device id and owner.
type Router struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Status   string `json:"status"`
}

// Port is a neutron port.
type Port struct {
	ID          string    `json:"id"`
	NetworkID   string    `json:"network_id"`
	DeviceID    string    `json:"device_id"`
	DeviceOwner string    `json:"device_owner"`
	Status      string    `json:"status"`
	FixedIPs    []FixedIP `json:"fixed_ips"`
}

// FixedIP is an address assignment on a port.
type FixedIP struct {
	SubnetID  string `json:"subnet_id"`
	IPAddress string `json:"ip_address"`
}

// FloatingIP is a neutron floating IP allocation.
type FloatingIP struct {
	ID                string `json:"id"`
	TenantID          string `json:"tenant_id"`
	FloatingNetworkID string `json:"floating_network_id"`
	Status            string `json:"status"`
}

// Hypervisor is one compute host as reported by the hypervisor listing.
// Usage fields are pointers because a disabled host reports them as null;
// collectors treat nil as zero.
type Hypervisor struct {
	Host         string          `json:"hypervisor_hostname"`
	CPUInfo      json.RawMessage `json:"cpu_info,omitempty"`
	VCPUs        int64           `json:"vcpus"`
	VCPUsUsed    *int64          `json:"vcpus_used"`
	MemoryMB     int64           `json:"memory_mb"`
	MemoryMBUsed *int64          `json:"memory_mb_used"`
	LocalGB      int64           `json:"local_gb"`
	LocalGBUsed  *int64          `json:"local_gb_used"`
	RunningVMs   *int64          `json:"running_vms"`
	ServiceHost  string          `json:"service_host"`
}

// ComputeService is one row of the nova service listing. Liveness is split
// across two fields: Status carries the operator-set admin state
// ("enabled"/"disabled") and State carries the health check ("up"/"down").
type ComputeService struct {
	Host   string `json:"host"`
	Binary string `json:"binary"`
	Zone   string `json:"zone"`
	Status string `json:"status"`
	State  string `json:"state"`
}

// NetworkAgent is one row of the neutron agent listing. It expresses the same
// liveness concept as ComputeService with a different vocabulary.
type NetworkAgent struct {
	Host             string `json:"host"`
	Binary           string `json:"binary"`
	AvailabilityZone string `json:"availability_zone"`
	AdminStateUp     bool   `json:"admin_state_up"`
	Alive            bool   `json:"alive"`
}

// Flavor holds the resource dimensions of an instance type.
type Flavor struct {
	RAM   int64 `json:"ram"`
	Disk  int64 `json:"disk"`
	VCPUs int64 `json:"vcpus"`
}

// Aggregate is a named group of compute hosts.
type Aggregate struct {
	Name  string   `json:"name"`
	Hosts []string `json:"hosts"`
}

// Instance is one server record from the paginated full-instance listing.
type Instance struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Status   string `json:"status"`
	FlavorID string `json:"flavor_id"`
}

// QuotaSet maps a resource name (cores, ram, instances, gigabytes, ...) to
// its quota value.
type QuotaSet map[string]QuotaValue

// ValueOrZero dereferences an optional usage field, treating absent as zero.
func ValueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
