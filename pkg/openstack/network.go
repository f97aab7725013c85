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

package openstack

import (
	"context"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
)

// ownerID carries the two wire spellings of the owning tenant and picks
// whichever is set. Newer network APIs emit project_id, older ones tenant_id.
type ownerID struct {
	TenantID  string `json:"tenant_id"`
	ProjectID string `json:"project_id"`
}

func (o ownerID) id() string {
	if o.ProjectID != "" {
		return o.ProjectID
	}
	return o.TenantID
}

// ListNetworks returns all networks with their subnet ids.
func (c *Client) ListNetworks(ctx context.Context) ([]inventory.Network, error) {
	var body struct {
		Networks []struct {
			ID      string   `json:"id"`
			Name    string   `json:"name"`
			Subnets []string `json:"subnets"`
		} `json:"networks"`
	}
	if err := c.get(ctx, serviceNetwork, "/v2.0/networks", nil, &body); err != nil {
		return nil, err
	}

	networks := make([]inventory.Network, 0, len(body.Networks))
	for _, n := range body.Networks {
		networks = append(networks, inventory.Network{ID: n.ID, Name: n.Name, SubnetIDs: n.Subnets})
	}
	return networks, nil
}

// ListSubnets returns all subnets keyed by id.
func (c *Client) ListSubnets(ctx context.Context) (map[string]inventory.Subnet, error) {
	var body struct {
		Subnets []struct {
			ID              string                     `json:"id"`
			Name            string                     `json:"name"`
			AllocationPools []inventory.AllocationPool `json:"allocation_pools"`
		} `json:"subnets"`
	}
	if err := c.get(ctx, serviceNetwork, "/v2.0/subnets", nil, &body); err != nil {
		return nil, err
	}

	subnets := make(map[string]inventory.Subnet, len(body.Subnets))
	for _, s := range body.Subnets {
		subnets[s.ID] = inventory.Subnet{Name: s.Name, AllocationPools: s.AllocationPools}
	}
	return subnets, nil
}

// ListRouters returns all routers.
func (c *Client) ListRouters(ctx context.Context) ([]inventory.Router, error) {
	var body struct {
		Routers []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			ownerID
		} `json:"routers"`
	}
	if err := c.get(ctx, serviceNetwork, "/v2.0/routers", nil, &body); err != nil {
		return nil, err
	}

	routers := make([]inventory.Router, 0, len(body.Routers))
	for _, r := range body.Routers {
		routers = append(routers, inventory.Router{ID: r.ID, TenantID: r.id(), Status: r.Status})
	}
	return routers, nil
}

// ListPorts returns all ports.
func (c *Client) ListPorts(ctx context.Context) ([]inventory.Port, error) {
	var body struct {
		Ports []struct {
			ID          string              `json:"id"`
			NetworkID   string              `json:"network_id"`
			DeviceID    string              `json:"device_id"`
			DeviceOwner string              `json:"device_owner"`
			Status      string              `json:"status"`
			FixedIPs    []inventory.FixedIP `json:"fixed_ips"`
		} `json:"ports"`
	}
	if err := c.get(ctx, serviceNetwork, "/v2.0/ports", nil, &body); err != nil {
		return nil, err
	}

	ports := make([]inventory.Port, 0, len(body.Ports))
	for _, p := range body.Ports {
		ports = append(ports, inventory.Port{
			ID:          p.ID,
			NetworkID:   p.NetworkID,
			DeviceID:    p.DeviceID,
			DeviceOwner: p.DeviceOwner,
			Status:      p.Status,
			FixedIPs:    p.FixedIPs,
		})
	}
	return ports, nil
}

// ListFloatingIPs returns all floating IP allocations.
func (c *Client) ListFloatingIPs(ctx context.Context) ([]inventory.FloatingIP, error) {
	var body struct {
		FloatingIPs []struct {
			ID                string `json:"id"`
			FloatingNetworkID string `json:"floating_network_id"`
			Status            string `json:"status"`
			ownerID
		} `json:"floatingips"`
	}
	if err := c.get(ctx, serviceNetwork, "/v2.0/floatingips", nil, &body); err != nil {
		return nil, err
	}

	ips := make([]inventory.FloatingIP, 0, len(body.FloatingIPs))
	for _, ip := range body.FloatingIPs {
		ips = append(ips, inventory.FloatingIP{
			ID:                ip.ID,
			TenantID:          ip.id(),
			FloatingNetworkID: ip.FloatingNetworkID,
			Status:            ip.Status,
		})
	}
	return ips, nil
}

// ListNetworkAgents returns the network service (agent) listing.
func (c *Client) ListNetworkAgents(ctx context.Context) ([]inventory.NetworkAgent, error) {
	var body struct {
		Agents []inventory.NetworkAgent `json:"agents"`
	}
	if err := c.get(ctx, serviceNetwork, "/v2.0/agents", nil, &body); err != nil {
		return nil, err
	}
	return body.Agents, nil
}
