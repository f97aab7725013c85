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
	"net/netip"
	"strings"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/metrics"
)

// routerGatewayOwner is the device owner neutron assigns to a router's
// external gateway port.
const routerGatewayOwner = "network:router_gateway"

// NeutronCollector derives network metrics: public IP usage, network address
// pool sizes, and agent liveness.
type NeutronCollector struct {
	base
}

// GetStats renders the neutron metric families from the snapshot.
func (c *NeutronCollector) GetStats() ([]byte, error) {
	c.beginScrape()
	c.genPublicIPUsage()
	c.genNetworkSizes()
	c.genAgentStates()
	return c.reg.Render()
}

// genPublicIPUsage counts floating IPs and router gateway IPs per
// (subnet, tenant, kind, status). Records sharing a key accumulate into one
// counter value.
func (c *NeutronCollector) genPublicIPUsage() {
	usage := c.reg.Family("neutron_public_ip_usage",
		"Public (floating and router gateway) IP allocations",
		metrics.Counter, "cloud", "subnet", "tenant", "ip_type", "ip_status")

	networkName := make(map[string]string, len(c.snap.Networks))
	for _, n := range c.snap.Networks {
		networkName[n.ID] = n.Name
	}
	subnetLabel := func(networkID string) string {
		if name, ok := networkName[networkID]; ok {
			return name
		}
		return fmt.Sprintf("unknown subnet (%s)", networkID)
	}

	for _, ip := range c.snap.FloatingIPs {
		usage.Add(1, c.cfg.Cloud, subnetLabel(ip.FloatingNetworkID),
			c.tenantLabel(ip.TenantID), "floatingip", ip.Status)
	}

	// A router consumes a public IP through its gateway port, counted only
	// when that port is active and actually carries a fixed IP.
	for _, router := range c.snap.Routers {
		for _, port := range c.snap.Ports {
			if port.DeviceID != router.ID || port.DeviceOwner != routerGatewayOwner {
				continue
			}
			if port.Status != "ACTIVE" || len(port.FixedIPs) == 0 {
				continue
			}
			usage.Add(1, c.cfg.Cloud, subnetLabel(port.NetworkID),
				c.tenantLabel(router.TenantID), "routerip", port.Status)
		}
	}
}

// genNetworkSizes reports the IPv4 address capacity of each network: the sum
// of all allocation pool sizes across its subnets. IPv6 pools are skipped so
// their sizes do not dwarf the IPv4 figures in the same gauge.
func (c *NeutronCollector) genNetworkSizes() {
	size := c.reg.Family("neutron_net_size",
		"IPv4 allocation pool capacity per network", metrics.Gauge, "cloud", "network")

	for _, network := range c.snap.Networks {
		var total float64
		for _, subnetID := range network.SubnetIDs {
			subnet, ok := c.snap.Subnets[subnetID]
			if !ok {
				continue
			}
			for _, pool := range subnet.AllocationPools {
				if strings.Contains(pool.Start, ":") {
					continue // IPv6
				}
				total += poolSize(pool.Start, pool.End)
			}
		}
		size.Add(total, c.cfg.Cloud, network.Name)
	}
}

// poolSize returns the inclusive address count of an IPv4 range, or 0 when
// either endpoint does not parse.
func poolSize(start, end string) float64 {
	s, err := netip.ParseAddr(start)
	if err != nil || !s.Is4() {
		return 0
	}
	e, err := netip.ParseAddr(end)
	if err != nil || !e.Is4() {
		return 0
	}

	sv := s.As4()
	ev := e.As4()
	si := uint32(sv[0])<<24 | uint32(sv[1])<<16 | uint32(sv[2])<<8 | uint32(sv[3])
	ei := uint32(ev[0])<<24 | uint32(ev[1])<<16 | uint32(ev[2])<<8 | uint32(ev[3])
	if ei < si {
		return 0
	}
	return float64(ei-si) + 1
}

// genAgentStates maps the network agent listing to liveness gauges, using
// the same admin-state vocabulary as the compute service feed.
func (c *NeutronCollector) genAgentStates() {
	state := c.reg.Family("neutron_agent_state",
		"Network agent liveness (1 alive, 0 dead)",
		metrics.Gauge, "cloud", "host", "service", "zone", "admin_state")

	for _, agent := range c.snap.NetworkAgents {
		adminState := "disabled"
		if agent.AdminStateUp {
			adminState = "enabled"
		}
		state.Add(boolToFloat(agent.Alive),
			c.cfg.Cloud, agent.Host, agent.Binary, agent.AvailabilityZone, adminState)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
