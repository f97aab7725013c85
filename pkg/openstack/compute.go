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
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/defaults"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
)

// ListHypervisors returns the detailed hypervisor listing.
func (c *Client) ListHypervisors(ctx context.Context) ([]inventory.Hypervisor, error) {
	var body struct {
		Hypervisors []struct {
			inventory.Hypervisor
			Service struct {
				Host string `json:"host"`
			} `json:"service"`
		} `json:"hypervisors"`
	}
	if err := c.get(ctx, serviceCompute, "/os-hypervisors/detail", nil, &body); err != nil {
		return nil, err
	}

	hypervisors := make([]inventory.Hypervisor, 0, len(body.Hypervisors))
	for _, h := range body.Hypervisors {
		hv := h.Hypervisor
		hv.ServiceHost = h.Service.Host
		hypervisors = append(hypervisors, hv)
	}
	return hypervisors, nil
}

// ListComputeServices returns the nova service listing.
func (c *Client) ListComputeServices(ctx context.Context) ([]inventory.ComputeService, error) {
	var body struct {
		Services []inventory.ComputeService `json:"services"`
	}
	if err := c.get(ctx, serviceCompute, "/os-services", nil, &body); err != nil {
		return nil, err
	}
	return body.Services, nil
}

// ListFlavors returns all flavors keyed by id, including non-public ones.
func (c *Client) ListFlavors(ctx context.Context) (map[string]inventory.Flavor, error) {
	var body struct {
		Flavors []struct {
			ID string `json:"id"`
			inventory.Flavor
		} `json:"flavors"`
	}
	query := url.Values{"is_public": []string{"None"}}
	if err := c.get(ctx, serviceCompute, "/flavors/detail", query, &body); err != nil {
		return nil, err
	}

	flavors := make(map[string]inventory.Flavor, len(body.Flavors))
	for _, f := range body.Flavors {
		flavors[f.ID] = f.Flavor
	}
	return flavors, nil
}

// ListAggregates returns all host aggregates.
func (c *Client) ListAggregates(ctx context.Context) ([]inventory.Aggregate, error) {
	var body struct {
		Aggregates []inventory.Aggregate `json:"aggregates"`
	}
	if err := c.get(ctx, serviceCompute, "/os-aggregates", nil, &body); err != nil {
		return nil, err
	}
	return body.Aggregates, nil
}

// ListInstances materializes the full instance listing across all tenants
// using the stable marker-based cursor: each page is requested with the id of
// the previous page's last instance until a short page arrives.
func (c *Client) ListInstances(ctx context.Context) ([]inventory.Instance, error) {
	var (
		instances []inventory.Instance
		marker    string
	)

	for {
		query := url.Values{
			"all_tenants": []string{"1"},
			"limit":       []string{strconv.Itoa(defaults.InstancePageSize)},
		}
		if marker != "" {
			query.Set("marker", marker)
		}

		var body struct {
			Servers []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Flavor struct {
					ID string `json:"id"`
				} `json:"flavor"`
				ownerID
			} `json:"servers"`
		}
		if err := c.get(ctx, serviceCompute, "/servers/detail", query, &body); err != nil {
			return nil, err
		}

		for _, s := range body.Servers {
			instances = append(instances, inventory.Instance{
				ID:       s.ID,
				TenantID: s.id(),
				Status:   s.Status,
				FlavorID: s.Flavor.ID,
			})
		}

		if len(body.Servers) < defaults.InstancePageSize {
			return instances, nil
		}
		marker = body.Servers[len(body.Servers)-1].ID
	}
}

// ComputeQuota returns the compute quota set for one tenant. When the
// control plane advertises quota-usage support the detail variant is
// requested, yielding tiered values; otherwise the legacy flat shape is
// requested. Both decode through the QuotaValue union.
func (c *Client) ComputeQuota(ctx context.Context, tenantID string) (inventory.QuotaSet, error) {
	path := fmt.Sprintf("/os-quota-sets/%s", tenantID)
	if c.supportsQuotaUsage {
		path += "/detail"
	}

	var body struct {
		QuotaSet map[string]json.RawMessage `json:"quota_set"`
	}
	if err := c.get(ctx, serviceCompute, path, nil, &body); err != nil {
		return nil, err
	}
	return decodeQuotaSet(body.QuotaSet), nil
}

// decodeQuotaSet converts raw quota fields into the union type, skipping
// non-quota metadata such as the echoed tenant id.
func decodeQuotaSet(raw map[string]json.RawMessage) inventory.QuotaSet {
	qs := make(inventory.QuotaSet, len(raw))
	for resource, payload := range raw {
		var q inventory.QuotaValue
		if err := json.Unmarshal(payload, &q); err != nil {
			continue
		}
		qs[resource] = q
	}
	return qs
}
