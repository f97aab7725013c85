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
	"net/http"
	"strings"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
)

// identityBase returns the identity endpoint from the catalog, falling back
// to the configured auth URL. Both carry the version path segment.
func (c *Client) identityBase() string {
	if base, ok := c.endpoints["identity"]; ok {
		return strings.TrimRight(base, "/")
	}
	return strings.TrimRight(c.creds.AuthURL, "/")
}

// ListTenants returns the tenant/project list, normalized across the two
// identity vocabularies. v3 serves /projects, v2 serves /tenants; both carry
// the same {id, name} pairs. The branch is on the version tag resolved at
// construction, not on a failed request.
func (c *Client) ListTenants(ctx context.Context) ([]inventory.Tenant, error) {
	var (
		path string
		body struct {
			Projects []inventory.Tenant `json:"projects"`
			Tenants  []inventory.Tenant `json:"tenants"`
		}
	)
	if c.identityVersion == 3 {
		path = "/projects"
	} else {
		path = "/tenants"
	}

	if err := c.do(ctx, http.MethodGet, c.identityBase()+path, nil, &body); err != nil {
		return nil, err
	}
	if c.identityVersion == 3 {
		return body.Projects, nil
	}
	return body.Tenants, nil
}
