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

	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
)

// volumeService picks whichever volume service type the catalog advertises.
func (c *Client) volumeService() (string, bool) {
	for _, svc := range []string{serviceVolume, serviceVolumeV2, "volume"} {
		if _, ok := c.endpoints[svc]; ok {
			return svc, true
		}
	}
	return "", false
}

// VolumeQuota returns the volume quota set for one tenant from the volume
// service. Usage reporting is requested; a control plane that ignores the
// flag answers with the flat legacy shape, which the QuotaValue union
// absorbs.
func (c *Client) VolumeQuota(ctx context.Context, tenantID string) (inventory.QuotaSet, error) {
	svc, ok := c.volumeService()
	if !ok {
		return nil, wrapUpstream("no volume service in catalog", nil, "")
	}

	query := url.Values{"usage": []string{"true"}}
	var body struct {
		QuotaSet map[string]json.RawMessage `json:"quota_set"`
	}
	if err := c.get(ctx, svc, fmt.Sprintf("/os-quota-sets/%s", tenantID), query, &body); err != nil {
		return nil, err
	}
	return decodeQuotaSet(body.QuotaSet), nil
}
