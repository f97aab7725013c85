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

import "github.com/cloudinv/openstack-inventory-exporter/pkg/metrics"

// CinderCollector derives volume quota metrics. The snapshot's volume quotas
// may come from the volume service or, with use_nova_volumes, from the
// compute quota set; the metric shape is identical either way.
type CinderCollector struct {
	base
}

var volumeQuotaResources = []struct {
	resource string
	metric   string
	help     string
}{
	{"gigabytes", "cinder_quota_volume_disk_gbs", "Volume storage quota in GB"},
	{"volumes", "cinder_quota_volume_disks", "Volume count quota"},
}

// GetStats renders the cinder metric families from the snapshot.
func (c *CinderCollector) GetStats() ([]byte, error) {
	c.beginScrape()
	c.genQuotas()
	return c.reg.Render()
}

func (c *CinderCollector) genQuotas() {
	for _, spec := range volumeQuotaResources {
		family := c.reg.Family(spec.metric, spec.help, metrics.Gauge, "cloud", "tenant", "type")
		for tenantID, quotas := range c.snap.VolumeQuotas {
			q, ok := quotas[spec.resource]
			if !ok {
				continue
			}
			addQuota(family, q, c.cfg.Cloud, c.tenantLabel(tenantID))
		}
	}
}
