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

// cpuInfo is the subset of the hypervisor cpu_info payload we care about.
type cpuInfo struct {
	Arch string `json:"arch"`
}

// Architecture extracts the CPU architecture from the hypervisor's cpu_info
// field. Newer control planes return cpu_info as a structured object; older
// ones return a JSON string whose content is itself the serialized object.
// Returns ok=false when cpu_info is absent, unparseable, or carries no arch.
func (h Hypervisor) Architecture() (arch string, ok bool) {
	if len(h.CPUInfo) == 0 {
		return "", false
	}

	var info cpuInfo
	if err := json.Unmarshal(h.CPUInfo, &info); err == nil && info.Arch != "" {
		return info.Arch, true
	}

	// String-wrapped shape: unwrap the string, then parse its content.
	var wrapped string
	if err := json.Unmarshal(h.CPUInfo, &wrapped); err != nil {
		return "", false
	}
	if err := json.Unmarshal([]byte(wrapped), &info); err != nil || info.Arch == "" {
		return "", false
	}
	return info.Arch, true
}
