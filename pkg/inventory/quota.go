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

import (
	"encoding/json"
	"fmt"
)

// QuotaValue is the tagged union behind the two quota API shapes. A legacy
// control plane reports a bare numeric limit; a control plane that supports
// detailed quotas reports {limit, in_use, reserved}. The shape is decided
// once at parse time and carried in Detailed, so collectors branch on the tag
// instead of re-inspecting the payload.
type QuotaValue struct {
	Limit    float64 `json:"limit"`
	InUse    float64 `json:"in_use"`
	Reserved float64 `json:"reserved"`
	Detailed bool    `json:"detailed"`
}

// tieredQuota mirrors the detailed quota wire shape.
type tieredQuota struct {
	Limit    float64 `json:"limit"`
	InUse    float64 `json:"in_use"`
	Reserved float64 `json:"reserved"`
}

// UnmarshalJSON accepts either a bare number (legacy limit-only quota) or a
// {limit, in_use, reserved} object (tiered quota).
func (q *QuotaValue) UnmarshalJSON(data []byte) error {
	var limit float64
	if err := json.Unmarshal(data, &limit); err == nil {
		*q = QuotaValue{Limit: limit}
		return nil
	}

	var tiered tieredQuota
	if err := json.Unmarshal(data, &tiered); err != nil {
		return fmt.Errorf("quota value is neither a number nor a detail object: %w", err)
	}
	*q = QuotaValue{
		Limit:    tiered.Limit,
		InUse:    tiered.InUse,
		Reserved: tiered.Reserved,
		Detailed: true,
	}
	return nil
}

// MarshalJSON emits the same shape that was parsed, so a snapshot round-trips
// through the cache without losing the legacy/tiered distinction.
func (q QuotaValue) MarshalJSON() ([]byte, error) {
	if !q.Detailed {
		return json.Marshal(q.Limit)
	}
	return json.Marshal(tieredQuota{Limit: q.Limit, InUse: q.InUse, Reserved: q.Reserved})
}

// Legacy builds a limit-only quota value.
func Legacy(limit float64) QuotaValue {
	return QuotaValue{Limit: limit}
}

// Tiered builds a detailed quota value.
func Tiered(limit, inUse, reserved float64) QuotaValue {
	return QuotaValue{Limit: limit, InUse: inUse, Reserved: reserved, Detailed: true}
}
