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

// Package server exposes the scrape endpoint.
//
// Every GET /metrics request instantiates the enabled collectors against the
// current snapshot and concatenates their rendered output with the gatherer's
// freshness gauges and the process self metrics. Requests never touch the
// live control plane, so a slow cloud API affects cache age, not scrape
// latency. The only hard failure is the absence of any committed snapshot.
package server
