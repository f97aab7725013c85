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

// Package metrics accumulates metric samples and renders them in the
// Prometheus text exposition format.
//
// Collectors derive samples from a snapshot and feed them into a Registry.
// Samples are unique by (family name, label values); adding the same key
// twice accumulates the value instead of overwriting it, which is how the
// derivation algorithms fold multiple inventory records into one counter.
package metrics

import (
	"bytes"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
)

// ContentType is the Content-Type of the rendered exposition body.
const ContentType = "text/plain; version=0.0.4"

// Kind distinguishes counter from gauge families.
type Kind int

const (
	// Gauge families report point-in-time values.
	Gauge Kind = iota
	// Counter families report accumulated counts.
	Counter
)

// valueType maps a Kind to the client_golang value type.
func (k Kind) valueType() prometheus.ValueType {
	if k == Counter {
		return prometheus.CounterValue
	}
	return prometheus.GaugeValue
}

// Registry accumulates samples grouped into named families and renders them.
// It is not safe for concurrent use; each request builds its own.
type Registry struct {
	families map[string]*Family
	order    []string
}

// NewRegistry creates an empty sample registry.
func NewRegistry() *Registry {
	return &Registry{families: make(map[string]*Family)}
}

// Family declares (or returns the existing) metric family with the given
// name, help text, kind, and ordered label names.
func (r *Registry) Family(name, help string, kind Kind, labelNames ...string) *Family {
	if f, ok := r.families[name]; ok {
		return f
	}
	f := &Family{
		name:       name,
		help:       help,
		kind:       kind,
		labelNames: labelNames,
		samples:    make(map[string]*sample),
	}
	r.families[name] = f
	r.order = append(r.order, name)
	return f
}

// Drop removes a family and all of its samples. Used by the all-or-nothing
// flavor guard to withdraw a partially accumulated family.
func (r *Registry) Drop(name string) {
	if _, ok := r.families[name]; !ok {
		return
	}
	delete(r.families, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Render serializes all accumulated samples through a pedantic prometheus
// registry, which enforces metric and label consistency before encoding.
func (r *Registry) Render() ([]byte, error) {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(constCollector{r}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "register samples", err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "gather samples", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "encode exposition text", err)
		}
	}
	return buf.Bytes(), nil
}

// Family is one named metric family with a fixed label schema.
type Family struct {
	name       string
	help       string
	kind       Kind
	labelNames []string
	samples    map[string]*sample
	order      []string
}

type sample struct {
	labelValues []string
	value       float64
}

// sampleKeySep separates label values in the uniqueness key. Label values
// containing the separator byte would collide, but 0xff never appears in
// valid UTF-8 label values.
const sampleKeySep = "\xff"

// Add accumulates value into the sample identified by labelValues, creating
// it if absent. labelValues must match the family's label names in length
// and order.
func (f *Family) Add(value float64, labelValues ...string) {
	key := strings.Join(labelValues, sampleKeySep)
	if s, ok := f.samples[key]; ok {
		s.value += value
		return
	}
	// Copy: callers may build label slices with append and reuse the
	// backing array between calls.
	vals := make([]string, len(labelValues))
	copy(vals, labelValues)
	f.samples[key] = &sample{labelValues: vals, value: value}
	f.order = append(f.order, key)
}

// constCollector exposes a Registry's samples as const metrics.
type constCollector struct {
	r *Registry
}

func (c constCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, name := range c.r.order {
		f := c.r.families[name]
		ch <- prometheus.NewDesc(f.name, f.help, f.labelNames, nil)
	}
}

func (c constCollector) Collect(ch chan<- prometheus.Metric) {
	for _, name := range c.r.order {
		f := c.r.families[name]
		desc := prometheus.NewDesc(f.name, f.help, f.labelNames, nil)

		// Deterministic sample order for idempotent rendering.
		keys := make([]string, len(f.order))
		copy(keys, f.order)
		sort.Strings(keys)

		for _, key := range keys {
			s := f.samples[key]
			ch <- prometheus.MustNewConstMetric(desc, f.kind.valueType(), s.value, s.labelValues...)
		}
	}
}
