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

package metrics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccumulates(t *testing.T) {
	r := NewRegistry()
	f := r.Family("test_ips", "Test IP counter", Counter, "cloud", "tenant")

	f.Add(1, "c1", "alpha")
	f.Add(1, "c1", "alpha")
	f.Add(1, "c1", "beta")

	out, err := r.Render()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, `test_ips{cloud="c1",tenant="alpha"} 2`)
	assert.Contains(t, text, `test_ips{cloud="c1",tenant="beta"} 1`)
	assert.Contains(t, text, "# TYPE test_ips counter")
}

func TestRenderIdempotent(t *testing.T) {
	r := NewRegistry()
	f := r.Family("test_size", "Test gauge", Gauge, "network")
	f.Add(10, "net-b")
	f.Add(4, "net-a")

	first, err := r.Render()
	require.NoError(t, err)
	second, err := r.Render()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFamilyReturnsExisting(t *testing.T) {
	r := NewRegistry()
	a := r.Family("test_metric", "help", Gauge, "l")
	b := r.Family("test_metric", "other help", Counter, "l")

	assert.Same(t, a, b)
}

func TestDrop(t *testing.T) {
	r := NewRegistry()
	r.Family("test_kept", "kept", Gauge).Add(1)
	r.Family("test_dropped", "dropped", Gauge, "tenant").Add(5, "alpha")

	r.Drop("test_dropped")
	r.Family("test_replacement", "replacement", Gauge).Add(0)

	out, err := r.Render()
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "test_kept")
	assert.Contains(t, text, "test_replacement")
	assert.NotContains(t, text, "test_dropped")

	// Dropping an unknown family is a no-op.
	r.Drop("test_never_existed")
}

func TestRenderNoLabels(t *testing.T) {
	r := NewRegistry()
	r.Family("test_plain", "No labels", Gauge).Add(3.5)

	out, err := r.Render()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "test_plain 3.5"))
}

func TestRenderEmpty(t *testing.T) {
	r := NewRegistry()
	out, err := r.Render()
	require.NoError(t, err)
	assert.Empty(t, out)
}
