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

package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
)

func testSnapshot(cloudSuffix string) *inventory.Snapshot {
	return &inventory.Snapshot{
		Tenants: []inventory.Tenant{
			{ID: "t1", Name: "alpha" + cloudSuffix},
		},
		ComputeQuotas: map[string]inventory.QuotaSet{
			"t1": {
				"cores":     inventory.Tiered(10, 3, 0),
				"instances": inventory.Legacy(5),
			},
		},
	}
}

func TestReadBeforeFirstWrite(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cache.json"))

	_, _, err := s.Read()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	_, err = s.LastModified()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	s := NewStore(path)

	require.NoError(t, s.Write(testSnapshot("")))

	snap, mtime, err := s.Read()
	require.NoError(t, err)
	assert.False(t, mtime.IsZero())
	require.Len(t, snap.Tenants, 1)
	assert.Equal(t, "alpha", snap.Tenants[0].Name)

	// The quota union survives the round trip through the cache.
	assert.True(t, snap.ComputeQuotas["t1"]["cores"].Detailed)
	assert.Equal(t, float64(3), snap.ComputeQuotas["t1"]["cores"].InUse)
	assert.False(t, snap.ComputeQuotas["t1"]["instances"].Detailed)

	// No temp file is left behind after a successful commit.
	_, err = os.Stat(path + ".new")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteReplacesWholesale(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cache.json"))

	require.NoError(t, s.Write(testSnapshot("-old")))
	require.NoError(t, s.Write(testSnapshot("-new")))

	snap, _, err := s.Read()
	require.NoError(t, err)
	require.Len(t, snap.Tenants, 1)
	assert.Equal(t, "alpha-new", snap.Tenants[0].Name)
}

func TestReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	_, _, err := NewStore(path).Read()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCorrupt))
}
