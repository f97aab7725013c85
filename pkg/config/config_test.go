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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exporter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.CacheRefreshInterval)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval())
	assert.True(t, cfg.CollectorEnabled(CollectorNova))
	assert.True(t, cfg.CollectorEnabled(CollectorNeutron))
	assert.True(t, cfg.CollectorEnabled(CollectorCinder))
	assert.Nil(t, cfg.SchedulableInstanceSize)
	assert.False(t, cfg.UseNovaVolumes)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
cache_file: /tmp/inv.json
cache_refresh_interval: 300
cloud: region-one
enabled_collectors: [nova, neutron]
use_nova_volumes: true
openstack_allocation_ratio_vcpu: 2.0
schedulable_instance_size:
  vcpus: 2
  ram_mbs: 4096
  disk_gbs: 20
listen_port: 9131
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/inv.json", cfg.CacheFile)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, "region-one", cfg.Cloud)
	assert.True(t, cfg.CollectorEnabled(CollectorNova))
	assert.False(t, cfg.CollectorEnabled(CollectorCinder))
	assert.True(t, cfg.UseNovaVolumes)
	assert.Equal(t, 2.0, cfg.AllocationRatioVCPU)
	require.NotNil(t, cfg.SchedulableInstanceSize)
	assert.Equal(t, int64(4096), cfg.SchedulableInstanceSize.RAMMBs)
	assert.Equal(t, 9131, cfg.ListenPort)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown collector", "enabled_collectors: [nova, swift]"},
		{"bad interval", "cache_refresh_interval: 0"},
		{"bad port", "listen_port: 70000"},
		{"bad ratio", "openstack_allocation_ratio_ram: -1"},
		{"bad instance size", "schedulable_instance_size: {vcpus: 0, ram_mbs: 1, disk_gbs: 1}"},
		{"not yaml", "cache_file: [unterminated"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestCredentialsFromEnvV3(t *testing.T) {
	t.Setenv("OS_AUTH_URL", "https://keystone.example.com:5000/v3")
	t.Setenv("OS_USERNAME", "monitor")
	t.Setenv("OS_PASSWORD", "secret")
	t.Setenv("OS_PROJECT_NAME", "admin")
	t.Setenv("OS_IDENTITY_API_VERSION", "3")
	t.Setenv("OS_TENANT_NAME", "")
	t.Setenv("OS_PROJECT_DOMAIN_NAME", "")
	t.Setenv("OS_USER_DOMAIN_NAME", "")

	creds, err := CredentialsFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3, creds.IdentityVersion)
	assert.Equal(t, "admin", creds.ProjectName)
	assert.Equal(t, "Default", creds.ProjectDomainName)
	assert.Equal(t, "Default", creds.UserDomainName)
	assert.Empty(t, creds.TenantName)
}

func TestCredentialsFromEnvV2(t *testing.T) {
	t.Setenv("OS_AUTH_URL", "https://keystone.example.com:5000/v2.0")
	t.Setenv("OS_USERNAME", "monitor")
	t.Setenv("OS_PASSWORD", "secret")
	t.Setenv("OS_IDENTITY_API_VERSION", "2")
	t.Setenv("OS_TENANT_NAME", "admin")
	t.Setenv("OS_PROJECT_NAME", "")

	creds, err := CredentialsFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 2, creds.IdentityVersion)
	assert.Equal(t, "admin", creds.TenantName)
	assert.Empty(t, creds.ProjectName)
}

func TestCredentialsFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing auth url",
			env:  map[string]string{"OS_AUTH_URL": "", "OS_USERNAME": "u", "OS_PASSWORD": "p"},
		},
		{
			name: "missing password",
			env:  map[string]string{"OS_AUTH_URL": "https://k:5000", "OS_USERNAME": "u", "OS_PASSWORD": ""},
		},
		{
			name: "bad identity version",
			env: map[string]string{
				"OS_AUTH_URL": "https://k:5000", "OS_USERNAME": "u", "OS_PASSWORD": "p",
				"OS_IDENTITY_API_VERSION": "4",
			},
		},
		{
			name: "v3 without project",
			env: map[string]string{
				"OS_AUTH_URL": "https://k:5000", "OS_USERNAME": "u", "OS_PASSWORD": "p",
				"OS_IDENTITY_API_VERSION": "3", "OS_PROJECT_NAME": "", "OS_TENANT_NAME": "",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := CredentialsFromEnv()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
		})
	}
}
