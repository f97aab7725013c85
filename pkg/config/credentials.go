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
	"strconv"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
)

// envPrefix is the fixed prefix for credential environment variables.
const envPrefix = "OS_"

// Credentials carries everything needed to authenticate against the identity
// service. Two mutually exclusive shapes exist, selected by IdentityVersion:
// v2 scopes by tenant name, v3 scopes by project plus domains. Credentials
// come only from the environment, never from the config file.
type Credentials struct {
	AuthURL    string
	Username   string
	Password   string
	RegionName string
	CACertPath string

	// IdentityVersion is 2 or 3, from OS_IDENTITY_API_VERSION (default 3).
	IdentityVersion int

	// v2 scope.
	TenantName string

	// v3 scope.
	ProjectName       string
	ProjectDomainName string
	UserDomainName    string
}

func env(name string) string {
	return os.Getenv(envPrefix + name)
}

func envOr(name, fallback string) string {
	if v := env(name); v != "" {
		return v
	}
	return fallback
}

// CredentialsFromEnv resolves credentials from OS_* environment variables and
// validates the shape matching the configured identity API version.
func CredentialsFromEnv() (*Credentials, error) {
	version := 3
	if raw := env("IDENTITY_API_VERSION"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || (parsed != 2 && parsed != 3) {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"OS_IDENTITY_API_VERSION must be 2 or 3",
				map[string]any{"value": raw})
		}
		version = parsed
	}

	creds := &Credentials{
		AuthURL:         env("AUTH_URL"),
		Username:        env("USERNAME"),
		Password:        env("PASSWORD"),
		RegionName:      env("REGION_NAME"),
		CACertPath:      env("CACERT"),
		IdentityVersion: version,
	}

	if creds.AuthURL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "OS_AUTH_URL is required")
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "OS_USERNAME and OS_PASSWORD are required")
	}

	switch version {
	case 2:
		// v2 predates the project vocabulary but deployments set either name.
		creds.TenantName = envOr("TENANT_NAME", env("PROJECT_NAME"))
		if creds.TenantName == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "OS_TENANT_NAME is required for identity v2")
		}
	case 3:
		creds.ProjectName = envOr("PROJECT_NAME", env("TENANT_NAME"))
		if creds.ProjectName == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "OS_PROJECT_NAME is required for identity v3")
		}
		creds.ProjectDomainName = envOr("PROJECT_DOMAIN_NAME", "Default")
		creds.UserDomainName = envOr("USER_DOMAIN_NAME", "Default")
	}

	return creds, nil
}
