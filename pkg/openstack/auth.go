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
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/microversion"
)

// v3 token request/response shapes.

type v3AuthRequest struct {
	Auth struct {
		Identity struct {
			Methods  []string `json:"methods"`
			Password struct {
				User struct {
					Name   string   `json:"name"`
					Domain v3Domain `json:"domain"`
					Pass   string   `json:"password"`
				} `json:"user"`
			} `json:"password"`
		} `json:"identity"`
		Scope struct {
			Project struct {
				Name   string   `json:"name"`
				Domain v3Domain `json:"domain"`
			} `json:"project"`
		} `json:"scope"`
	} `json:"auth"`
}

type v3Domain struct {
	Name string `json:"name"`
}

type v3TokenResponse struct {
	Token struct {
		Catalog []struct {
			Type      string `json:"type"`
			Endpoints []struct {
				Interface string `json:"interface"`
				Region    string `json:"region"`
				URL       string `json:"url"`
			} `json:"endpoints"`
		} `json:"catalog"`
	} `json:"token"`
}

// v2 token request/response shapes.

type v2AuthRequest struct {
	Auth struct {
		PasswordCredentials struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"passwordCredentials"`
		TenantName string `json:"tenantName"`
	} `json:"auth"`
}

type v2TokenResponse struct {
	Access struct {
		Token struct {
			ID string `json:"id"`
		} `json:"token"`
		ServiceCatalog []struct {
			Type      string `json:"type"`
			Endpoints []struct {
				Region    string `json:"region"`
				PublicURL string `json:"publicURL"`
			} `json:"endpoints"`
		} `json:"serviceCatalog"`
	} `json:"access"`
}

// authenticateV3 exchanges password credentials for a token at
// <auth_url>/auth/tokens and records the service catalog. The token itself
// travels in the X-Subject-Token response header.
func (c *Client) authenticateV3(ctx context.Context) error {
	var reqBody v3AuthRequest
	reqBody.Auth.Identity.Methods = []string{"password"}
	reqBody.Auth.Identity.Password.User.Name = c.creds.Username
	reqBody.Auth.Identity.Password.User.Domain = v3Domain{Name: c.creds.UserDomainName}
	reqBody.Auth.Identity.Password.User.Pass = c.creds.Password
	reqBody.Auth.Scope.Project.Name = c.creds.ProjectName
	reqBody.Auth.Scope.Project.Domain = v3Domain{Name: c.creds.ProjectDomainName}

	resp, data, err := c.postAuth(ctx, strings.TrimRight(c.creds.AuthURL, "/")+"/auth/tokens", reqBody)
	if err != nil {
		return err
	}

	var body v3TokenResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return wrapAuthDecode(err)
	}

	c.token = resp.Header.Get("X-Subject-Token")
	if c.token == "" {
		return errUnauthorized("token exchange returned no subject token")
	}

	for _, svc := range body.Token.Catalog {
		for _, ep := range svc.Endpoints {
			if ep.Interface != "public" {
				continue
			}
			if c.creds.RegionName != "" && ep.Region != c.creds.RegionName {
				continue
			}
			c.endpoints[svc.Type] = ep.URL
			break
		}
	}
	return nil
}

// authenticateV2 exchanges password credentials for a token at
// <auth_url>/tokens and records the service catalog.
func (c *Client) authenticateV2(ctx context.Context) error {
	var reqBody v2AuthRequest
	reqBody.Auth.PasswordCredentials.Username = c.creds.Username
	reqBody.Auth.PasswordCredentials.Password = c.creds.Password
	reqBody.Auth.TenantName = c.creds.TenantName

	_, data, err := c.postAuth(ctx, strings.TrimRight(c.creds.AuthURL, "/")+"/tokens", reqBody)
	if err != nil {
		return err
	}

	var body v2TokenResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return wrapAuthDecode(err)
	}

	c.token = body.Access.Token.ID
	if c.token == "" {
		return errUnauthorized("token exchange returned no token id")
	}

	for _, svc := range body.Access.ServiceCatalog {
		for _, ep := range svc.Endpoints {
			if c.creds.RegionName != "" && ep.Region != c.creds.RegionName {
				continue
			}
			c.endpoints[svc.Type] = ep.PublicURL
			break
		}
	}
	return nil
}

// postAuth issues the unauthenticated token exchange and returns the raw
// response for header and body inspection.
func (c *Client) postAuth(ctx context.Context, url string, reqBody any) (*http.Response, []byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, wrapInternal("marshal auth request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, nil, wrapInternal("build auth request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, wrapUpstream("token exchange failed", err, url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, wrapUpstream("read token response", err, url)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, nil, errUnauthorized("identity service rejected credentials")
	}
	if resp.StatusCode >= 400 {
		return nil, nil, wrapUpstream("token exchange returned an error", nil, url)
	}
	return resp, data, nil
}

// computeVersionResponse is the version document served at the compute
// endpoint root.
type computeVersionResponse struct {
	Version struct {
		Version string `json:"version"` // max microversion, e.g. "2.88"
	} `json:"version"`
}

// probeComputeVersion resolves the quota-detail capability from the compute
// API's advertised maximum microversion. A failed probe degrades to the
// legacy quota shape; quota collection still works, it just reports limits
// only.
func (c *Client) probeComputeVersion(ctx context.Context) error {
	base, ok := c.endpoints[serviceCompute]
	if !ok {
		// No compute endpoint in the catalog. Listings will fail with a
		// catalog error later if the nova collector is enabled.
		return nil
	}

	var body computeVersionResponse
	if err := c.do(ctx, http.MethodGet, strings.TrimRight(base, "/"), nil, &body); err != nil {
		slog.Warn("compute version probe failed, assuming legacy quota API", "error", err)
		return nil
	}

	max, err := microversion.Parse(body.Version.Version)
	if err != nil {
		slog.Warn("compute version probe returned no parseable microversion",
			"version", body.Version.Version, "error", err)
		return nil
	}
	c.supportsQuotaUsage = max.AtLeast(quotaDetailMicroversion)
	return nil
}
