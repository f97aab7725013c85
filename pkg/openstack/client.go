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

// Package openstack is the inventory client for the cloud control plane. It
// authenticates against the identity service (keystone v2 or v3), resolves
// service endpoints from the catalog, and exposes typed listings for the
// identity, compute, network, and volume sub-APIs.
//
// Shape ambiguities in the control-plane surface (the tenant/project
// vocabulary split and the legacy/detailed quota API split) are resolved once
// at client construction into explicit capability fields; request paths then
// branch on those fields rather than probing by catching errors.
package openstack

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/config"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/defaults"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/microversion"
)

// Service types resolved from the catalog.
const (
	serviceCompute  = "compute"
	serviceNetwork  = "network"
	serviceVolume   = "volumev3"
	serviceVolumeV2 = "volumev2"
)

// quotaDetailMicroversion is the compute API microversion that introduced
// detailed (limit/in_use/reserved) quota reporting.
var quotaDetailMicroversion = microversion.New(2, 25)

// Client is an authenticated handle on the control plane.
type Client struct {
	http  *http.Client
	creds *config.Credentials

	token     string
	endpoints map[string]string

	// Capabilities resolved once at construction.
	identityVersion    int  // 2 or 3; selects the tenant/project vocabulary
	supportsQuotaUsage bool // compute quota API accepts the detail flag
}

// NewClient authenticates against the identity service and resolves the
// service catalog and compute capabilities. The returned client is safe for
// sequential use by the gatherer; it is not shared across goroutines.
func NewClient(ctx context.Context, creds *config.Credentials) (*Client, error) {
	httpClient, err := newHTTPClient(creds.CACertPath)
	if err != nil {
		return nil, err
	}

	c := &Client{
		http:            httpClient,
		creds:           creds,
		identityVersion: creds.IdentityVersion,
		endpoints:       make(map[string]string),
	}

	switch creds.IdentityVersion {
	case 2:
		err = c.authenticateV2(ctx)
	case 3:
		err = c.authenticateV3(ctx)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "identity API version must be 2 or 3")
	}
	if err != nil {
		return nil, err
	}

	if err := c.probeComputeVersion(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// newHTTPClient builds the retrying transport, optionally trusting an extra
// CA certificate.
func newHTTPClient(caCertPath string) (*http.Client, error) {
	rc := retryablehttp.NewClient()
	rc.RetryMax = defaults.ClientRetryMax
	rc.RetryWaitMin = defaults.ClientRetryWaitMin
	rc.RetryWaitMax = defaults.ClientRetryWaitMax
	rc.HTTPClient.Timeout = defaults.ClientRequestTimeout
	rc.Logger = nil // suppress default logging

	if caCertPath != "" {
		pem, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, fmt.Sprintf("read CA certificate %s", caCertPath), err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "CA certificate contains no usable PEM data")
		}
		rc.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		}
	}

	return rc.StandardClient(), nil
}

// do issues one authenticated request and decodes the JSON response into out.
// A nil out discards the body.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUpstream, "control-plane request failed", err,
			map[string]any{"url": rawURL})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeUpstream, "read control-plane response", err,
			map[string]any{"url": rawURL})
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.NewWithContext(errors.ErrCodeUnauthorized, "control plane rejected credentials",
			map[string]any{"url": rawURL, "status": resp.StatusCode})
	case resp.StatusCode >= 400:
		return errors.NewWithContext(errors.ErrCodeUpstream, "control plane returned an error",
			map[string]any{"url": rawURL, "status": resp.StatusCode, "body": truncate(string(data), 256)})
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.WrapWithContext(errors.ErrCodeUpstream, "decode control-plane response", err,
			map[string]any{"url": rawURL})
	}
	return nil
}

// get issues an authenticated GET against a catalog endpoint path.
func (c *Client) get(ctx context.Context, service, path string, query url.Values, out any) error {
	base, ok := c.endpoints[service]
	if !ok {
		return errors.NewWithContext(errors.ErrCodeUpstream, "service missing from catalog",
			map[string]any{"service": service})
	}
	u := strings.TrimRight(base, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, u, nil, out)
}

// Endpoint returns the resolved endpoint for a catalog service type, mainly
// for logging.
func (c *Client) Endpoint(service string) string {
	return c.endpoints[service]
}

// SupportsQuotaUsage reports whether the compute quota API accepts the detail
// flag, resolved once from the advertised microversion.
func (c *Client) SupportsQuotaUsage() bool {
	return c.supportsQuotaUsage
}

// IdentityVersion returns the identity API version the client authenticated
// with.
func (c *Client) IdentityVersion() int {
	return c.identityVersion
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
