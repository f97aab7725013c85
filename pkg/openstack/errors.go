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

import "github.com/cloudinv/openstack-inventory-exporter/pkg/errors"

func wrapInternal(msg string, err error) error {
	return errors.Wrap(errors.ErrCodeInternal, msg, err)
}

func wrapUpstream(msg string, err error, url string) error {
	return errors.WrapWithContext(errors.ErrCodeUpstream, msg, err, map[string]any{"url": url})
}

func wrapAuthDecode(err error) error {
	return errors.Wrap(errors.ErrCodeUpstream, "decode token response", err)
}

func errUnauthorized(msg string) error {
	return errors.New(errors.ErrCodeUnauthorized, msg)
}
