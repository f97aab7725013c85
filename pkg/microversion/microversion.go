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

// Package microversion parses OpenStack API microversions.
//
// A microversion is a "major.minor" pair advertised by a service's version
// document, e.g. "2.88". Minor components compare numerically, not
// lexically: 2.9 < 2.25.
package microversion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for microversion parsing failures
var (
	ErrEmpty      = errors.New("microversion string is empty")
	ErrBadShape   = errors.New("microversion must have exactly two components")
	ErrNonNumeric = errors.New("microversion component is not numeric")
)

// Version is a parsed API microversion.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// New creates a Version from its components.
func New(major, minor int) Version {
	return Version{Major: major, Minor: minor}
}

// String returns the wire form of the microversion.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Parse parses a "major.minor" microversion string.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmpty
	}

	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("%w: %q", ErrBadShape, s)
	}

	var v Version
	for i, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if i == 0 {
			v.Major = num
		} else {
			v.Minor = num
		}
	}
	return v, nil
}

// AtLeast returns true if v is equal to or newer than other.
func (v Version) AtLeast(other Version) bool {
	if v.Major != other.Major {
		return v.Major > other.Major
	}
	return v.Minor >= other.Minor
}
