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

// Package cache persists the latest successfully gathered inventory snapshot.
//
// The store holds exactly one snapshot. Writes go to a sibling temp file and
// are published with an atomic rename, so a concurrent reader sees either the
// fully previous or the fully new snapshot, never a mixture. That rename is
// the sole synchronization primitive between the single-writer gatherer and
// any number of concurrent readers; no locking is needed. The file's
// modification time doubles as the last successful gather time.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/errors"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/inventory"
)

// Store reads and writes the durable snapshot at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the given cache file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the canonical cache file location.
func (s *Store) Path() string {
	return s.path
}

// Write serializes the snapshot to <path>.new and atomically renames it over
// the canonical location. Only the gatherer calls Write; concurrent writers
// are not supported.
func (s *Store) Write(snap *inventory.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "create cache directory", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "serialize snapshot", err)
	}

	tmp := s.path + ".new"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("write %s", tmp), err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("rename %s over %s", tmp, s.path), err)
	}
	return nil
}

// Read deserializes the canonical snapshot and returns it together with the
// file's modification time. It fails with ErrCodeNotFound if no snapshot has
// ever been written and ErrCodeCorrupt if deserialization fails. The file
// identity is not stable across reads: a concurrent commit may replace it at
// any time, which is why content and mtime are taken from a single open file.
func (s *Store) Read() (*inventory.Snapshot, time.Time, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, errors.Wrap(errors.ErrCodeNotFound, "no snapshot has been gathered yet", err)
		}
		return nil, time.Time{}, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("open %s", s.path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("stat %s", s.path), err)
	}

	var snap inventory.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, time.Time{}, errors.Wrap(errors.ErrCodeCorrupt, fmt.Sprintf("deserialize %s", s.path), err)
	}
	return &snap, info.ModTime(), nil
}

// LastModified returns the commit time of the current snapshot without
// deserializing it, for the cache-age gauge.
func (s *Store) LastModified() (time.Time, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, errors.Wrap(errors.ErrCodeNotFound, "no snapshot has been gathered yet", err)
		}
		return time.Time{}, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("stat %s", s.path), err)
	}
	return info.ModTime(), nil
}
