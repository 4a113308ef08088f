// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package store persists dated host snapshots.
//
// A Store keeps at most one snapshot per calendar date. Saving a snapshot
// for a date that already exists replaces it, in every implementation.
//
// Implementations:
//
//   - BadgerStore: embedded key/value store (dgraph-io/badger). Each snapshot
//     is a single key "snapshot:<date>" holding zstd-compressed JSON.
//   - PostgresStore: the hosts_history table, one row per host per date.
//   - MemoryStore: process-local map, used by tests and dry runs.
//   - CachedStore: read-through LRU cache in front of another Store.
//
// Open selects the backend from a Config:
//
//	st, err := store.Open(ctx, store.Config{Driver: store.DriverBadger, Path: "data/snapshots"}, logger)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	prev, err := st.MostRecentBefore(ctx, "2025-01-02")
//	if store.IsNotFound(err) {
//	    // first collection
//	}
//
// Lookups for absent dates return an error matching ErrNotFound.
package store
