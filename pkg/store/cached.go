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

package store

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zbxdiff/zbxdiff/pkg/host"
)

// CachedStore serves Load from an LRU cache of decoded snapshots and
// delegates everything else to the wrapped Store. Save drops the cached
// entry for its date.
type CachedStore struct {
	Store
	cache *lru.Cache[string, *host.Snapshot]

	// fill is held shared by cache misses from inner read to Add and
	// exclusively by Save, so a miss never caches a value read before a
	// concurrent Save.
	fill sync.RWMutex
}

// NewCachedStore wraps next with a cache holding up to size snapshots.
func NewCachedStore(next Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, *host.Snapshot](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	return &CachedStore{Store: next, cache: cache}, nil
}

func (s *CachedStore) Save(ctx context.Context, snap *host.Snapshot) error {
	s.fill.Lock()
	defer s.fill.Unlock()
	if snap != nil {
		defer s.cache.Remove(snap.Date)
	}
	return s.Store.Save(ctx, snap)
}

func (s *CachedStore) Load(ctx context.Context, date string) (*host.Snapshot, error) {
	if snap, ok := s.cache.Get(date); ok {
		return host.NewSnapshot(snap.Date, snap.Records), nil
	}

	s.fill.RLock()
	defer s.fill.RUnlock()
	snap, err := s.Store.Load(ctx, date)
	if err != nil {
		return nil, err
	}
	s.cache.Add(date, host.NewSnapshot(snap.Date, snap.Records))
	return snap, nil
}

func (s *CachedStore) MostRecentBefore(ctx context.Context, date string) (*host.Snapshot, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	dates, err := s.Store.Dates(ctx)
	if err != nil {
		return nil, err
	}
	prev, ok := latestBefore(dates, date)
	if !ok {
		return nil, notFound(date, "before")
	}
	return s.Load(ctx, prev)
}

// Len returns the number of cached snapshots.
func (s *CachedStore) Len() int {
	return s.cache.Len()
}
