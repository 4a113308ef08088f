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
	"sync"

	"github.com/zbxdiff/zbxdiff/pkg/host"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*host.Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*host.Snapshot)}
}

func (s *MemoryStore) Save(ctx context.Context, snap *host.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Date] = host.NewSnapshot(snap.Date, snap.Records)
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, date string) (*host.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[date]
	if !ok {
		return nil, notFound(date, "for")
	}
	return host.NewSnapshot(snap.Date, snap.Records), nil
}

func (s *MemoryStore) MostRecentBefore(ctx context.Context, date string) (*host.Snapshot, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	dates, err := s.Dates(ctx)
	if err != nil {
		return nil, err
	}
	prev, ok := latestBefore(dates, date)
	if !ok {
		return nil, notFound(date, "before")
	}
	return s.Load(ctx, prev)
}

func (s *MemoryStore) Dates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.snaps))
	for d := range s.snaps {
		dates = append(dates, d)
	}
	return sortDescending(dates), nil
}

func (s *MemoryStore) Exists(ctx context.Context, date string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.snaps[date]
	return ok, nil
}

func (s *MemoryStore) Close() error { return nil }
