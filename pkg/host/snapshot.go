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

package host

import (
	"fmt"
	"slices"
	"time"
)

// DateLayout is the calendar date format snapshots are keyed by.
const DateLayout = "2006-01-02"

// FormatDate formats t as a snapshot date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate validates and normalizes a snapshot date.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return FormatDate(t), nil
}

// Snapshot is the dated inventory captured by one collection run.
// Snapshots are never mutated once created; use NewSnapshot to obtain
// one that does not share memory with the caller's records.
type Snapshot struct {
	// Date is the collection date (YYYY-MM-DD).
	Date string `json:"date" yaml:"date"`

	// Records holds the hosts in collection order.
	Records []Record `json:"hosts" yaml:"hosts"`
}

// NewSnapshot creates a snapshot holding deep copies of records.
func NewSnapshot(date string, records []Record) *Snapshot {
	cp := make([]Record, len(records))
	for i, r := range records {
		cp[i] = r.Clone()
	}
	return &Snapshot{Date: date, Records: cp}
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// IDs returns the host ids in collection order.
func (s *Snapshot) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.Records))
	for i, r := range s.Records {
		ids[i] = r.HostID
	}
	return ids
}

// DuplicateIDError reports a host id present more than once in a snapshot.
type DuplicateIDError struct {
	Date   string
	HostID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("snapshot %s contains host id %q more than once", e.Date, e.HostID)
}

// Index maps host id to record. It fails with *DuplicateIDError on the
// first repeated id, scanning in collection order.
func (s *Snapshot) Index() (map[string]Record, error) {
	if s == nil {
		return map[string]Record{}, nil
	}
	idx := make(map[string]Record, len(s.Records))
	for _, r := range s.Records {
		if _, exists := idx[r.HostID]; exists {
			return nil, &DuplicateIDError{Date: s.Date, HostID: r.HostID}
		}
		idx[r.HostID] = r
	}
	return idx, nil
}

// DuplicateIDs returns every host id that occurs more than once, mapped
// to its number of occurrences.
func (s *Snapshot) DuplicateIDs() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Records {
		counts[r.HostID]++
	}
	dups := make(map[string]int)
	for id, n := range counts {
		if n > 1 {
			dups[id] = n
		}
	}
	return dups
}

// SortedIDs returns the keys of m ordered with CompareIDs.
func SortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, CompareIDs)
	return ids
}
