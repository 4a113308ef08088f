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

package comparator

import (
	"fmt"
	"slices"

	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

// PeriodChangeset accumulates the changesets of consecutive snapshots
// within a reporting window.
type PeriodChangeset struct {
	// From is the date of the oldest snapshot in the window.
	From string `json:"from" yaml:"from"`

	// To is the date of the newest snapshot in the window.
	To string `json:"to" yaml:"to"`

	// Dates lists the compared snapshot dates, oldest first.
	Dates []string `json:"dates" yaml:"dates"`

	// Steps holds one changeset per consecutive pair, oldest first.
	Steps []*Changeset `json:"steps" yaml:"steps"`
}

// Summary sums the step counts. TotalCurrent is the size of the newest
// snapshot and TotalPrevious the size of the oldest one; Unchanged is
// taken from the last step.
func (p *PeriodChangeset) Summary() Summary {
	var s Summary
	if len(p.Steps) == 0 {
		return s
	}
	for _, cs := range p.Steps {
		s.Added += len(cs.Added)
		s.Removed += len(cs.Removed)
		s.Modified += len(cs.Modified)
	}
	first, last := p.Steps[0], p.Steps[len(p.Steps)-1]
	s.Unchanged = last.Unchanged
	s.TotalCurrent = last.TotalCurrent()
	s.TotalPrevious = first.TotalPrevious()
	s.NetChange = s.TotalCurrent - s.TotalPrevious
	return s
}

// HasChanges reports whether any step holds a change.
func (p *PeriodChangeset) HasChanges() bool {
	for _, cs := range p.Steps {
		if cs.HasChanges() {
			return true
		}
	}
	return false
}

// ComparePeriod compares each snapshot with the one dated before it.
// Snapshots may be passed in any order; they are sorted by date. Two
// snapshots with the same date are rejected.
func ComparePeriod(snaps []*host.Snapshot, opts ...Option) (*PeriodChangeset, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	ordered := make([]*host.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if s != nil {
			ordered = append(ordered, s)
		}
	}
	if len(ordered) < 2 {
		return nil, errors.WrapWithContext(errors.ErrCodeMissingSnapshot,
			"period comparison needs more snapshots", ErrInsufficientSnapshots,
			map[string]any{"snapshots": len(ordered)})
	}
	slices.SortStableFunc(ordered, func(a, b *host.Snapshot) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})

	p := &PeriodChangeset{
		From:  ordered[0].Date,
		To:    ordered[len(ordered)-1].Date,
		Dates: make([]string, 0, len(ordered)),
		Steps: make([]*Changeset, 0, len(ordered)-1),
	}
	for i, s := range ordered {
		p.Dates = append(p.Dates, s.Date)
		if i == 0 {
			continue
		}
		if s.Date == ordered[i-1].Date {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("two snapshots dated %s", s.Date),
				map[string]any{"date": s.Date})
		}
		cs, err := compare(s, ordered[i-1], o)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, cs)
	}
	return p, nil
}
