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
	stderrors "errors"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

func rec(id, name, ip string, groups ...string) host.Record {
	return host.Record{HostID: id, Name: name, IPAddress: ip, Groups: groups}
}

func snap(date string, records ...host.Record) *host.Snapshot {
	return host.NewSnapshot(date, records)
}

func TestCompare_DayOverDay(t *testing.T) {
	previous := snap("2025-01-01",
		rec("1", "srv-a", "10.0.0.1", "web"),
		rec("2", "srv-b", "10.0.0.2", "db"),
	)
	current := snap("2025-01-02",
		rec("1", "srv-a", "10.0.0.9", "web"),
		rec("3", "srv-c", "10.0.0.3", "app"),
	)

	cs, err := Compare(current, previous)
	require.NoError(t, err)

	assert.Equal(t, "2025-01-02", cs.CurrentDate)
	assert.Equal(t, "2025-01-01", cs.PreviousDate)
	assert.False(t, cs.Baseline)
	assert.Equal(t, []string{"3"}, cs.AddedIDs())
	assert.Equal(t, []string{"2"}, cs.RemovedIDs())
	assert.Equal(t, []string{"1"}, cs.ModifiedIDs())
	assert.Equal(t, 0, cs.Unchanged)

	require.Len(t, cs.Modified, 1)
	assert.Equal(t, []FieldDiff{{Field: host.FieldIPAddress, Old: "10.0.0.1", New: "10.0.0.9"}}, cs.Modified[0].Diffs)
	assert.True(t, cs.Modified[0].Changed(host.FieldIPAddress))
	assert.False(t, cs.Modified[0].Changed(host.FieldName))

	assert.Equal(t, Summary{
		Added:         1,
		Removed:       1,
		Modified:      1,
		Unchanged:     0,
		TotalCurrent:  2,
		TotalPrevious: 2,
		NetChange:     0,
	}, cs.Summary())
	assert.True(t, cs.HasChanges())
}

func TestCompare_Baseline(t *testing.T) {
	current := snap("2025-01-02",
		rec("10", "b", "10.0.0.10"),
		rec("2", "a", "10.0.0.2"),
	)

	cs, err := Compare(current, nil)
	require.NoError(t, err)

	assert.True(t, cs.Baseline)
	assert.Empty(t, cs.PreviousDate)
	assert.Equal(t, []string{"2", "10"}, cs.AddedIDs())
	assert.Empty(t, cs.Removed)
	assert.Empty(t, cs.Modified)
	assert.Equal(t, 0, cs.Unchanged)
	assert.Equal(t, 2, cs.TotalCurrent())
	assert.Equal(t, 0, cs.TotalPrevious())
}

func TestCompare_Errors(t *testing.T) {
	ok := snap("2025-01-01", rec("1", "a", ""))
	dup := snap("2025-01-02", rec("1", "a", ""), rec("1", "b", ""))

	tests := []struct {
		name     string
		current  *host.Snapshot
		previous *host.Snapshot
		opts     []Option
		sentinel error
		code     errors.ErrorCode
	}{
		{name: "missing current", current: nil, previous: ok, sentinel: ErrMissingCurrentSnapshot, code: errors.ErrCodeMissingSnapshot},
		{name: "missing both", current: nil, previous: nil, sentinel: ErrMissingCurrentSnapshot, code: errors.ErrCodeMissingSnapshot},
		{name: "duplicate in current", current: dup, previous: ok, sentinel: ErrDuplicateIdentity, code: errors.ErrCodeDuplicateIdentity},
		{name: "duplicate in previous", current: ok, previous: dup, sentinel: ErrDuplicateIdentity, code: errors.ErrCodeDuplicateIdentity},
		{name: "duplicate in baseline", current: dup, previous: nil, sentinel: ErrDuplicateIdentity, code: errors.ErrCodeDuplicateIdentity},
		{name: "unknown field", current: ok, previous: ok, opts: []Option{WithFields("status")}, code: errors.ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := Compare(tt.current, tt.previous, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, cs)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestCompare_DuplicateContext(t *testing.T) {
	dup := snap("2025-01-02", rec("7", "a", ""), rec("7", "b", ""))

	_, err := Compare(snap("2025-01-03"), dup)
	require.Error(t, err)

	var se *errors.StructuredError
	require.True(t, stderrors.As(err, &se))
	assert.Equal(t, "7", se.Context["host_id"])
	assert.Equal(t, "previous", se.Context["snapshot"])

	var dupErr *host.DuplicateIDError
	require.True(t, stderrors.As(err, &dupErr))
	assert.Equal(t, "2025-01-02", dupErr.Date)
}

func TestCompare_FieldTracking(t *testing.T) {
	base := host.Record{HostID: "1", Name: "srv", IPAddress: "10.0.0.1", Groups: []string{"web", "linux"}, Templates: []string{"ICMP"}}

	tests := []struct {
		name     string
		mutate   func(r *host.Record)
		opts     []Option
		modified bool
		diff     []FieldDiff
	}{
		{
			name:   "group order and duplicates ignored",
			mutate: func(r *host.Record) { r.Groups = []string{"linux", "web", "web"} },
		},
		{
			name:     "group membership change",
			mutate:   func(r *host.Record) { r.Groups = []string{"web"} },
			modified: true,
			diff:     []FieldDiff{{Field: host.FieldGroups, Old: []string{"linux", "web"}, New: []string{"web"}}},
		},
		{
			name:     "rename",
			mutate:   func(r *host.Record) { r.Name = "srv-renamed" },
			modified: true,
			diff:     []FieldDiff{{Field: host.FieldName, Old: "srv", New: "srv-renamed"}},
		},
		{
			name:   "templates not tracked by default",
			mutate: func(r *host.Record) { r.Templates = []string{"Linux by agent"} },
		},
		{
			name:     "templates tracked when requested",
			mutate:   func(r *host.Record) { r.Templates = []string{"Linux by agent"} },
			opts:     []Option{WithFields(host.Fields...)},
			modified: true,
			diff:     []FieldDiff{{Field: host.FieldTemplates, Old: []string{"ICMP"}, New: []string{"Linux by agent"}}},
		},
		{
			name:   "untracked ip change",
			mutate: func(r *host.Record) { r.IPAddress = "10.0.0.2" },
			opts:   []Option{WithFields(host.FieldName)},
		},
		{
			name: "multiple fields in tracking order",
			mutate: func(r *host.Record) {
				r.IPAddress = "10.0.0.2"
				r.Name = "other"
			},
			modified: true,
			diff: []FieldDiff{
				{Field: host.FieldName, Old: "srv", New: "other"},
				{Field: host.FieldIPAddress, Old: "10.0.0.1", New: "10.0.0.2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := base.Clone()
			tt.mutate(&next)

			cs, err := Compare(snap("2025-01-02", next), snap("2025-01-01", base), tt.opts...)
			require.NoError(t, err)
			assert.Empty(t, cs.Added)
			assert.Empty(t, cs.Removed)

			if !tt.modified {
				assert.Empty(t, cs.Modified)
				assert.Equal(t, 1, cs.Unchanged)
				assert.False(t, cs.HasChanges())
				return
			}
			require.Len(t, cs.Modified, 1)
			assert.Equal(t, 0, cs.Unchanged)
			assert.Equal(t, tt.diff, cs.Modified[0].Diffs)
			assert.Equal(t, base, cs.Modified[0].Old)
			assert.Equal(t, next, cs.Modified[0].New)
		})
	}
}

func TestCompare_Identical(t *testing.T) {
	s := snap("2025-01-01",
		rec("1", "a", "10.0.0.1", "g1"),
		rec("2", "b", "10.0.0.2", "g2"),
		rec("3", "c", "", "g3"),
	)
	cs, err := Compare(s, s)
	require.NoError(t, err)
	assert.False(t, cs.HasChanges())
	assert.Equal(t, 3, cs.Unchanged)
	assert.Equal(t, 0, cs.Summary().NetChange)
}

func TestCompare_Symmetry(t *testing.T) {
	a := snap("2025-01-01", rec("1", "a", "10.0.0.1"), rec("2", "b", "10.0.0.2"), rec("4", "d", ""))
	b := snap("2025-01-02", rec("1", "a", "10.0.0.5"), rec("3", "c", "10.0.0.3"), rec("4", "d", ""))

	forward, err := Compare(b, a)
	require.NoError(t, err)
	backward, err := Compare(a, b)
	require.NoError(t, err)

	assert.Equal(t, forward.AddedIDs(), backward.RemovedIDs())
	assert.Equal(t, forward.RemovedIDs(), backward.AddedIDs())
	assert.Equal(t, forward.ModifiedIDs(), backward.ModifiedIDs())
	assert.Equal(t, forward.Unchanged, backward.Unchanged)

	fd := forward.Modified[0].Diffs[0]
	bd := backward.Modified[0].Diffs[0]
	assert.Equal(t, fd.Old, bd.New)
	assert.Equal(t, fd.New, bd.Old)
}

func TestCompare_Deterministic(t *testing.T) {
	var prev, cur []host.Record
	for i := 1; i <= 40; i++ {
		id := strconv.Itoa(i)
		if i%5 != 0 {
			prev = append(prev, rec(id, "h"+id, "10.0.0."+id))
		}
		if i%7 != 0 {
			ip := "10.0.0." + id
			if i%3 == 0 {
				ip = "10.1.0." + id
			}
			cur = append(cur, rec(id, "h"+id, ip))
		}
	}

	want, err := Compare(snap("2025-01-02", cur...), snap("2025-01-01", prev...))
	require.NoError(t, err)

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 10; i++ {
		p := append([]host.Record(nil), prev...)
		c := append([]host.Record(nil), cur...)
		r.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
		r.Shuffle(len(c), func(i, j int) { c[i], c[j] = c[j], c[i] })

		got, err := Compare(snap("2025-01-02", c...), snap("2025-01-01", p...))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// every id in the union is classified exactly once
	union := map[string]bool{}
	for _, r := range prev {
		union[r.HostID] = true
	}
	for _, r := range cur {
		union[r.HostID] = true
	}
	assert.Equal(t, len(union), want.Partition())
	assert.Equal(t, len(cur), want.TotalCurrent())
	assert.Equal(t, len(prev), want.TotalPrevious())
	assert.Equal(t, len(cur)-len(prev), want.Summary().NetChange)

	seen := map[string]bool{}
	for _, ids := range [][]string{want.AddedIDs(), want.RemovedIDs(), want.ModifiedIDs()} {
		for _, id := range ids {
			assert.False(t, seen[id], "host %s classified twice", id)
			seen[id] = true
		}
	}
}

func TestCompare_DoesNotMutateInputs(t *testing.T) {
	prev := snap("2025-01-01", rec("2", "b", "", "z", "a"), rec("1", "a", ""))
	cur := snap("2025-01-02", rec("1", "a", "10.0.0.1"), rec("3", "c", ""))
	prevCopy := host.NewSnapshot(prev.Date, prev.Records)
	curCopy := host.NewSnapshot(cur.Date, cur.Records)

	cs, err := Compare(cur, prev)
	require.NoError(t, err)
	assert.Equal(t, prevCopy, prev)
	assert.Equal(t, curCopy, cur)

	cs.Removed[0].Groups[0] = "mutated"
	assert.Equal(t, "z", prev.Records[0].Groups[0])
}

func TestCompare_IDOrdering(t *testing.T) {
	cur := snap("2025-01-02",
		rec("10084", "a", ""),
		rec("9", "b", ""),
		rec("10001", "c", ""),
		rec("abc", "d", ""),
	)
	cs, err := Compare(cur, snap("2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10001", "10084", "abc"}, cs.AddedIDs())
	assert.False(t, cs.Baseline)
}

func TestCompare_BaselineMatchesEmptyPrevious(t *testing.T) {
	tests := []struct {
		name string
		cur  *host.Snapshot
	}{
		{
			name: "single host",
			cur:  snap("2025-01-02", rec("1", "srv-a", "10.0.0.1", "web")),
		},
		{
			name: "unordered hosts",
			cur: snap("2025-01-02",
				rec("30", "srv-c", "10.0.0.3", "app"),
				rec("2", "srv-b", "", "db", "web"),
				rec("100", "srv-d", "10.0.0.4"),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			absent, err := Compare(tt.cur, nil)
			require.NoError(t, err)
			empty, err := Compare(tt.cur, snap("2025-01-01"))
			require.NoError(t, err)

			for _, cs := range []*Changeset{absent, empty} {
				assert.Empty(t, cs.Removed)
				assert.Empty(t, cs.Modified)
				assert.Zero(t, cs.Unchanged)
				assert.Len(t, cs.Added, tt.cur.Len())
			}
			assert.Equal(t, absent.AddedIDs(), empty.AddedIDs())
			assert.Equal(t, absent.Added, empty.Added)
			assert.True(t, absent.Baseline)
			assert.False(t, empty.Baseline)
		})
	}
}
