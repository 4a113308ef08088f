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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

func TestComparePeriod(t *testing.T) {
	d1 := snap("2025-01-01", rec("1", "a", "10.0.0.1"), rec("2", "b", "10.0.0.2"))
	d2 := snap("2025-01-02", rec("1", "a", "10.0.0.1"), rec("2", "b", "10.0.0.2"), rec("3", "c", "10.0.0.3"))
	d3 := snap("2025-01-03", rec("1", "a", "10.0.0.9"), rec("3", "c", "10.0.0.3"))

	// order of the input does not matter
	p, err := ComparePeriod([]*host.Snapshot{d3, d1, d2})
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", p.From)
	assert.Equal(t, "2025-01-03", p.To)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, p.Dates)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "2025-01-01", p.Steps[0].PreviousDate)
	assert.Equal(t, "2025-01-02", p.Steps[0].CurrentDate)

	assert.Equal(t, Summary{
		Added:         1,
		Removed:       1,
		Modified:      1,
		Unchanged:     1,
		TotalCurrent:  2,
		TotalPrevious: 2,
		NetChange:     0,
	}, p.Summary())
	assert.True(t, p.HasChanges())
}

func TestComparePeriod_NoChanges(t *testing.T) {
	d1 := snap("2025-01-01", rec("1", "a", ""))
	d2 := snap("2025-01-02", rec("1", "a", ""))

	p, err := ComparePeriod([]*host.Snapshot{d1, d2})
	require.NoError(t, err)
	assert.False(t, p.HasChanges())
	assert.Equal(t, 1, p.Summary().TotalCurrent)
}

func TestComparePeriod_Errors(t *testing.T) {
	d1 := snap("2025-01-01", rec("1", "a", ""))
	tests := []struct {
		name  string
		snaps []*host.Snapshot
		code  errors.ErrorCode
	}{
		{name: "empty", snaps: nil, code: errors.ErrCodeMissingSnapshot},
		{name: "single", snaps: []*host.Snapshot{d1}, code: errors.ErrCodeMissingSnapshot},
		{name: "nil entries ignored", snaps: []*host.Snapshot{d1, nil}, code: errors.ErrCodeMissingSnapshot},
		{name: "same date twice", snaps: []*host.Snapshot{d1, snap("2025-01-01")}, code: errors.ErrCodeInvalidRequest},
		{
			name:  "duplicate identity",
			snaps: []*host.Snapshot{d1, snap("2025-01-02", rec("5", "x", ""), rec("5", "y", ""))},
			code:  errors.ErrCodeDuplicateIdentity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ComparePeriod(tt.snaps)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}

	_, err := ComparePeriod([]*host.Snapshot{d1})
	assert.ErrorIs(t, err, ErrInsufficientSnapshots)
}
