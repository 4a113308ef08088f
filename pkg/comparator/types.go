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
	"slices"

	"github.com/zbxdiff/zbxdiff/pkg/host"
)

// FieldDiff is the old and new value of one tracked field.
// Set-valued fields carry normalized (sorted, deduplicated) slices.
type FieldDiff struct {
	Field host.Field `json:"field" yaml:"field"`
	Old   any        `json:"old" yaml:"old"`
	New   any        `json:"new" yaml:"new"`
}

// Modification describes a host present in both snapshots whose tracked
// fields differ.
type Modification struct {
	HostID string      `json:"host_id" yaml:"host_id"`
	Old    host.Record `json:"old" yaml:"old"`
	New    host.Record `json:"new" yaml:"new"`
	Diffs  []FieldDiff `json:"diffs" yaml:"diffs"`
}

// Diff returns the diff recorded for field f.
func (m Modification) Diff(f host.Field) (FieldDiff, bool) {
	for _, d := range m.Diffs {
		if d.Field == f {
			return d, true
		}
	}
	return FieldDiff{}, false
}

// Changed reports whether field f differs.
func (m Modification) Changed(f host.Field) bool {
	_, ok := m.Diff(f)
	return ok
}

// Changeset is the classified difference between two snapshots.
type Changeset struct {
	// CurrentDate is the date of the current snapshot.
	CurrentDate string `json:"current_date" yaml:"current_date"`

	// PreviousDate is the date of the previous snapshot, empty for a baseline.
	PreviousDate string `json:"previous_date,omitempty" yaml:"previous_date,omitempty"`

	// Baseline is true when no previous snapshot existed.
	Baseline bool `json:"baseline" yaml:"baseline"`

	// Fields lists the tracked fields used for modification detection.
	Fields []host.Field `json:"fields" yaml:"fields"`

	Added     []host.Record  `json:"added" yaml:"added"`
	Removed   []host.Record  `json:"removed" yaml:"removed"`
	Modified  []Modification `json:"modified" yaml:"modified"`
	Unchanged int            `json:"unchanged" yaml:"unchanged"`
}

// TotalCurrent is the number of hosts in the current snapshot.
func (c *Changeset) TotalCurrent() int {
	return len(c.Added) + len(c.Modified) + c.Unchanged
}

// TotalPrevious is the number of hosts in the previous snapshot, 0 for a baseline.
func (c *Changeset) TotalPrevious() int {
	return len(c.Removed) + len(c.Modified) + c.Unchanged
}

// Partition returns the number of distinct host ids classified, which is
// the size of the union of both snapshots' ids.
func (c *Changeset) Partition() int {
	return len(c.Added) + len(c.Removed) + len(c.Modified) + c.Unchanged
}

// HasChanges reports whether any host was added, removed or modified.
func (c *Changeset) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || len(c.Modified) > 0
}

// Summary returns counts derived from the classifications.
func (c *Changeset) Summary() Summary {
	tc, tp := c.TotalCurrent(), c.TotalPrevious()
	return Summary{
		Added:         len(c.Added),
		Removed:       len(c.Removed),
		Modified:      len(c.Modified),
		Unchanged:     c.Unchanged,
		TotalCurrent:  tc,
		TotalPrevious: tp,
		NetChange:     tc - tp,
	}
}

// AddedIDs returns the added host ids in output order.
func (c *Changeset) AddedIDs() []string { return recordIDs(c.Added) }

// RemovedIDs returns the removed host ids in output order.
func (c *Changeset) RemovedIDs() []string { return recordIDs(c.Removed) }

// ModifiedIDs returns the modified host ids in output order.
func (c *Changeset) ModifiedIDs() []string {
	ids := make([]string, len(c.Modified))
	for i, m := range c.Modified {
		ids[i] = m.HostID
	}
	return ids
}

func recordIDs(rs []host.Record) []string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.HostID
	}
	return ids
}

// Summary holds the report statistics of a changeset.
type Summary struct {
	Added         int `json:"hosts_added" yaml:"hosts_added"`
	Removed       int `json:"hosts_removed" yaml:"hosts_removed"`
	Modified      int `json:"hosts_modified" yaml:"hosts_modified"`
	Unchanged     int `json:"hosts_unchanged" yaml:"hosts_unchanged"`
	TotalCurrent  int `json:"total_current" yaml:"total_current"`
	TotalPrevious int `json:"total_previous" yaml:"total_previous"`
	NetChange     int `json:"net_change" yaml:"net_change"`
}

// HasChanges reports whether the summary counts any addition, removal or modification.
func (s Summary) HasChanges() bool {
	return s.Added > 0 || s.Removed > 0 || s.Modified > 0
}

func cloneFields(fs []host.Field) []host.Field {
	return slices.Clone(fs)
}
