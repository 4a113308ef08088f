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

type options struct {
	fields []host.Field
}

// Option configures a comparison.
type Option func(*options)

// WithFields sets the tracked fields. Fields outside the list never make a
// host modified. An empty list keeps host.DefaultFields.
func WithFields(fields ...host.Field) Option {
	return func(o *options) {
		if len(fields) > 0 {
			o.fields = slices.Clone(fields)
		}
	}
}

func newOptions(opts []Option) (*options, error) {
	o := &options{fields: host.DefaultFields}
	for _, opt := range opts {
		opt(o)
	}
	seen := make(map[host.Field]bool, len(o.fields))
	fields := make([]host.Field, 0, len(o.fields))
	for _, f := range o.fields {
		if !slices.Contains(host.Fields, f) {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("unsupported tracked field %q", f),
				map[string]any{"supported": host.SupportedFields()})
		}
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	o.fields = fields
	return o, nil
}

// Compare classifies every host of current and previous by host id.
//
// A nil previous yields a baseline changeset where all current hosts are
// added. Neither snapshot is modified and the returned changeset shares no
// memory with them.
func Compare(current, previous *host.Snapshot, opts ...Option) (*Changeset, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return compare(current, previous, o)
}

func compare(current, previous *host.Snapshot, o *options) (*Changeset, error) {
	if current == nil {
		return nil, missingCurrentError()
	}

	cur, err := current.Index()
	if err != nil {
		return nil, duplicateError("current", err)
	}

	cs := &Changeset{
		CurrentDate: current.Date,
		Fields:      cloneFields(o.fields),
		Added:       []host.Record{},
		Removed:     []host.Record{},
		Modified:    []Modification{},
	}

	if previous == nil {
		cs.Baseline = true
		for _, id := range host.SortedIDs(cur) {
			cs.Added = append(cs.Added, cur[id].Clone())
		}
		return cs, nil
	}

	prev, err := previous.Index()
	if err != nil {
		return nil, duplicateError("previous", err)
	}
	cs.PreviousDate = previous.Date

	// sorted iteration keeps every class ordered without a second sort
	for _, id := range host.SortedIDs(cur) {
		newRec := cur[id]
		oldRec, ok := prev[id]
		if !ok {
			cs.Added = append(cs.Added, newRec.Clone())
			continue
		}
		diffs := diffRecords(oldRec, newRec, o.fields)
		if len(diffs) == 0 {
			cs.Unchanged++
			continue
		}
		cs.Modified = append(cs.Modified, Modification{
			HostID: id,
			Old:    oldRec.Clone(),
			New:    newRec.Clone(),
			Diffs:  diffs,
		})
	}

	for _, id := range host.SortedIDs(prev) {
		if _, ok := cur[id]; !ok {
			cs.Removed = append(cs.Removed, prev[id].Clone())
		}
	}

	return cs, nil
}

func diffRecords(oldRec, newRec host.Record, fields []host.Field) []FieldDiff {
	var diffs []FieldDiff
	for _, f := range fields {
		if oldRec.Equal(newRec, f) {
			continue
		}
		diffs = append(diffs, FieldDiff{
			Field: f,
			Old:   oldRec.Value(f),
			New:   newRec.Value(f),
		})
	}
	return diffs
}
