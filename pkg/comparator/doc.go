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

// Package comparator derives the classified changeset between two host
// snapshots.
//
// # Overview
//
// Compare matches records across the current and previous snapshot by
// host id and classifies every id seen in either snapshot exactly once:
//
//   - Added: present only in current
//   - Removed: present only in previous
//   - Modified: present in both with at least one tracked field differing
//   - Unchanged: present in both with every tracked field equal (counted)
//
// A nil previous snapshot means no earlier collection exists. The result is
// a baseline changeset in which every current host is added. A nil current
// snapshot is an error (ErrMissingCurrentSnapshot).
//
// # Usage
//
//	cs, err := comparator.Compare(current, previous,
//	    comparator.WithFields(host.FieldName, host.FieldIPAddress, host.FieldGroups))
//	if err != nil {
//	    return err
//	}
//	s := cs.Summary()
//	fmt.Printf("+%d -%d ~%d (net %+d)\n", s.Added, s.Removed, s.Modified, s.NetChange)
//
// # Guarantees
//
// Compare performs no I/O, does not log and never mutates its inputs. Added,
// Removed and Modified are sorted by host id (see host.CompareIDs), so the
// output does not depend on the order records were collected in. A snapshot
// holding the same host id twice fails the comparison with
// ErrDuplicateIdentity before any classification is produced.
//
// Totals are derived from the classifications rather than stored:
//
//	TotalCurrent  = |Added|   + |Modified| + Unchanged
//	TotalPrevious = |Removed| + |Modified| + Unchanged
//
// ComparePeriod applies Compare to consecutive snapshots of a window and
// accumulates the step changesets for weekly and monthly reports.
package comparator
