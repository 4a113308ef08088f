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
	"slices"
)

// Record is one monitored host at snapshot time.
type Record struct {
	// HostID is the platform-assigned identifier, unique within a snapshot.
	HostID string `json:"host_id" yaml:"host_id"`

	// Name is the visible host name. Not guaranteed unique.
	Name string `json:"name" yaml:"name"`

	// IPAddress is the address of the main interface, empty when unset.
	IPAddress string `json:"ip_address" yaml:"ip_address"`

	// Groups is the set of host group names.
	Groups []string `json:"groups" yaml:"groups"`

	// Templates is the set of linked template names.
	Templates []string `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// Value returns the comparable value of field f.
// Set-valued fields are returned normalized (sorted, deduplicated).
func (r Record) Value(f Field) any {
	switch f {
	case FieldName:
		return r.Name
	case FieldIPAddress:
		return r.IPAddress
	case FieldGroups:
		return NormalizeSet(r.Groups)
	case FieldTemplates:
		return NormalizeSet(r.Templates)
	default:
		return nil
	}
}

// Equal reports whether field f holds the same value in r and o.
func (r Record) Equal(o Record, f Field) bool {
	switch f {
	case FieldName:
		return r.Name == o.Name
	case FieldIPAddress:
		return r.IPAddress == o.IPAddress
	case FieldGroups:
		return SetEqual(r.Groups, o.Groups)
	case FieldTemplates:
		return SetEqual(r.Templates, o.Templates)
	default:
		return true
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Groups = slices.Clone(r.Groups)
	r.Templates = slices.Clone(r.Templates)
	return r
}

// NormalizeSet returns a sorted copy of values with duplicates removed.
// Members are compared verbatim; the input is not modified.
func NormalizeSet(values []string) []string {
	out := slices.Clone(values)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SetEqual reports whether a and b contain the same members.
func SetEqual(a, b []string) bool {
	return slices.Equal(NormalizeSet(a), NormalizeSet(b))
}
