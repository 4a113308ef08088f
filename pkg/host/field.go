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
	"strings"
)

// Field names a tracked Record attribute.
type Field string

const (
	FieldName      Field = "name"
	FieldIPAddress Field = "ip_address"
	FieldGroups    Field = "groups"
	FieldTemplates Field = "templates"
)

// String returns the string representation of the Field.
func (f Field) String() string {
	return string(f)
}

// Label returns the human readable column title used in reports.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldIPAddress:
		return "IP"
	case FieldGroups:
		return "Groups"
	case FieldTemplates:
		return "Templates"
	default:
		return string(f)
	}
}

// IsSet reports whether the field holds a set of names.
func (f Field) IsSet() bool {
	return f == FieldGroups || f == FieldTemplates
}

// Fields lists every field that can be tracked, in report order.
var Fields = []Field{
	FieldName,
	FieldIPAddress,
	FieldGroups,
	FieldTemplates,
}

// DefaultFields is the tracked set used when none is configured.
var DefaultFields = []Field{
	FieldName,
	FieldIPAddress,
	FieldGroups,
}

// ParseField parses a field name.
// Returns the Field and true if parsing succeeds.
func ParseField(s string) (Field, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "ip" {
		return FieldIPAddress, true
	}
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// ParseFields parses a comma separated field list, preserving the
// canonical order of Fields and dropping repeats. An empty list yields
// DefaultFields.
func ParseFields(list string) ([]Field, error) {
	if strings.TrimSpace(list) == "" {
		return DefaultFields, nil
	}

	seen := make(map[Field]bool)
	for _, part := range strings.Split(list, ",") {
		f, ok := ParseField(part)
		if !ok {
			return nil, fmt.Errorf("unknown tracked field %q (supported: %s)", strings.TrimSpace(part), SupportedFields())
		}
		seen[f] = true
	}

	out := make([]Field, 0, len(seen))
	for _, f := range Fields {
		if seen[f] {
			out = append(out, f)
		}
	}
	return out, nil
}

// SupportedFields returns the supported field names as a comma separated list.
func SupportedFields() string {
	names := make([]string, len(Fields))
	for i, f := range Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
