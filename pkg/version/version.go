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

// Package version parses dotted version strings such as the one returned
// by the Zabbix apiinfo.version method.
//
// Versions carry one to three numeric components and an optional suffix
// ("7.0.0rc1", "6.4.2-1"). Precision records how many components were
// given so "6.4" and "6.4.0" print as written.
//
//	v, err := version.ParseVersion("6.4.12")
//	if err == nil && v.AtLeast(6, 4) { ... }
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
)

// Version is a parsed Major.Minor.Patch version.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Precision is the number of components given (1, 2 or 3).
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`

	// Extras holds a trailing pre-release or build suffix, e.g. "rc1".
	Extras string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// NewVersion returns a three component version.
func NewVersion(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Precision: 3}
}

// String formats the version to its precision. Extras are not included.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// ParseVersion parses "1", "1.2" or "1.2.3" with an optional "v" prefix.
// A non-numeric tail of the last component ("0rc1", "3-1", "2+build") is
// kept in Extras.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	var v Version
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		// "7.0.0.rc1" style suffixes fold into Extras
		v.Extras = "." + strings.Join(parts[3:], ".")
		parts = parts[:3]
		if !isDigits(parts[2]) {
			return Version{}, ErrTooManyComponents
		}
	}

	for i, part := range parts {
		digits := leadingDigits(part)
		if digits == "" {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if digits != part {
			if i != len(parts)-1 {
				return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
			}
			v.Extras = part[len(digits):] + v.Extras
		}
		num, err := strconv.Atoi(digits)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}

	v.Precision = len(parts)
	return v, nil
}

// MustParseVersion is ParseVersion for literals; it panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(fmt.Sprintf("MustParseVersion: %v", err))
	}
	return v
}

// Compare orders versions by Major, Minor and Patch. Extras are ignored.
func (v Version) Compare(other Version) int {
	for _, d := range [3]int{v.Major - other.Major, v.Minor - other.Minor, v.Patch - other.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is major.minor or newer.
func (v Version) AtLeast(major, minor int) bool {
	return v.Compare(Version{Major: major, Minor: minor}) >= 0
}

// IsValid reports whether v came from a successful parse.
func (v Version) IsValid() bool {
	return v.Precision >= 1 && v.Precision <= 3 && v.Major >= 0 && v.Minor >= 0 && v.Patch >= 0
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func isDigits(s string) bool {
	return s != "" && leadingDigits(s) == s
}
