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

package version

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr error
	}{
		{"6", Version{Major: 6, Precision: 1}, nil},
		{"6.4", Version{Major: 6, Minor: 4, Precision: 2}, nil},
		{"6.4.12", Version{Major: 6, Minor: 4, Patch: 12, Precision: 3}, nil},
		{"v5.0.1", Version{Major: 5, Minor: 0, Patch: 1, Precision: 3}, nil},
		{" 7.0.0 ", Version{Major: 7, Precision: 3}, nil},
		{"7.0.0rc1", Version{Major: 7, Precision: 3, Extras: "rc1"}, nil},
		{"7.2.0alpha3", Version{Major: 7, Minor: 2, Precision: 3, Extras: "alpha3"}, nil},
		{"6.0.21-1", Version{Major: 6, Patch: 21, Precision: 3, Extras: "-1"}, nil},
		{"7.0.0.rc1", Version{Major: 7, Precision: 3, Extras: ".rc1"}, nil},
		{"", Version{}, ErrEmptyVersion},
		{"v", Version{}, ErrEmptyVersion},
		{"dev", Version{}, ErrNonNumeric},
		{"6.x", Version{}, ErrNonNumeric},
		{"6rc.4", Version{}, ErrNonNumeric},
		{"1..2", Version{}, ErrNonNumeric},
		{"1.2.x.4", Version{}, ErrTooManyComponents},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseVersion(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"6", "6"},
		{"6.4", "6.4"},
		{"6.4.12", "6.4.12"},
		{"7.0.0rc1", "7.0.0"},
	}
	for _, tt := range tests {
		if got := MustParseVersion(tt.input).String(); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCompareAndAtLeast(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"6.4.0", "6.4.0", 0},
		{"6.4", "6.4.0", 0},
		{"6.4.1", "6.4.0", 1},
		{"6.2.9", "6.4.0", -1},
		{"7.0.0", "6.4.12", 1},
		{"5.0.30", "5.4.0", -1},
		{"7.0.0rc1", "7.0.0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := MustParseVersion(tt.a).Compare(MustParseVersion(tt.b)); got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}

	v := NewVersion(6, 2, 5)
	if !v.AtLeast(6, 2) || !v.AtLeast(5, 4) || v.AtLeast(6, 4) || v.AtLeast(7, 0) {
		t.Errorf("AtLeast mismatch for %s", v)
	}
}

func TestMustParseVersionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParseVersion("not-a-version")
}
