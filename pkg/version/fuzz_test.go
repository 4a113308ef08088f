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
	"testing"
)

// FuzzParseVersion checks that parsing never panics and that a parsed
// version survives a String round trip.
func FuzzParseVersion(f *testing.F) {
	for _, seed := range []string{
		"1", "v1", "1.2", "6.4.12", "7.0.0rc1", "6.0.21-1", "7.0.0.rc1",
		"", ".", "..", "1.", ".1", "1..2", "v", "vv1", "-1", "a.b.c",
		"1.2.3.4", "   1.2.3", "1. 2.3", "99999999999999999999",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseVersion(input)
		if err != nil {
			return
		}
		if !v.IsValid() {
			t.Fatalf("ParseVersion(%q) returned invalid version: %+v", input, v)
		}
		again, err := ParseVersion(v.String())
		if err != nil {
			t.Fatalf("ParseVersion(%q) failed on String() output %q: %v", input, v.String(), err)
		}
		if again.Compare(v) != 0 || again.Precision != v.Precision {
			t.Fatalf("round trip of %q: got %+v, want %+v", input, again, v)
		}
	})
}
