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

package collector

import (
	"context"

	"github.com/zbxdiff/zbxdiff/pkg/host"
)

// Source produces the current host inventory.
type Source interface {
	Collect(ctx context.Context) ([]host.Record, error)
}

// StaticSource returns a fixed inventory.
type StaticSource struct {
	Records []host.Record
	Err     error
}

// Collect returns a copy of the configured records, or Err.
func (s *StaticSource) Collect(ctx context.Context) ([]host.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]host.Record, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Clone()
	}
	return out, nil
}
