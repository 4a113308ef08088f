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
	stderrors "errors"
	"fmt"

	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

var (
	// ErrDuplicateIdentity is returned when a snapshot holds the same host id twice.
	ErrDuplicateIdentity = stderrors.New("duplicate host identity")

	// ErrMissingCurrentSnapshot is returned when no current snapshot is given.
	ErrMissingCurrentSnapshot = stderrors.New("missing current snapshot")

	// ErrInsufficientSnapshots is returned by ComparePeriod with fewer than two snapshots.
	ErrInsufficientSnapshots = stderrors.New("at least two snapshots are required")
)

func duplicateError(role string, err error) error {
	ctx := map[string]any{"snapshot": role}
	var dup *host.DuplicateIDError
	if stderrors.As(err, &dup) {
		ctx["host_id"] = dup.HostID
		ctx["date"] = dup.Date
	}
	return errors.WrapWithContext(errors.ErrCodeDuplicateIdentity,
		fmt.Sprintf("%s snapshot failed integrity check", role),
		fmt.Errorf("%w: %w", ErrDuplicateIdentity, err), ctx)
}

func missingCurrentError() error {
	return errors.Wrap(errors.ErrCodeMissingSnapshot,
		"a current snapshot is required for comparison", ErrMissingCurrentSnapshot)
}
