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

package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = stderrors.New("snapshot not found")

// Store persists one snapshot per date.
type Store interface {
	// Save stores snap, replacing any snapshot with the same date.
	Save(ctx context.Context, snap *host.Snapshot) error

	// Load returns the snapshot for date.
	Load(ctx context.Context, date string) (*host.Snapshot, error)

	// MostRecentBefore returns the latest snapshot dated strictly before date.
	MostRecentBefore(ctx context.Context, date string) (*host.Snapshot, error)

	// Dates lists the stored dates, newest first.
	Dates(ctx context.Context) ([]string, error)

	// Exists reports whether a snapshot for date is stored.
	Exists(ctx context.Context, date string) (bool, error)

	Close() error
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

func notFound(date, lookup string) error {
	return errors.WrapWithContext(errors.ErrCodeNotFound,
		fmt.Sprintf("no snapshot %s %s", lookup, date), ErrNotFound,
		map[string]any{"date": date})
}

func validateSnapshot(snap *host.Snapshot) error {
	if snap == nil {
		return errors.New(errors.ErrCodeInvalidRequest, "snapshot is nil")
	}
	if _, err := host.ParseDate(snap.Date); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid snapshot date", err)
	}
	return nil
}

func validateDate(date string) error {
	if _, err := host.ParseDate(date); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid date", err)
	}
	return nil
}

// latestBefore picks the newest entry of dates (any order) strictly
// older than date. Dates share the YYYY-MM-DD layout so string order is
// chronological.
func latestBefore(dates []string, date string) (string, bool) {
	best := ""
	for _, d := range dates {
		if d < date && d > best {
			best = d
		}
	}
	return best, best != ""
}

func sortDescending(dates []string) []string {
	slices.Sort(dates)
	slices.Reverse(dates)
	return dates
}
