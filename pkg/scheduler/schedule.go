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

package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Kind is a cadence.
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindMonthly Kind = "monthly"
)

// Schedule is a recurring wall clock time.
type Schedule struct {
	Kind   Kind
	Hour   int
	Minute int
	// Weekday is used by weekly schedules.
	Weekday time.Weekday
	// Day is the day of month of monthly schedules. Days past the end of a
	// month run on its last day.
	Day int
}

// ParseClock parses an "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Daily runs every day at "HH:MM".
func Daily(at string) (Schedule, error) {
	h, m, err := ParseClock(at)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Kind: KindDaily, Hour: h, Minute: m}, nil
}

// Weekly runs every week on day at "HH:MM".
func Weekly(day time.Weekday, at string) (Schedule, error) {
	if day < time.Sunday || day > time.Saturday {
		return Schedule{}, fmt.Errorf("invalid weekday %d", day)
	}
	h, m, err := ParseClock(at)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Kind: KindWeekly, Hour: h, Minute: m, Weekday: day}, nil
}

// Monthly runs every month on day (1-31) at "HH:MM".
func Monthly(day int, at string) (Schedule, error) {
	if day < 1 || day > 31 {
		return Schedule{}, fmt.Errorf("invalid day of month %d, expected 1-31", day)
	}
	h, m, err := ParseClock(at)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Kind: KindMonthly, Hour: h, Minute: m, Day: day}, nil
}

// Next returns the first run strictly after now, in now's location.
func (s Schedule) Next(now time.Time) time.Time {
	y, mo, d := now.Date()
	loc := now.Location()

	switch s.Kind {
	case KindWeekly:
		ahead := (int(s.Weekday) - int(now.Weekday()) + 7) % 7
		t := time.Date(y, mo, d+ahead, s.Hour, s.Minute, 0, 0, loc)
		if !t.After(now) {
			t = time.Date(y, mo, d+ahead+7, s.Hour, s.Minute, 0, 0, loc)
		}
		return t
	case KindMonthly:
		t := s.inMonth(y, mo, loc)
		if !t.After(now) {
			t = s.inMonth(y, mo+1, loc)
		}
		return t
	default:
		t := time.Date(y, mo, d, s.Hour, s.Minute, 0, 0, loc)
		if !t.After(now) {
			t = time.Date(y, mo, d+1, s.Hour, s.Minute, 0, 0, loc)
		}
		return t
	}
}

func (s Schedule) inMonth(y int, mo time.Month, loc *time.Location) time.Time {
	first := time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	day := min(s.Day, last)
	return time.Date(first.Year(), first.Month(), day, s.Hour, s.Minute, 0, 0, loc)
}

func (s Schedule) String() string {
	at := fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
	switch s.Kind {
	case KindWeekly:
		return fmt.Sprintf("weekly on %s at %s", s.Weekday, at)
	case KindMonthly:
		return fmt.Sprintf("monthly on day %d at %s", s.Day, at)
	default:
		return "daily at " + at
	}
}
