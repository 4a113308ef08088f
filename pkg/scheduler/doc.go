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

// Package scheduler runs jobs on daily, weekly and monthly cadences.
//
// A Schedule is a plain value. Its Next method computes the first run
// strictly after a given instant and has no other inputs, so cadences can
// be tested without waiting on a clock.
//
// Runner owns the per-job "next run" bookkeeping for the lifetime of a
// single Run call. Run is driven by a trigger channel: production code
// passes a time.Ticker channel, tests send instants directly.
//
//	daily, _ := scheduler.Daily("06:00")
//	r := scheduler.NewRunner([]scheduler.Job{{Name: "daily", Schedule: daily, Run: collectAndReport}})
//	ticker := time.NewTicker(defaults.SchedulerTick)
//	defer ticker.Stop()
//	err := r.Run(ctx, ticker.C)
//
// A failing job is logged and retried at its next scheduled time.
package scheduler
