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

// Package orchestrator runs the zbxdiff workflows.
//
// An Orchestrator ties the pieces together:
//
//   - Collect queries a collector.Source and stores the result as the
//     snapshot of a date.
//   - Report loads the snapshot of a date and its predecessor, compares
//     them, renders and writes the report files, emails them and
//     publishes a change event.
//   - PeriodReport does the same for every snapshot in a trailing window
//     of days (weekly and monthly summaries).
//
// Collect refuses to replace a stored date unless overwrite is set and
// returns ErrAlreadyCollected instead.
//
// Email and event delivery are optional. Delivery failures do not
// discard the rendered report: the Result is returned together with the
// error.
//
// Usage:
//
//	o := orchestrator.New(st,
//	    orchestrator.WithSource(client),
//	    orchestrator.WithReportsDir("reports"),
//	    orchestrator.WithMailer(m, []string{"ops@example.com"}, true),
//	    orchestrator.WithPublisher(pub),
//	)
//	if _, err := o.Collect(ctx, "", false); err != nil { ... }
//	res, err := o.Report(ctx, orchestrator.ReportRequest{})
package orchestrator
