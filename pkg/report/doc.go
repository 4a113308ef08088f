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

// Package report renders changesets into report artifacts.
//
// A Document is built from a daily changeset (FromChangeset) or from a
// weekly/monthly period (FromPeriod) and rendered by a Renderer into one
// Artifact per requested Format:
//
//	r := report.NewRenderer()
//	arts, err := r.Render(cs, []report.Format{report.FormatHTML, report.FormatText})
//	paths, err := report.WriteAll("reports", arts)
//
// Artifacts are named zabbix_report_<date>_<YYYYMMDD_HHMMSS>.<ext>, where
// date is the current snapshot date and the timestamp comes from the
// renderer clock. Rendering is a pure function of the document and the
// clock, so tests inject a fixed clock with WithClock.
//
// HTML and text use the embedded templates under templates/. JSON and YAML
// serialize the Document itself via pkg/serializer.
package report
