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

package mailer

import (
	"fmt"
	"strings"

	"github.com/zbxdiff/zbxdiff/pkg/comparator"
	"github.com/zbxdiff/zbxdiff/pkg/report"
)

// SubjectPrefix starts every report subject.
const SubjectPrefix = "Zabbix report"

// Subject builds the report subject for label. Only additions and
// removals are counted in the subject; modifications appear in the body.
func Subject(label string, s comparator.Summary) string {
	subject := fmt.Sprintf("%s - %s", SubjectPrefix, label)
	if !s.HasChanges() {
		return subject + " - No changes"
	}
	return fmt.Sprintf("%s - %d added, %d removed", subject, s.Added, s.Removed)
}

// NewReportMessage builds the email for a rendered report. The HTML and
// text artifacts become the two alternatives of the body; a summary is
// used for the plain part when no text artifact exists.
func NewReportMessage(to []string, label string, s comparator.Summary, arts []report.Artifact, attachments []string) Message {
	msg := Message{
		To:          to,
		Subject:     Subject(label, s),
		Attachments: attachments,
	}
	if a, ok := report.Find(arts, report.FormatHTML); ok {
		msg.HTML = string(a.Content)
	}
	if a, ok := report.Find(arts, report.FormatText); ok {
		msg.Text = string(a.Content)
	} else {
		msg.Text = summaryText(label, s)
	}
	return msg
}

func summaryText(label string, s comparator.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Zabbix host report - %s\n\n", label)
	fmt.Fprintf(&b, "Hosts now:    %d\n", s.TotalCurrent)
	fmt.Fprintf(&b, "Hosts before: %d\n", s.TotalPrevious)
	fmt.Fprintf(&b, "Net change:   %+d\n\n", s.NetChange)
	fmt.Fprintf(&b, "Added:        %d\n", s.Added)
	fmt.Fprintf(&b, "Removed:      %d\n", s.Removed)
	fmt.Fprintf(&b, "Modified:     %d\n", s.Modified)
	if !s.HasChanges() {
		b.WriteString("\nNo changes detected.\n")
	}
	return b.String()
}
