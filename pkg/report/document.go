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

package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/zbxdiff/zbxdiff/pkg/comparator"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

// Document is the renderer input.
type Document struct {
	// Label names the report, e.g. "Daily 2025-01-02" or
	// "Weekly 2025-01-01 to 2025-01-07".
	Label string `json:"label" yaml:"label"`

	CurrentDate  string `json:"current_date" yaml:"current_date"`
	PreviousDate string `json:"previous_date,omitempty" yaml:"previous_date,omitempty"`

	// Baseline marks a first collection without a previous snapshot.
	Baseline bool `json:"baseline" yaml:"baseline"`

	// GeneratedAt is set by the renderer.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Fields   []host.Field              `json:"fields" yaml:"fields"`
	Summary  comparator.Summary        `json:"summary" yaml:"summary"`
	Added    []host.Record             `json:"added" yaml:"added"`
	Removed  []host.Record             `json:"removed" yaml:"removed"`
	Modified []comparator.Modification `json:"modified" yaml:"modified"`

	// Steps holds the day-by-day breakdown of a period report.
	Steps []Step `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Step is one consecutive-pair comparison within a period.
type Step struct {
	From    string             `json:"from" yaml:"from"`
	To      string             `json:"to" yaml:"to"`
	Summary comparator.Summary `json:"summary" yaml:"summary"`
}

// HasChanges reports whether the document lists any change.
func (d *Document) HasChanges() bool {
	return d.Summary.HasChanges()
}

// TracksTemplates reports whether templates are a tracked field.
func (d *Document) TracksTemplates() bool {
	for _, f := range d.Fields {
		if f == host.FieldTemplates {
			return true
		}
	}
	return false
}

// FromChangeset builds a daily document.
func FromChangeset(cs *comparator.Changeset) *Document {
	return &Document{
		Label:        "Daily " + cs.CurrentDate,
		CurrentDate:  cs.CurrentDate,
		PreviousDate: cs.PreviousDate,
		Baseline:     cs.Baseline,
		Fields:       cs.Fields,
		Summary:      cs.Summary(),
		Added:        cs.Added,
		Removed:      cs.Removed,
		Modified:     cs.Modified,
	}
}

// FromPeriod builds a period document named name (e.g. "weekly"). Host
// lists are the concatenation of every step in date order.
func FromPeriod(name string, p *comparator.PeriodChangeset) *Document {
	d := &Document{
		Label:        fmt.Sprintf("%s %s to %s", capitalize(name), p.From, p.To),
		CurrentDate:  p.To,
		PreviousDate: p.From,
		Summary:      p.Summary(),
		Added:        []host.Record{},
		Removed:      []host.Record{},
		Modified:     []comparator.Modification{},
	}
	for _, cs := range p.Steps {
		if d.Fields == nil {
			d.Fields = cs.Fields
		}
		d.Added = append(d.Added, cs.Added...)
		d.Removed = append(d.Removed, cs.Removed...)
		d.Modified = append(d.Modified, cs.Modified...)
		d.Steps = append(d.Steps, Step{From: cs.PreviousDate, To: cs.CurrentDate, Summary: cs.Summary()})
	}
	return d
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
