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
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"
	"unicode/utf8"

	"github.com/zbxdiff/zbxdiff/pkg/comparator"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/serializer"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	// DefaultPrefix starts every artifact name.
	DefaultPrefix = "zabbix_report"

	timestampLayout = "20060102_150405"
	stampLayout     = "2006-01-02 15:04:05"
	ruleWidth       = 80
)

var funcs = map[string]any{
	"display":     display,
	"signed":      signed,
	"pad":         pad,
	"stamp":       func(t time.Time) string { return t.Format(stampLayout) },
	"rule":        func(ch string) string { return strings.Repeat(ch, ruleWidth) },
	"fieldLabels": fieldLabels,
}

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("report.html.tmpl").
			Funcs(htmltemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/report.html.tmpl"))
	textTemplate = texttemplate.Must(texttemplate.New("report.txt.tmpl").
			Funcs(texttemplate.FuncMap(funcs)).
			ParseFS(templateFS, "templates/report.txt.tmpl"))
)

// Artifact is one rendered report.
type Artifact struct {
	Format  Format
	Name    string
	Content []byte
}

// Renderer turns documents into artifacts.
type Renderer struct {
	now    func() time.Time
	prefix string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the clock used for the generation timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithPrefix replaces DefaultPrefix in artifact names.
func WithPrefix(prefix string) Option {
	return func(r *Renderer) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRenderer creates a renderer using the wall clock.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now, prefix: DefaultPrefix}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render renders a daily changeset.
func (r *Renderer) Render(cs *comparator.Changeset, formats []Format) ([]Artifact, error) {
	if cs == nil {
		return nil, fmt.Errorf("changeset is nil")
	}
	return r.RenderDocument(FromChangeset(cs), formats)
}

// RenderPeriod renders an aggregated period changeset.
func (r *Renderer) RenderPeriod(name string, p *comparator.PeriodChangeset, formats []Format) ([]Artifact, error) {
	if p == nil {
		return nil, fmt.Errorf("period changeset is nil")
	}
	return r.RenderDocument(FromPeriod(name, p), formats)
}

// RenderDocument renders doc once per format, in the given order.
func (r *Renderer) RenderDocument(doc *Document, formats []Format) ([]Artifact, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("no report format requested")
	}

	generated := r.now()
	d := *doc
	d.GeneratedAt = generated.Truncate(time.Second)

	arts := make([]Artifact, 0, len(formats))
	for _, f := range formats {
		content, err := renderFormat(&d, f)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s report: %w", f, err)
		}
		arts = append(arts, Artifact{
			Format:  f,
			Name:    fmt.Sprintf("%s_%s_%s.%s", r.prefix, d.CurrentDate, generated.Format(timestampLayout), f.Ext()),
			Content: content,
		})
	}
	return arts, nil
}

func renderFormat(d *Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatHTML:
		if err := htmlTemplate.Execute(&buf, d); err != nil {
			return nil, err
		}
	case FormatText:
		if err := textTemplate.Execute(&buf, d); err != nil {
			return nil, err
		}
	case FormatJSON:
		return serializer.Marshal(serializer.FormatJSON, d)
	case FormatYAML:
		return serializer.Marshal(serializer.FormatYAML, d)
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	return buf.Bytes(), nil
}

// WriteAll writes every artifact into dir, creating it when needed, and
// returns the written paths in artifact order.
func WriteAll(dir string, arts []Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		p := filepath.Join(dir, a.Name)
		if err := os.WriteFile(p, a.Content, 0o644); err != nil { //nolint:gosec // reports are meant to be shared
			return paths, fmt.Errorf("failed to write report %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Find returns the first artifact of format f.
func Find(arts []Artifact, f Format) (Artifact, bool) {
	for _, a := range arts {
		if a.Format == f {
			return a, true
		}
	}
	return Artifact{}, false
}

func display(v any) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return "-"
		}
		return x
	case []string:
		if len(x) == 0 {
			return "-"
		}
		return strings.Join(x, ", ")
	case nil:
		return "-"
	default:
		return fmt.Sprint(x)
	}
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

// pad left-aligns s in a column of width n, truncating with "~" when s
// does not fit.
func pad(n int, s string) string {
	count := utf8.RuneCountInString(s)
	if count > n {
		runes := []rune(s)
		if n <= 1 {
			return string(runes[:n])
		}
		return string(runes[:n-1]) + "~"
	}
	return s + strings.Repeat(" ", n-count)
}

func fieldLabels(fs []host.Field) string {
	labels := make([]string, len(fs))
	for i, f := range fs {
		labels[i] = f.Label()
	}
	return strings.Join(labels, ", ")
}
