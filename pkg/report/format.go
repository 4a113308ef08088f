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
	"slices"
	"strings"
)

// Format is a report output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatHTML, FormatText, FormatJSON, FormatYAML}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}

// ParseFormats parses a comma separated format list. "both" expands to
// html and text. The result keeps first-seen order without duplicates.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		var fs []Format
		switch part {
		case "":
			continue
		case "both":
			fs = []Format{FormatHTML, FormatText}
		case "txt":
			fs = []Format{FormatText}
		case "yml":
			fs = []Format{FormatYAML}
		default:
			f := Format(part)
			if !slices.Contains(Formats, f) {
				return nil, fmt.Errorf("unknown report format %q, supported: html, text, json, yaml, both", part)
			}
			fs = []Format{f}
		}
		for _, f := range fs {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no report format given")
	}
	return out, nil
}
