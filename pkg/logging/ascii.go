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

package logging

import (
	"context"
	"log/slog"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCIIHandler strips diacritics from log messages and string attributes
// so downstream APM pipelines that only accept ASCII keep working.
type ASCIIHandler struct {
	next slog.Handler
}

// NewASCIIHandler wraps next.
func NewASCIIHandler(next slog.Handler) *ASCIIHandler {
	return &ASCIIHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *ASCIIHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ASCIIHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, FoldASCII(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(foldAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *ASCIIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	folded := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		folded[i] = foldAttr(a)
	}
	return &ASCIIHandler{next: h.next.WithAttrs(folded)}
}

// WithGroup implements slog.Handler.
func (h *ASCIIHandler) WithGroup(name string) slog.Handler {
	return &ASCIIHandler{next: h.next.WithGroup(name)}
}

func foldAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, FoldASCII(a.Value.String()))
	}
	return a
}

// FoldASCII removes combining marks ("relatório" -> "relatorio").
// Characters without an ASCII decomposition are kept as is.
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
