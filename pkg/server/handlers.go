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

package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/zbxdiff/zbxdiff/pkg/comparator"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/report"
	"github.com/zbxdiff/zbxdiff/pkg/serializer"
	"github.com/zbxdiff/zbxdiff/pkg/store"
)

// requestTimeout bounds store work per API request.
const requestTimeout = 15 * time.Second

// DatesResponse is the body of /v1/dates.
type DatesResponse struct {
	Dates []string `json:"dates" yaml:"dates"`
	Count int      `json:"count" yaml:"count"`
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dates, err := s.store.Dates(ctx)
	if err != nil {
		WriteErrorFromErr(w, r, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	serializer.RespondJSON(w, http.StatusOK, DatesResponse{Dates: dates, Count: len(dates)})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	date, err := host.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest, err.Error(), false, nil)
		return
	}
	format, ok := s.dataFormat(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	snap, err := s.store.Load(ctx, date)
	if err != nil {
		WriteErrorFromErr(w, r, err)
		return
	}
	s.respond(w, r, format, snap)
}

// handleChanges compares two stored snapshots.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fields := s.fields
	if v := q.Get("fields"); v != "" {
		parsed, err := host.ParseFields(v)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest, err.Error(), false, nil)
			return
		}
		fields = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cur, prev, err := s.loadPair(ctx, q.Get("current"), q.Get("previous"))
	if err != nil {
		WriteErrorFromErr(w, r, err)
		return
	}

	cs, err := comparator.Compare(cur, prev, comparator.WithFields(fields...))
	if err != nil {
		WriteErrorFromErr(w, r, err)
		return
	}

	switch f := strings.ToLower(q.Get("format")); f {
	case "html", "text", "txt":
		rf := report.FormatHTML
		if f != "html" {
			rf = report.FormatText
		}
		arts, err := s.renderer.Render(cs, []report.Format{rf})
		if err != nil {
			WriteErrorFromErr(w, r, err)
			return
		}
		w.Header().Set("Content-Type", rf.ContentType())
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(arts[0].Content); err != nil {
			s.logger.Warn("response write failed", "error", err)
		}
	default:
		format, ok := s.dataFormat(w, r)
		if !ok {
			return
		}
		s.respond(w, r, format, cs)
	}
}

// loadPair resolves the snapshots of a /v1/changes request. An empty
// current selects the newest snapshot; an empty previous selects the one
// before current, nil when there is none.
func (s *Server) loadPair(ctx context.Context, current, previous string) (*host.Snapshot, *host.Snapshot, error) {
	if current == "" {
		dates, err := s.store.Dates(ctx)
		if err != nil {
			return nil, nil, err
		}
		if len(dates) == 0 {
			return nil, nil, errors.New(errors.ErrCodeMissingSnapshot, "no snapshot collected yet")
		}
		current = dates[0]
	}

	curDate, err := host.ParseDate(current)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid current date", err)
	}
	cur, err := s.store.Load(ctx, curDate)
	if err != nil {
		return nil, nil, err
	}

	if previous == "" {
		prev, err := s.store.MostRecentBefore(ctx, curDate)
		if store.IsNotFound(err) {
			return cur, nil, nil
		}
		return cur, prev, err
	}

	prevDate, err := host.ParseDate(previous)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid previous date", err)
	}
	if prevDate >= curDate {
		return nil, nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"previous date must be before the current date",
			map[string]any{"current": curDate, "previous": prevDate})
	}
	prev, err := s.store.Load(ctx, prevDate)
	if err != nil {
		return nil, nil, err
	}
	return cur, prev, nil
}

// dataFormat reads the json/yaml format parameter, writing a 400 when it
// is unknown.
func (s *Server) dataFormat(w http.ResponseWriter, r *http.Request) (serializer.Format, bool) {
	v := r.URL.Query().Get("format")
	if v == "" {
		return serializer.FormatJSON, true
	}
	f, err := serializer.ParseFormat(v)
	if err != nil || f == serializer.FormatTable {
		WriteError(w, r, http.StatusBadRequest, errors.ErrCodeInvalidRequest,
			"unsupported format, use json or yaml", false, map[string]any{"format": v})
		return "", false
	}
	return f, true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, f serializer.Format, v any) {
	if f == serializer.FormatJSON {
		serializer.RespondJSON(w, http.StatusOK, v)
		return
	}
	data, err := serializer.Marshal(f, v)
	if err != nil {
		WriteErrorFromErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("response write failed", "error", err)
	}
}
