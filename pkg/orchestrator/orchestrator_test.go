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

package orchestrator

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbxdiff/zbxdiff/pkg/collector"
	"github.com/zbxdiff/zbxdiff/pkg/comparator"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/mailer"
	"github.com/zbxdiff/zbxdiff/pkg/notify"
	"github.com/zbxdiff/zbxdiff/pkg/report"
	"github.com/zbxdiff/zbxdiff/pkg/store"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []notify.ChangeEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev notify.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func day(s string) func() time.Time {
	t, err := time.Parse(host.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(6 * time.Hour) }
}

func rec(id, name, ip string, groups ...string) host.Record {
	return host.Record{HostID: id, Name: name, IPAddress: ip, Groups: groups}
}

func seed(t *testing.T, st store.Store, date string, records ...host.Record) {
	t.Helper()
	require.NoError(t, st.Save(context.Background(), host.NewSnapshot(date, records)))
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	src := &collector.StaticSource{Records: []host.Record{rec("1", "web", "10.0.0.1", "Linux")}}
	o := New(st, WithSource(src), WithClock(day("2025-01-02")), WithLogger(quiet()))

	snap, err := o.Collect(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", snap.Date)
	assert.Equal(t, 1, snap.Len())

	stored, err := st.Load(ctx, "2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, snap.Records, stored.Records)

	t.Run("refuses to replace without overwrite", func(t *testing.T) {
		_, err := o.Collect(ctx, "2025-01-02", false)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAlreadyCollected)
		assert.Equal(t, errors.ErrCodeConflict, errors.CodeOf(err))
	})

	t.Run("replaces with overwrite", func(t *testing.T) {
		src.Records = append(src.Records, rec("2", "db", "10.0.0.2"))
		snap, err := o.Collect(ctx, "2025-01-02", true)
		require.NoError(t, err)
		assert.Equal(t, 2, snap.Len())
	})

	t.Run("explicit date", func(t *testing.T) {
		snap, err := o.Collect(ctx, "2024-12-31", false)
		require.NoError(t, err)
		assert.Equal(t, "2024-12-31", snap.Date)
	})
}

func TestCollectErrors(t *testing.T) {
	ctx := context.Background()
	boom := stderrors.New("zabbix down")

	tests := []struct {
		name string
		opts []Option
		date string
		code errors.ErrorCode
		is   error
	}{
		{name: "no source", code: errors.ErrCodeInvalidRequest},
		{name: "bad date", opts: []Option{WithSource(&collector.StaticSource{})}, date: "02/01/2025", code: errors.ErrCodeInvalidRequest},
		{name: "source failure", opts: []Option{WithSource(&collector.StaticSource{Err: boom})}, is: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemoryStore()
			o := New(st, append(tt.opts, WithLogger(quiet()))...)
			_, err := o.Collect(ctx, tt.date, false)
			require.Error(t, err)
			if tt.code != "" {
				assert.Equal(t, tt.code, errors.CodeOf(err))
			}
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			dates, err := st.Dates(ctx)
			require.NoError(t, err)
			assert.Empty(t, dates)
		})
	}
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	seed(t, st, "2025-01-01",
		rec("1", "web-01", "10.0.0.1", "Linux"),
		rec("2", "db-01", "10.0.0.2", "DB"),
		rec("3", "old", "10.0.0.3"))
	seed(t, st, "2025-01-02",
		rec("1", "web-01", "10.0.0.11", "Linux"),
		rec("2", "db-01", "10.0.0.2", "DB"),
		rec("4", "new", "10.0.0.4"))

	dir := t.TempDir()
	sender := &fakeSender{}
	pub := &fakePublisher{}
	o := New(st,
		WithClock(day("2025-01-02")),
		WithReportsDir(dir),
		WithMailer(sender, []string{"ops@example.com"}, true),
		WithPublisher(pub),
		WithLogger(quiet()),
	)

	res, err := o.Report(ctx, ReportRequest{})
	require.NoError(t, err)

	assert.Equal(t, "Daily 2025-01-02", res.Label)
	assert.Equal(t, "2025-01-01", res.Changeset.PreviousDate)
	assert.Equal(t, 1, res.Summary.Added)
	assert.Equal(t, 1, res.Summary.Removed)
	assert.Equal(t, 1, res.Summary.Modified)
	assert.Equal(t, 1, res.Summary.Unchanged)
	assert.Len(t, res.Artifacts, 2)
	assert.Len(t, res.Files, 2)
	for _, f := range res.Files {
		assert.FileExists(t, f)
	}

	require.True(t, res.Emailed)
	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, "Zabbix report - Daily 2025-01-02 - 1 added, 1 removed", msg.Subject)
	assert.Equal(t, []string{"ops@example.com"}, msg.To)
	assert.Equal(t, res.Files, msg.Attachments)
	assert.NotEmpty(t, msg.HTML)
	assert.NotEmpty(t, msg.Text)

	require.True(t, res.Published)
	require.Len(t, pub.events, 1)
	assert.Equal(t, []string{"4"}, pub.events[0].Added)
	assert.Equal(t, []string{"3"}, pub.events[0].Removed)
	assert.Equal(t, []string{"1"}, pub.events[0].Modified)
}

func TestReportBaseline(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "2025-01-02", rec("1", "web", "10.0.0.1"), rec("2", "db", "10.0.0.2"))
	o := New(st, WithClock(day("2025-01-02")), WithLogger(quiet()))

	res, err := o.Report(context.Background(), ReportRequest{})
	require.NoError(t, err)
	assert.True(t, res.Changeset.Baseline)
	assert.Equal(t, 2, res.Summary.Added)
	assert.Empty(t, res.Files)
	assert.False(t, res.Emailed)
	assert.False(t, res.Published)
}

func TestReportExplicitPrevious(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "2025-01-01", rec("1", "a", "10.0.0.1"))
	seed(t, st, "2025-01-02", rec("1", "b", "10.0.0.1"))
	seed(t, st, "2025-01-03", rec("1", "c", "10.0.0.1"), rec("2", "d", "10.0.0.2"))
	o := New(st, WithClock(day("2025-01-03")), WithLogger(quiet()))

	res, err := o.Report(context.Background(), ReportRequest{Current: "2025-01-03", Previous: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", res.Changeset.PreviousDate)
	require.Len(t, res.Changeset.Modified, 1)
	assert.Equal(t, "a", res.Changeset.Modified[0].Old.Name)
}

func TestReportErrors(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "2025-01-01", rec("1", "a", "10.0.0.1"))
	seed(t, st, "2025-01-02", rec("1", "a", "10.0.0.1"), rec("1", "dup", "10.0.0.9"))
	o := New(st, WithClock(day("2025-01-03")), WithLogger(quiet()))

	tests := []struct {
		name string
		req  ReportRequest
		code errors.ErrorCode
		is   error
	}{
		{"missing current", ReportRequest{}, errors.ErrCodeMissingSnapshot, comparator.ErrMissingCurrentSnapshot},
		{"missing previous", ReportRequest{Current: "2025-01-01", Previous: "2024-12-01"}, errors.ErrCodeMissingSnapshot, store.ErrNotFound},
		{"previous not before current", ReportRequest{Current: "2025-01-01", Previous: "2025-01-01"}, errors.ErrCodeInvalidRequest, nil},
		{"bad date", ReportRequest{Current: "yesterday"}, errors.ErrCodeInvalidRequest, nil},
		{"duplicate identity", ReportRequest{Current: "2025-01-02"}, errors.ErrCodeDuplicateIdentity, comparator.ErrDuplicateIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Report(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestReportDeliveryFailure(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "2025-01-01", rec("1", "a", "10.0.0.1"))
	seed(t, st, "2025-01-02", rec("2", "b", "10.0.0.2"))

	smtpErr := stderrors.New("smtp refused")
	pub := &fakePublisher{}
	o := New(st,
		WithClock(day("2025-01-02")),
		WithMailer(&fakeSender{err: smtpErr}, []string{"ops@example.com"}, false),
		WithPublisher(pub),
		WithLogger(quiet()),
	)

	res, err := o.Report(context.Background(), ReportRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, smtpErr)
	assert.Equal(t, errors.ErrCodeUnavailable, errors.CodeOf(err))

	require.NotNil(t, res)
	assert.False(t, res.Emailed)
	assert.True(t, res.Published, "event delivery runs even when email fails")
	assert.NotEmpty(t, res.Artifacts)
}

func TestPeriodReport(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "2024-12-20", rec("9", "ancient", "10.9.9.9"))
	seed(t, st, "2025-01-01", rec("1", "a", "10.0.0.1"))
	seed(t, st, "2025-01-04", rec("1", "a", "10.0.0.1"), rec("2", "b", "10.0.0.2"))
	seed(t, st, "2025-01-07", rec("2", "b2", "10.0.0.2"))

	sender := &fakeSender{}
	o := New(st,
		WithClock(day("2025-01-07")),
		WithFormats(report.FormatText),
		WithMailer(sender, []string{"ops@example.com"}, false),
		WithLogger(quiet()),
	)

	res, err := o.PeriodReport(context.Background(), "weekly", 7)
	require.NoError(t, err)
	require.NotNil(t, res.Period)
	assert.Equal(t, []string{"2025-01-01", "2025-01-04", "2025-01-07"}, res.Period.Dates)
	assert.Equal(t, "Weekly 2025-01-01 to 2025-01-07", res.Label)
	assert.Equal(t, 1, res.Summary.Added)
	assert.Equal(t, 1, res.Summary.Removed)
	assert.Equal(t, 1, res.Summary.Modified)

	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0].Subject, "Weekly 2025-01-01 to 2025-01-07")
	assert.Empty(t, sender.msgs[0].HTML)
}

func TestPeriodReportWindow(t *testing.T) {
	tests := []struct {
		name  string
		days  int
		first string
		count int
	}{
		{name: "weekly", days: 7, first: "2025-01-01", count: 7},
		{name: "two days", days: 2, first: "2025-01-06", count: 2},
	}

	st := store.NewMemoryStore()
	start := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		seed(t, st, host.FormatDate(start.AddDate(0, 0, i)), rec("1", "a", "10.0.0.1"))
	}
	o := New(st, WithClock(day("2025-01-07")), WithLogger(quiet()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := o.PeriodReport(context.Background(), tt.name, tt.days)
			require.NoError(t, err)
			require.Len(t, res.Period.Dates, tt.count)
			assert.Equal(t, tt.first, res.Period.Dates[0])
			assert.Equal(t, "2025-01-07", res.Period.Dates[tt.count-1])
			assert.NotContains(t, res.Period.Dates, "2024-12-31")
		})
	}
}

func TestPeriodReportErrors(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, "2025-01-07", rec("1", "a", "10.0.0.1"))
	o := New(st, WithClock(day("2025-01-07")), WithLogger(quiet()))

	_, err := o.PeriodReport(context.Background(), "weekly", 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, comparator.ErrInsufficientSnapshots)
	assert.Equal(t, errors.ErrCodeMissingSnapshot, errors.CodeOf(err))

	_, err = o.PeriodReport(context.Background(), "weekly", 0)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}
