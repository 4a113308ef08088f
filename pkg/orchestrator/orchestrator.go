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
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zbxdiff/zbxdiff/pkg/collector"
	"github.com/zbxdiff/zbxdiff/pkg/comparator"
	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/mailer"
	"github.com/zbxdiff/zbxdiff/pkg/notify"
	"github.com/zbxdiff/zbxdiff/pkg/report"
	"github.com/zbxdiff/zbxdiff/pkg/store"
)

// ErrAlreadyCollected is returned by Collect when the date is already
// stored and overwrite was not requested.
var ErrAlreadyCollected = stderrors.New("snapshot already collected")

// Orchestrator runs collections and reports against a store.
type Orchestrator struct {
	store      store.Store
	source     collector.Source
	renderer   *report.Renderer
	formats    []report.Format
	fields     []host.Field
	reportsDir string
	sender     mailer.Sender
	recipients []string
	attach     bool
	publisher  notify.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSource sets the inventory source used by Collect.
func WithSource(src collector.Source) Option {
	return func(o *Orchestrator) {
		o.source = src
	}
}

// WithRenderer replaces the default report renderer.
func WithRenderer(r *report.Renderer) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithFormats sets the rendered report formats.
func WithFormats(formats ...report.Format) Option {
	return func(o *Orchestrator) {
		if len(formats) > 0 {
			o.formats = formats
		}
	}
}

// WithFields sets the tracked fields.
func WithFields(fields ...host.Field) Option {
	return func(o *Orchestrator) {
		if len(fields) > 0 {
			o.fields = fields
		}
	}
}

// WithReportsDir sets the directory reports are written to. Reports are
// not written to disk when dir is empty.
func WithReportsDir(dir string) Option {
	return func(o *Orchestrator) {
		o.reportsDir = dir
	}
}

// WithMailer enables email delivery to recipients. When attach is set the
// written report files are attached.
func WithMailer(s mailer.Sender, recipients []string, attach bool) Option {
	return func(o *Orchestrator) {
		o.sender = s
		o.recipients = recipients
		o.attach = attach
	}
}

// WithPublisher sets the change event publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock that defines "today".
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New returns an Orchestrator over st.
func New(st store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     st,
		renderer:  report.NewRenderer(),
		formats:   []report.Format{report.FormatHTML, report.FormatText},
		fields:    host.DefaultFields,
		publisher: notify.Noop{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) today() string {
	return host.FormatDate(o.now())
}

func (o *Orchestrator) resolveDate(date string) (string, error) {
	if date == "" {
		return o.today(), nil
	}
	d, err := host.ParseDate(date)
	if err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid date", err,
			map[string]any{"date": date})
	}
	return d, nil
}

// Collect stores the current inventory as the snapshot of date (today
// when empty).
func (o *Orchestrator) Collect(ctx context.Context, date string, overwrite bool) (*host.Snapshot, error) {
	if o.source == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "no inventory source configured")
	}
	date, err := o.resolveDate(date)
	if err != nil {
		return nil, err
	}

	exists, err := o.store.Exists(ctx, date)
	if err != nil {
		collectionTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to check for existing snapshot: %w", err)
	}
	if exists && !overwrite {
		collectionTotal.WithLabelValues("skipped").Inc()
		return nil, errors.WrapWithContext(errors.ErrCodeConflict,
			"a snapshot for this date exists, use overwrite to replace it", ErrAlreadyCollected,
			map[string]any{"date": date})
	}

	start := time.Now()
	cctx, cancel := context.WithTimeout(ctx, defaults.CollectorTimeout)
	defer cancel()

	o.logger.Info("collecting host inventory", "date", date, "replace", exists)
	records, err := o.source.Collect(cctx)
	collectionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		collectionTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to collect hosts: %w", err)
	}

	snap := host.NewSnapshot(date, records)
	if dups := snap.DuplicateIDs(); len(dups) > 0 {
		o.logger.Warn("collected inventory holds duplicate host ids, comparisons against this date will fail",
			"date", date, "duplicates", len(dups))
	}

	if err := o.store.Save(ctx, snap); err != nil {
		collectionTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	collectionTotal.WithLabelValues("success").Inc()
	hostsCollected.Set(float64(snap.Len()))
	o.logger.Info("host inventory collected",
		"date", date,
		"hosts", snap.Len(),
		"duration", time.Since(start).Round(time.Millisecond).String())
	return snap, nil
}

// ReportRequest selects the snapshots of a daily report.
type ReportRequest struct {
	// Current is the reported date, today when empty.
	Current string
	// Previous is the reference date. When empty the latest snapshot
	// before Current is used, and a baseline report is produced when
	// there is none.
	Previous string
}

// Result describes a finished report run.
type Result struct {
	Label     string
	Summary   comparator.Summary
	Changeset *comparator.Changeset
	Period    *comparator.PeriodChangeset
	Artifacts []report.Artifact
	Files     []string
	Emailed   bool
	Published bool
}

// Report compares the snapshot of req.Current with its predecessor and
// delivers the report.
func (o *Orchestrator) Report(ctx context.Context, req ReportRequest) (*Result, error) {
	current, err := o.resolveDate(req.Current)
	if err != nil {
		return nil, err
	}
	previous := req.Previous
	if previous != "" {
		if previous, err = o.resolveDate(previous); err != nil {
			return nil, err
		}
		if previous >= current {
			return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
				"previous date must be before the current date",
				map[string]any{"current": current, "previous": previous})
		}
	}

	cur, prev, err := o.loadPair(ctx, current, previous)
	if err != nil {
		reportTotal.WithLabelValues("daily", "error").Inc()
		return nil, err
	}

	cs, err := comparator.Compare(cur, prev, comparator.WithFields(o.fields...))
	if err != nil {
		reportTotal.WithLabelValues("daily", "error").Inc()
		return nil, err
	}

	s := cs.Summary()
	if cs.Baseline {
		o.logger.Info("no previous collection, reporting baseline", "date", current, "hosts", s.TotalCurrent)
	} else {
		changesTotal.WithLabelValues("added").Add(float64(s.Added))
		changesTotal.WithLabelValues("removed").Add(float64(s.Removed))
		changesTotal.WithLabelValues("modified").Add(float64(s.Modified))
		o.logger.Info("comparison complete",
			"current", cs.CurrentDate,
			"previous", cs.PreviousDate,
			"added", s.Added,
			"removed", s.Removed,
			"modified", s.Modified,
			"unchanged", s.Unchanged)
	}

	doc := report.FromChangeset(cs)
	res := &Result{Label: doc.Label, Summary: s, Changeset: cs}
	if err := o.deliver(ctx, doc, res, notify.EventFromChangeset(cs)); err != nil {
		reportTotal.WithLabelValues("daily", "error").Inc()
		return res, err
	}
	reportTotal.WithLabelValues("daily", "success").Inc()
	return res, nil
}

// loadPair loads current and previous concurrently. An empty previous
// resolves to the latest snapshot before current, nil when none exists.
func (o *Orchestrator) loadPair(ctx context.Context, current, previous string) (*host.Snapshot, *host.Snapshot, error) {
	var cur, prev *host.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := o.store.Load(gctx, current)
		if err != nil {
			if store.IsNotFound(err) {
				return errors.WrapWithContext(errors.ErrCodeMissingSnapshot,
					"no snapshot collected for the report date", comparator.ErrMissingCurrentSnapshot,
					map[string]any{"date": current})
			}
			return fmt.Errorf("failed to load snapshot %s: %w", current, err)
		}
		cur = s
		return nil
	})

	g.Go(func() error {
		var (
			s   *host.Snapshot
			err error
		)
		if previous == "" {
			s, err = o.store.MostRecentBefore(gctx, current)
			if store.IsNotFound(err) {
				return nil
			}
		} else {
			s, err = o.store.Load(gctx, previous)
			if store.IsNotFound(err) {
				return errors.WrapWithContext(errors.ErrCodeMissingSnapshot,
					"no snapshot collected for the reference date", err,
					map[string]any{"date": previous})
			}
		}
		if err != nil {
			return fmt.Errorf("failed to load previous snapshot: %w", err)
		}
		prev = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cur, prev, nil
}

// PeriodReport compares every snapshot collected within the last days
// days (today included) and delivers the aggregated report. name labels
// the period, e.g. "weekly".
func (o *Orchestrator) PeriodReport(ctx context.Context, name string, days int) (*Result, error) {
	if days < 1 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "period must span at least one day",
			map[string]any{"days": days})
	}
	to := o.now()
	from := host.FormatDate(to.AddDate(0, 0, -(days - 1)))
	until := host.FormatDate(to)

	all, err := o.store.Dates(ctx)
	if err != nil {
		reportTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	var dates []string
	for _, d := range all {
		if d >= from && d <= until {
			dates = append(dates, d)
		}
	}

	snaps, err := o.loadAll(ctx, dates)
	if err != nil {
		reportTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}

	p, err := comparator.ComparePeriod(snaps, comparator.WithFields(o.fields...))
	if err != nil {
		reportTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}

	s := p.Summary()
	o.logger.Info("period comparison complete",
		"period", name,
		"from", p.From,
		"to", p.To,
		"snapshots", len(p.Dates),
		"added", s.Added,
		"removed", s.Removed,
		"modified", s.Modified)

	doc := report.FromPeriod(name, p)
	res := &Result{Label: doc.Label, Summary: s, Period: p}
	if err := o.deliver(ctx, doc, res, notify.EventFromPeriod(name, doc.Label, p)); err != nil {
		reportTotal.WithLabelValues(name, "error").Inc()
		return res, err
	}
	reportTotal.WithLabelValues(name, "success").Inc()
	return res, nil
}

func (o *Orchestrator) loadAll(ctx context.Context, dates []string) ([]*host.Snapshot, error) {
	snaps := make([]*host.Snapshot, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, d := range dates {
		g.Go(func() error {
			s, err := o.store.Load(gctx, d)
			if err != nil {
				return fmt.Errorf("failed to load snapshot %s: %w", d, err)
			}
			snaps[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

// deliver renders doc, writes the files and hands the report to the mail
// and event channels. Delivery errors are collected; the remaining
// channels still run.
func (o *Orchestrator) deliver(ctx context.Context, doc *report.Document, res *Result, ev notify.ChangeEvent) error {
	arts, err := o.renderer.RenderDocument(doc, o.formats)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	res.Artifacts = arts

	if o.reportsDir != "" {
		files, err := report.WriteAll(o.reportsDir, arts)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInternal, "failed to write reports", err,
				map[string]any{"dir": o.reportsDir})
		}
		res.Files = files
		o.logger.Info("reports written", "label", doc.Label, "files", files)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	if o.sender != nil && len(o.recipients) > 0 {
		g.Go(func() error {
			if err := o.email(ctx, doc, res); err != nil {
				deliveryTotal.WithLabelValues("email", "error").Inc()
				o.logger.Error("failed to email report", "label", doc.Label, "error", err)
				fail(err)
				return nil
			}
			deliveryTotal.WithLabelValues("email", "success").Inc()
			res.Emailed = true
			return nil
		})
	}
	if _, noop := o.publisher.(notify.Noop); !noop {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, defaults.PublishTimeout)
			defer cancel()
			if err := o.publisher.Publish(pctx, ev); err != nil {
				deliveryTotal.WithLabelValues("nats", "error").Inc()
				o.logger.Error("failed to publish change event", "label", doc.Label, "error", err)
				fail(err)
				return nil
			}
			deliveryTotal.WithLabelValues("nats", "success").Inc()
			res.Published = true
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return errors.Wrap(errors.ErrCodeUnavailable, "report delivery failed", stderrors.Join(errs...))
	}
	return nil
}

func (o *Orchestrator) email(ctx context.Context, doc *report.Document, res *Result) error {
	var attachments []string
	if o.attach {
		attachments = res.Files
	}
	msg := mailer.NewReportMessage(o.recipients, doc.Label, doc.Summary, res.Artifacts, attachments)

	mctx, cancel := context.WithTimeout(ctx, defaults.MailSendTimeout)
	defer cancel()
	if err := o.sender.Send(mctx, msg); err != nil {
		return err
	}
	o.logger.Info("report emailed", "label", doc.Label, "recipients", len(o.recipients), "attachments", len(attachments))
	return nil
}
