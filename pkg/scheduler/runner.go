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

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var jobRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "zbxdiff_scheduler_job_runs_total",
		Help: "Scheduled job executions",
	},
	[]string{"job", "status"},
)

// Job is a named unit of scheduled work.
type Job struct {
	Name     string
	Schedule Schedule
	Run      func(ctx context.Context) error
}

// Runner executes jobs when their schedule comes due.
type Runner struct {
	jobs   []Job
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the clock read when Run starts.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLocation sets the time zone schedules are evaluated in.
func WithLocation(loc *time.Location) RunnerOption {
	return func(r *Runner) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// NewRunner returns a Runner for jobs. Jobs due on the same trigger run
// in the given order.
func NewRunner(jobs []Job, opts ...RunnerOption) *Runner {
	r := &Runner{
		jobs:   jobs,
		logger: slog.Default(),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run waits on trigger and executes each job whose next run is at or
// before the received instant. It returns when ctx is done or trigger is
// closed.
func (r *Runner) Run(ctx context.Context, trigger <-chan time.Time) error {
	if len(r.jobs) == 0 {
		return fmt.Errorf("no jobs to schedule")
	}

	start := r.now().In(r.loc)
	next := make([]time.Time, len(r.jobs))
	for i, j := range r.jobs {
		next[i] = j.Schedule.Next(start)
		r.logger.Info("job scheduled", "job", j.Name, "schedule", j.Schedule.String(), "next", next[i].Format(time.RFC3339))
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scheduler stopped")
			return nil
		case t, ok := <-trigger:
			if !ok {
				return nil
			}
			t = t.In(r.loc)
			for i, j := range r.jobs {
				if t.Before(next[i]) {
					continue
				}
				r.runJob(ctx, j)
				next[i] = j.Schedule.Next(t)
				r.logger.Info("job rescheduled", "job", j.Name, "next", next[i].Format(time.RFC3339))
				if ctx.Err() != nil {
					return nil
				}
			}
		}
	}
}

func (r *Runner) runJob(ctx context.Context, j Job) {
	start := time.Now()
	r.logger.Info("running scheduled job", "job", j.Name)

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("job panicked: %v", p)
			}
		}()
		return j.Run(ctx)
	}()

	if err != nil {
		jobRunsTotal.WithLabelValues(j.Name, "error").Inc()
		r.logger.Error("scheduled job failed", "job", j.Name, "error", err,
			"duration", time.Since(start).Round(time.Millisecond).String())
		return
	}
	jobRunsTotal.WithLabelValues(j.Name, "success").Inc()
	r.logger.Info("scheduled job finished", "job", j.Name,
		"duration", time.Since(start).Round(time.Millisecond).String())
}
