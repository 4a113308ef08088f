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

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/zbxdiff/zbxdiff/pkg/config"
	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/orchestrator"
	"github.com/zbxdiff/zbxdiff/pkg/scheduler"
	"github.com/zbxdiff/zbxdiff/pkg/server"
)

func portFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "port",
		Usage:   "HTTP listen port",
		Sources: cli.EnvVars("PORT"),
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Serve stored snapshots and changes over HTTP",
		Description: `Start the read-only HTTP API:

  GET /v1/dates                    stored snapshot dates
  GET /v1/snapshots/{date}         one snapshot (?format=json|yaml)
  GET /v1/changes                  comparison (?current=&previous=&fields=&format=)
  GET /health, /ready, /metrics`,
		Flags: []cli.Flag{portFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			return newServer(e).Start(ctx)
		},
	}
}

func scheduleCmd() *cli.Command {
	return &cli.Command{
		Name:                  "schedule",
		EnableShellCompletion: true,
		Usage:                 "Run the daily, weekly and monthly jobs until interrupted",
		Description: `Run as a long-lived process:

  daily    collect the inventory and report the day's changes
  weekly   summarise the last 7 days
  monthly  summarise the last 31 days

Times come from the [schedule] settings and are interpreted in its
timezone. The HTTP API is served alongside unless --no-server is given.`,
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "run-now",
				Usage: "run the daily job once before waiting for the schedule",
			},
			&cli.BoolFlag{
				Name:  "no-server",
				Usage: "do not start the HTTP API",
			},
			portFlag(),
		}, reportFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(ctx, cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			o, err := e.newOrchestrator(true)
			if err != nil {
				return err
			}

			loc, err := time.LoadLocation(e.cfg.Schedule.Timezone)
			if err != nil {
				return fmt.Errorf("invalid schedule timezone %q: %w", e.cfg.Schedule.Timezone, err)
			}
			jobs, err := scheduledJobs(e.cfg, o)
			if err != nil {
				return err
			}

			if cmd.Bool("run-now") {
				if _, err := collectAndReport(ctx, o, false); err != nil {
					e.logger.Error("initial run failed", "error", err)
				}
			}

			runner := scheduler.NewRunner(jobs,
				scheduler.WithLogger(e.logger),
				scheduler.WithLocation(loc))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				ticker := time.NewTicker(defaults.SchedulerTick)
				defer ticker.Stop()
				return runner.Run(gctx, ticker.C)
			})
			if !cmd.Bool("no-server") {
				srv := newServer(e)
				g.Go(func() error {
					return srv.Start(gctx)
				})
			}
			return g.Wait()
		},
	}
}

// scheduledJobs builds the daily, weekly and monthly jobs from cfg.
func scheduledJobs(cfg *config.Config, o *orchestrator.Orchestrator) ([]scheduler.Job, error) {
	daily, err := scheduler.Daily(cfg.Schedule.DailyAt)
	if err != nil {
		return nil, fmt.Errorf("invalid daily schedule: %w", err)
	}
	weekly, err := scheduler.Weekly(cfg.Schedule.WeeklyDay, cfg.Schedule.WeeklyAt)
	if err != nil {
		return nil, fmt.Errorf("invalid weekly schedule: %w", err)
	}
	monthly, err := scheduler.Monthly(cfg.Schedule.MonthlyDay, cfg.Schedule.MonthlyAt)
	if err != nil {
		return nil, fmt.Errorf("invalid monthly schedule: %w", err)
	}

	return []scheduler.Job{
		{
			Name:     "daily",
			Schedule: daily,
			Run: func(ctx context.Context) error {
				_, err := collectAndReport(ctx, o, false)
				return err
			},
		},
		{
			Name:     "weekly",
			Schedule: weekly,
			Run: func(ctx context.Context) error {
				_, err := o.PeriodReport(ctx, "weekly", defaults.WeeklyPeriodDays)
				return err
			},
		},
		{
			Name:     "monthly",
			Schedule: monthly,
			Run: func(ctx context.Context) error {
				_, err := o.PeriodReport(ctx, "monthly", defaults.MonthlyPeriodDays)
				return err
			},
		},
	}, nil
}

func newServer(e *env) *server.Server {
	sc := server.NewConfig()
	sc.Name = name
	sc.Version = version
	sc.Address = e.cfg.Server.Address
	sc.Port = e.cfg.Server.Port
	sc.RateLimit = rate.Limit(e.cfg.Server.RateLimit)
	sc.RateLimitBurst = e.cfg.Server.RateBurst

	return server.New(sc, e.store,
		server.WithFields(e.cfg.Report.Fields...),
		server.WithLogger(e.logger))
}
