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
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/orchestrator"
)

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Store the current Zabbix host inventory",
		Description: `Query the Zabbix API for every enabled host and store the result as the
snapshot of a date (today by default).

A date that already has a snapshot is left untouched unless --overwrite
is given.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "snapshot date (YYYY-MM-DD, default: today)",
			},
			overwriteFlag(),
		},
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
			snap, err := o.Collect(ctx, cmd.String("date"), cmd.Bool("overwrite"))
			if err != nil {
				return err
			}
			fmt.Fprintf(writerOf(cmd), "collected %d hosts for %s\n", snap.Len(), snap.Date)
			return nil
		},
	}
}

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "report",
		EnableShellCompletion: true,
		Usage:                 "Compare two snapshots and deliver the change report",
		Description: `Compare the snapshot of --current (default: today) with --previous
(default: the latest snapshot before it) and write, email and publish the
report.

Without any earlier snapshot a baseline report listing every host as
added is produced.`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "current",
				Aliases: []string{"date"},
				Usage:   "reported date (YYYY-MM-DD, default: today)",
			},
			&cli.StringFlag{
				Name:  "previous",
				Usage: "reference date (YYYY-MM-DD, default: latest before current)",
			},
		}, reportFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			o, err := e.newOrchestrator(false)
			if err != nil {
				return err
			}
			res, err := o.Report(ctx, orchestrator.ReportRequest{
				Current:  cmd.String("current"),
				Previous: cmd.String("previous"),
			})
			printResult(cmd, res)
			return err
		},
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run",
		EnableShellCompletion: true,
		Usage:                 "Collect today's inventory, then report",
		Description: `Collect the inventory and report on it in one step. When today's
snapshot already exists and --overwrite is not given, the stored snapshot
is reported.`,
		Flags: append([]cli.Flag{overwriteFlag()}, reportFlags()...),
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
			res, err := collectAndReport(ctx, o, cmd.Bool("overwrite"))
			printResult(cmd, res)
			return err
		},
	}
}

// collectAndReport is the daily job. An existing snapshot is kept.
func collectAndReport(ctx context.Context, o *orchestrator.Orchestrator, overwrite bool) (*orchestrator.Result, error) {
	if _, err := o.Collect(ctx, "", overwrite); err != nil {
		if !errors.Is(err, orchestrator.ErrAlreadyCollected) {
			return nil, err
		}
		slog.Default().Warn("snapshot for today already stored, reporting it as is")
	}
	return o.Report(ctx, orchestrator.ReportRequest{})
}

func periodCmd() *cli.Command {
	return &cli.Command{
		Name:                  "period",
		EnableShellCompletion: true,
		Usage:                 "Summarise changes over the trailing days",
		Description: `Compare every snapshot collected in the last --days days pairwise and
deliver one aggregated report. --name weekly defaults to 7 days and
--name monthly to 31.`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "period name used in the report title (weekly, monthly, ...)",
				Value: "weekly",
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "window length in days (default: 7 for weekly, 31 for monthly)",
			},
		}, reportFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			periodName := cmd.String("name")
			days := int(cmd.Int("days"))
			if days == 0 {
				days = periodDays(periodName)
			}

			e, err := newEnv(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			o, err := e.newOrchestrator(false)
			if err != nil {
				return err
			}
			res, err := o.PeriodReport(ctx, periodName, days)
			printResult(cmd, res)
			return err
		},
	}
}

func periodDays(periodName string) int {
	if periodName == "monthly" {
		return defaults.MonthlyPeriodDays
	}
	return defaults.WeeklyPeriodDays
}

func printResult(cmd *cli.Command, res *orchestrator.Result) {
	if res == nil {
		return
	}
	out := writerOf(cmd)
	s := res.Summary
	fmt.Fprintf(out, "%s: %d added, %d removed, %d modified, %d unchanged (%d hosts, net %+d)\n",
		res.Label, s.Added, s.Removed, s.Modified, s.Unchanged, s.TotalCurrent, s.NetChange)
	for _, f := range res.Files {
		fmt.Fprintf(out, "  report: %s\n", f)
	}
	if res.Emailed {
		fmt.Fprintln(out, "  emailed")
	}
	if res.Published {
		fmt.Fprintln(out, "  published")
	}
}
