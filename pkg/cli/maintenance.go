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
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/serializer"
)

// DatesResult lists stored snapshot dates, newest first.
type DatesResult struct {
	Dates []string `json:"dates" yaml:"dates"`
	Count int      `json:"count" yaml:"count"`
}

// DuplicateHost is a host id stored more than once in a snapshot.
type DuplicateHost struct {
	HostID string   `json:"host_id" yaml:"host_id"`
	Count  int      `json:"count" yaml:"count"`
	Names  []string `json:"names" yaml:"names"`
}

// CheckResult is the integrity report of one snapshot.
type CheckResult struct {
	Date       string          `json:"date" yaml:"date"`
	Hosts      int             `json:"hosts" yaml:"hosts"`
	Duplicates []DuplicateHost `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

func datesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "dates",
		EnableShellCompletion: true,
		Usage:                 "List stored snapshot dates",
		Flags:                 []cli.Flag{outputFlag(), formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			dates, err := e.store.Dates(ctx)
			if err != nil {
				return err
			}
			if dates == nil {
				dates = []string{}
			}
			return writeOutput(ctx, cmd, DatesResult{Dates: dates, Count: len(dates)})
		},
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:                  "check",
		EnableShellCompletion: true,
		Usage:                 "Scan stored snapshots for duplicate host ids",
		Description: `Comparisons refuse snapshots in which a host id appears more than once.
check lists such ids for one date (--date) or every stored snapshot.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "snapshot date to check (default: all)",
			},
			&cli.BoolFlag{
				Name:  "fail-on-duplicates",
				Usage: "exit with status 1 when duplicates are found",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := newEnv(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			dates := []string{}
			if d := cmd.String("date"); d != "" {
				d, err = host.ParseDate(d)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --date", err)
				}
				dates = append(dates, d)
			} else if dates, err = e.store.Dates(ctx); err != nil {
				return err
			}

			results := make([]CheckResult, 0, len(dates))
			found := 0
			for _, d := range dates {
				snap, err := e.store.Load(ctx, d)
				if err != nil {
					return err
				}
				res := checkSnapshot(snap)
				found += len(res.Duplicates)
				results = append(results, res)
			}

			if err := writeOutput(ctx, cmd, results); err != nil {
				return err
			}
			if found > 0 && cmd.Bool("fail-on-duplicates") {
				return cli.Exit(fmt.Sprintf("found %d duplicate host ids", found), 1)
			}
			return nil
		},
	}
}

func checkSnapshot(snap *host.Snapshot) CheckResult {
	res := CheckResult{Date: snap.Date, Hosts: snap.Len()}
	dups := snap.DuplicateIDs()
	if len(dups) == 0 {
		return res
	}

	names := make(map[string][]string, len(dups))
	for _, r := range snap.Records {
		if _, ok := dups[r.HostID]; ok {
			names[r.HostID] = append(names[r.HostID], r.Name)
		}
	}
	for _, id := range host.SortedIDs(dups) {
		n := names[id]
		sort.Strings(n)
		res.Duplicates = append(res.Duplicates, DuplicateHost{HostID: id, Count: dups[id], Names: n})
	}
	return res
}

func importCmd() *cli.Command {
	return &cli.Command{
		Name:                  "import",
		EnableShellCompletion: true,
		Usage:                 "Load a snapshot document into the store",
		Description: `Read a JSON or YAML snapshot document from a file or http(s) URL,
validate it and store it. The document is an object with "date" and
"hosts" keys, as written by "zbxdiff serve" at /v1/snapshots/{date}.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "snapshot document path or URL (.json, .yaml)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "store under this date instead of the document's",
			},
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "skip TLS verification when --file is an https URL",
			},
			overwriteFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			snap, err := readSnapshot(ctx, cmd.String("file"),
				serializer.WithTotalTimeout(defaults.CollectorTimeout),
				serializer.WithInsecureSkipVerify(cmd.Bool("insecure")))
			if err != nil {
				return err
			}
			if d := cmd.String("date"); d != "" {
				if snap.Date, err = host.ParseDate(d); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid --date", err)
				}
			}

			e, err := newEnv(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			exists, err := e.store.Exists(ctx, snap.Date)
			if err != nil {
				return err
			}
			if exists && !cmd.Bool("overwrite") {
				return errors.NewWithContext(errors.ErrCodeConflict,
					fmt.Sprintf("snapshot for %s already stored, use --overwrite to replace it", snap.Date),
					map[string]any{"date": snap.Date})
			}
			if dups := snap.DuplicateIDs(); len(dups) > 0 {
				e.logger.Warn("imported snapshot has duplicate host ids",
					"date", snap.Date, "ids", host.SortedIDs(dups))
			}
			if err := e.store.Save(ctx, snap); err != nil {
				return err
			}
			fmt.Fprintf(writerOf(cmd), "imported %d hosts for %s\n", snap.Len(), snap.Date)
			return nil
		},
	}
}

// readSnapshot loads and validates a snapshot document.
func readSnapshot(ctx context.Context, path string, opts ...serializer.HttpReaderOption) (*host.Snapshot, error) {
	data, err := serializer.ReadSource(ctx, path, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to read snapshot document", err)
	}

	f := serializer.FormatFromPath(path)
	doc := data
	if f == serializer.FormatYAML {
		var raw any
		if err := serializer.Unmarshal(f, data, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse snapshot document", err)
		}
		if doc, err = json.Marshal(raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse snapshot document", err)
		}
	}
	if err := host.ValidateJSON(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid snapshot document", err)
	}

	parsed, err := serializer.FromBytes[host.Snapshot](serializer.FormatJSON, doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse snapshot document", err)
	}
	date, err := host.ParseDate(parsed.Date)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid snapshot date", err)
	}
	return host.NewSnapshot(date, parsed.Records), nil
}

func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	out, err := newOutput(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			slog.Warn("failed to close output", "error", cerr)
		}
	}()
	return out.Serialize(ctx, v)
}
