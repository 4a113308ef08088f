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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/zbxdiff/zbxdiff/pkg/config"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/report"
	"github.com/zbxdiff/zbxdiff/pkg/serializer"
	"github.com/zbxdiff/zbxdiff/pkg/store"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "INI configuration file",
		Sources: cli.EnvVars("ZBXDIFF_CONFIG"),
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "log level (debug, info, warn, error)",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}
}

func storageDriverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "storage-driver",
		Usage: fmt.Sprintf("snapshot store (%s, %s, %s)", store.DriverBadger, store.DriverPostgres, store.DriverMemory),
	}
}

func dbPathFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "db-path",
		Usage: "badger snapshot directory",
	}
}

func dbDSNFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "db-dsn",
		Usage: "postgres connection string",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatJSON),
		Usage:   fmt.Sprintf("output format (%s)", strings.Join(serializer.SupportedFormats(), ", ")),
	}
}

func overwriteFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "overwrite",
		Usage: "replace a snapshot already stored for the date",
	}
}

// reportFlags configure rendering and delivery.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "reports-dir",
			Usage: "directory report files are written to",
		},
		&cli.StringFlag{
			Name:    "report-format",
			Aliases: []string{"f"},
			Usage:   "comma separated report formats (html, text, json, yaml, both)",
		},
		&cli.StringFlag{
			Name:  "fields",
			Usage: fmt.Sprintf("comma separated tracked fields (%s)", host.SupportedFields()),
		},
		&cli.BoolFlag{
			Name:  "no-email",
			Usage: "skip email delivery",
		},
		&cli.StringSliceFlag{
			Name:  "recipient",
			Usage: "email recipient, can be repeated (replaces configured recipients)",
		},
	}
}

// loadConfig resolves the configuration and applies flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), nil)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) error {
	set := cmd.IsSet

	if set("storage-driver") {
		cfg.Storage.Driver = cmd.String("storage-driver")
	}
	if set("db-path") {
		cfg.Storage.Path = cmd.String("db-path")
	}
	if set("db-dsn") {
		cfg.Storage.DSN = cmd.String("db-dsn")
	}
	if set("reports-dir") {
		cfg.Report.Dir = cmd.String("reports-dir")
	}
	if set("report-format") {
		formats, err := report.ParseFormats(cmd.String("report-format"))
		if err != nil {
			return err
		}
		cfg.Report.Formats = formats
	}
	if set("fields") {
		fields, err := host.ParseFields(cmd.String("fields"))
		if err != nil {
			return err
		}
		cfg.Report.Fields = fields
	}
	if set("recipient") {
		cfg.Email.Recipients = cmd.StringSlice("recipient")
	}
	if set("no-email") && cmd.Bool("no-email") {
		cfg.Email.Enabled = false
	}
	if set("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}
	return nil
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// newOutput returns the serializer for --output, defaulting to the
// command's writer.
func newOutput(cmd *cli.Command) (serializer.Serializer, error) {
	f, err := parseOutputFormat(cmd)
	if err != nil {
		return nil, err
	}
	if path := cmd.String("output"); path != "" {
		return serializer.NewFileWriterOrStdout(f, path), nil
	}
	return serializer.NewWriter(f, writerOf(cmd)), nil
}

func writerOf(cmd *cli.Command) io.Writer {
	if cmd != nil {
		if w := cmd.Root().Writer; w != nil {
			return w
		}
	}
	return os.Stdout
}
