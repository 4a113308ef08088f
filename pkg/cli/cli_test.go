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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/zbxdiff/zbxdiff/pkg/config"
	zerrors "github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/report"
	"github.com/zbxdiff/zbxdiff/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{name: "yaml", format: "yaml", wantFormat: serializer.FormatYAML},
		{name: "json", format: "json", wantFormat: serializer.FormatJSON},
		{name: "table", format: "table", wantFormat: serializer.FormatTable},
		{name: "invalid xml", format: "xml", wantErr: true},
		{name: "empty", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Value: tt.format,
					},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if (err != nil) != tt.wantErr {
						t.Errorf("parseOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
						return nil
					}
					if !tt.wantErr && got != tt.wantFormat {
						t.Errorf("parseOutputFormat() = %v, want %v", got, tt.wantFormat)
					}
					return nil
				},
			}

			if err := cmd.Run(context.Background(), []string{"test"}); err != nil {
				t.Fatalf("failed to run command: %v", err)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "exit coder", err: cli.Exit("boom", 3), want: 3},
		{name: "canceled", err: context.Canceled, want: 2},
		{name: "deadline", err: zerrors.Wrap(zerrors.ErrCodeTimeout, "slow", context.DeadlineExceeded), want: 2},
		{name: "other", err: errors.New("boom"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestApplyFlags(t *testing.T) {
	var got *config.Config
	cmd := &cli.Command{
		Flags: append([]cli.Flag{storageDriverFlag(), dbPathFlag(), dbDSNFlag(), portFlag()}, reportFlags()...),
		Action: func(_ context.Context, c *cli.Command) error {
			got = config.Default()
			got.Email.Enabled = true
			return applyFlags(c, got)
		},
	}

	err := cmd.Run(context.Background(), []string{"test",
		"--storage-driver", "memory",
		"--db-path", "/tmp/x",
		"--reports-dir", "out",
		"--report-format", "both",
		"--fields", "groups,name",
		"--recipient", "a@example.com",
		"--recipient", "b@example.com",
		"--no-email",
		"--port", "9090",
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "memory", got.Storage.Driver)
	assert.Equal(t, "/tmp/x", got.Storage.Path)
	assert.Equal(t, "out", got.Report.Dir)
	assert.Equal(t, []report.Format{report.FormatHTML, report.FormatText}, got.Report.Formats)
	assert.Equal(t, []host.Field{host.FieldName, host.FieldGroups}, got.Report.Fields)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, got.Email.Recipients)
	assert.False(t, got.Email.Enabled)
	assert.Equal(t, 9090, got.Server.Port)
}

func TestApplyFlagsKeepsUnset(t *testing.T) {
	var got *config.Config
	cmd := &cli.Command{
		Flags: append([]cli.Flag{storageDriverFlag(), dbPathFlag()}, reportFlags()...),
		Action: func(_ context.Context, c *cli.Command) error {
			got = config.Default()
			return applyFlags(c, got)
		},
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
	assert.Equal(t, config.Default(), got)
}

func TestApplyFlagsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "report format", args: []string{"--report-format", "pdf"}},
		{name: "fields", args: []string{"--fields", "serial"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: reportFlags(),
				Action: func(_ context.Context, c *cli.Command) error {
					return applyFlags(c, config.Default())
				},
			}
			assert.Error(t, cmd.Run(context.Background(), append([]string{"test"}, tt.args...)))
		})
	}
}

func TestCommandLister(t *testing.T) {
	var buf bytes.Buffer
	root := &cli.Command{
		Name:   "root",
		Writer: &buf,
		Commands: []*cli.Command{
			{Name: "visible"},
			{Name: "secret", Hidden: true},
			{Name: "other"},
		},
	}
	commandLister(context.Background(), root)
	assert.Equal(t, "visible\nother\n", buf.String())

	buf.Reset()
	commandLister(context.Background(), &cli.Command{Name: "leaf", Writer: &buf})
	assert.Empty(t, buf.String())
}

func TestPeriodDays(t *testing.T) {
	assert.Equal(t, 7, periodDays("weekly"))
	assert.Equal(t, 31, periodDays("monthly"))
	assert.Equal(t, 7, periodDays("custom"))
}

func TestCheckSnapshot(t *testing.T) {
	snap := host.NewSnapshot("2025-01-02", []host.Record{
		{HostID: "10", Name: "web-b"},
		{HostID: "2", Name: "db"},
		{HostID: "10", Name: "web-a"},
		{HostID: "3", Name: "x"},
		{HostID: "3", Name: "y"},
		{HostID: "3", Name: "z"},
	})

	res := checkSnapshot(snap)
	assert.Equal(t, "2025-01-02", res.Date)
	assert.Equal(t, 6, res.Hosts)
	assert.Equal(t, []DuplicateHost{
		{HostID: "3", Count: 3, Names: []string{"x", "y", "z"}},
		{HostID: "10", Count: 2, Names: []string{"web-a", "web-b"}},
	}, res.Duplicates)

	clean := checkSnapshot(host.NewSnapshot("2025-01-01", []host.Record{{HostID: "1"}}))
	assert.Empty(t, clean.Duplicates)
}

func TestReadSnapshot(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantLen int
		wantErr bool
	}{
		{
			name:    "json",
			file:    "s.json",
			content: `{"date":"2025-01-01","hosts":[{"host_id":"1","name":"a","ip_address":"10.0.0.1","groups":["g"]}]}`,
			wantLen: 1,
		},
		{
			name:    "yaml",
			file:    "s.yaml",
			content: "date: \"2025-01-01\"\nhosts:\n  - host_id: \"1\"\n    name: a\n  - host_id: \"2\"\n    name: b\n",
			wantLen: 2,
		},
		{
			name:    "missing hosts",
			file:    "bad.json",
			content: `{"date":"2025-01-01"}`,
			wantErr: true,
		},
		{
			name:    "bad date",
			file:    "date.json",
			content: `{"date":"01/01/2025","hosts":[]}`,
			wantErr: true,
		},
		{
			name:    "empty host id",
			file:    "id.json",
			content: `{"date":"2025-01-01","hosts":[{"host_id":"","name":"a"}]}`,
			wantErr: true,
		},
		{
			name:    "malformed",
			file:    "broken.json",
			content: `{"date":`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(p, []byte(tt.content), 0o600))

			snap, err := readSnapshot(context.Background(), p)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, zerrors.ErrCodeInvalidRequest, zerrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2025-01-01", snap.Date)
			assert.Equal(t, tt.wantLen, snap.Len())
		})
	}

	_, err := readSnapshot(context.Background(), filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestReadSnapshotURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("date: \"2025-01-05\"\nhosts:\n  - host_id: \"7\"\n    name: edge\n"))
	}))
	defer srv.Close()

	snap, err := readSnapshot(context.Background(), srv.URL+"/snapshot.yaml",
		serializer.WithTotalTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", snap.Date)
	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "edge", snap.Records[0].Name)
}

// runCLI executes the root command against a badger store in dbDir.
func runCLI(t *testing.T, dbDir string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd()
	root.Writer = &buf
	root.ErrWriter = &buf
	full := append([]string{name, "--log-level", "error", "--db-path", dbDir}, args...)
	err := root.Run(context.Background(), full)
	return buf.String(), err
}

func writeDoc(t *testing.T, dir, file string, snap *host.Snapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	p := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestEndToEnd(t *testing.T) {
	t.Setenv("SEND_EMAIL", "false")
	work := t.TempDir()
	db := filepath.Join(work, "db")
	reports := filepath.Join(work, "reports")

	day1 := writeDoc(t, work, "day1.json", host.NewSnapshot("2025-01-01", []host.Record{
		{HostID: "1", Name: "web", IPAddress: "10.0.0.1", Groups: []string{"linux"}},
		{HostID: "2", Name: "db", IPAddress: "10.0.0.2", Groups: []string{"linux"}},
	}))
	day2 := writeDoc(t, work, "day2.json", host.NewSnapshot("2025-01-02", []host.Record{
		{HostID: "2", Name: "db", IPAddress: "10.0.0.20", Groups: []string{"linux"}},
		{HostID: "3", Name: "cache", IPAddress: "10.0.0.3", Groups: []string{"linux"}},
	}))

	out, err := runCLI(t, db, "import", "--file", day1)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 hosts for 2025-01-01")

	_, err = runCLI(t, db, "import", "--file", day2)
	require.NoError(t, err)

	t.Run("import conflict", func(t *testing.T) {
		_, err := runCLI(t, db, "import", "--file", day2)
		require.Error(t, err)
		assert.Equal(t, zerrors.ErrCodeConflict, zerrors.CodeOf(err))

		_, err = runCLI(t, db, "import", "--file", day2, "--overwrite")
		assert.NoError(t, err)
	})

	t.Run("dates", func(t *testing.T) {
		out, err := runCLI(t, db, "dates")
		require.NoError(t, err)

		var res DatesResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, []string{"2025-01-02", "2025-01-01"}, res.Dates)
		assert.Equal(t, 2, res.Count)
	})

	t.Run("check clean", func(t *testing.T) {
		out, err := runCLI(t, db, "check", "--fail-on-duplicates")
		require.NoError(t, err)

		var res []CheckResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		require.Len(t, res, 2)
		assert.Empty(t, res[0].Duplicates)
	})

	t.Run("report", func(t *testing.T) {
		out, err := runCLI(t, db, "report",
			"--current", "2025-01-02",
			"--reports-dir", reports,
			"--report-format", "text",
			"--no-email")
		require.NoError(t, err)
		assert.Contains(t, out, "Daily 2025-01-02: 1 added, 1 removed, 1 modified, 0 unchanged")

		entries, err := os.ReadDir(reports)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("report missing", func(t *testing.T) {
		_, err := runCLI(t, db, "report", "--current", "2024-12-01", "--no-email")
		require.Error(t, err)
		assert.Equal(t, zerrors.ErrCodeMissingSnapshot, zerrors.CodeOf(err))
	})

	t.Run("check duplicates", func(t *testing.T) {
		dup := writeDoc(t, work, "dup.json", host.NewSnapshot("2025-01-03", []host.Record{
			{HostID: "5", Name: "a"},
			{HostID: "5", Name: "b"},
		}))
		_, err := runCLI(t, db, "import", "--file", dup)
		require.NoError(t, err)

		out, err := runCLI(t, db, "check", "--date", "2025-01-03", "--fail-on-duplicates")
		require.Error(t, err)
		assert.Equal(t, 1, exitCode(err))
		assert.Contains(t, out, `"host_id": "5"`)
	})
}
