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

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS collections (
	collection_date DATE PRIMARY KEY,
	host_count INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS hosts_history (
	id BIGSERIAL PRIMARY KEY,
	host_id TEXT NOT NULL,
	hostname TEXT NOT NULL,
	ip_address TEXT,
	host_groups TEXT,
	templates TEXT,
	position INTEGER NOT NULL,
	collection_date DATE NOT NULL REFERENCES collections (collection_date) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_hosts_history_date ON hosts_history (collection_date);
`

// PostgresStore keeps one hosts_history row per host per collection date.
// The collections table records which dates exist, so an empty inventory
// is still a stored snapshot.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore connects to dsn and creates the schema when missing.
func NewPostgresStore(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(defaults.StoreConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, defaults.StoreOpenTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(pingCtx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug("postgres store ready")
	return &PostgresStore{db: db, logger: logger}, nil
}

// Save replaces the rows for snap.Date inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap *host.Snapshot) (err error) {
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !stderrors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", "date", snap.Date, "error", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM collections WHERE collection_date = $1`, snap.Date); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", snap.Date, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO collections (collection_date, host_count) VALUES ($1, $2)`,
		snap.Date, len(snap.Records)); err != nil {
		return fmt.Errorf("failed to insert collection %s: %w", snap.Date, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("hosts_history",
		"host_id", "hostname", "ip_address", "host_groups", "templates", "position", "collection_date"))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}
	for i, r := range snap.Records {
		groups, gerr := encodeSet(r.Groups)
		if gerr != nil {
			_ = stmt.Close()
			return gerr
		}
		templates, terr := encodeSet(r.Templates)
		if terr != nil {
			_ = stmt.Close()
			return terr
		}
		if _, err = stmt.ExecContext(ctx, r.HostID, r.Name, r.IPAddress, groups, templates, i, snap.Date); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("failed to copy host %s: %w", r.HostID, err)
		}
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot %s: %w", snap.Date, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, date string) (*host.Snapshot, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	ok, err := s.Exists(ctx, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(date, "for")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT host_id, hostname, COALESCE(ip_address, ''), COALESCE(host_groups, ''), COALESCE(templates, '')
		FROM hosts_history
		WHERE collection_date = $1
		ORDER BY position`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %s: %w", date, err)
	}
	defer rows.Close()

	snap := &host.Snapshot{Date: date, Records: []host.Record{}}
	for rows.Next() {
		var r host.Record
		var groups, templates string
		if err := rows.Scan(&r.HostID, &r.Name, &r.IPAddress, &groups, &templates); err != nil {
			return nil, fmt.Errorf("failed to scan host: %w", err)
		}
		if r.Groups, err = decodeSet(groups); err != nil {
			return nil, err
		}
		if r.Templates, err = decodeSet(templates); err != nil {
			return nil, err
		}
		snap.Records = append(snap.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", date, err)
	}
	return snap, nil
}

func (s *PostgresStore) MostRecentBefore(ctx context.Context, date string) (*host.Snapshot, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	var prev string
	err := s.db.QueryRowContext(ctx, `
		SELECT to_char(collection_date, 'YYYY-MM-DD')
		FROM collections
		WHERE collection_date < $1
		ORDER BY collection_date DESC
		LIMIT 1`, date).Scan(&prev)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(date, "before")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query previous snapshot: %w", err)
	}
	return s.Load(ctx, prev)
}

func (s *PostgresStore) Dates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(collection_date, 'YYYY-MM-DD')
		FROM collections
		ORDER BY collection_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *PostgresStore) Exists(ctx context.Context, date string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM collections WHERE collection_date = $1)`, date).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot %s: %w", date, err)
	}
	return ok, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// encodeSet stores a set column as a JSON array; an empty set is NULL.
func encodeSet(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode set: %w", err)
	}
	return string(b), nil
}

func decodeSet(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("failed to decode set %q: %w", s, err)
	}
	return out, nil
}

