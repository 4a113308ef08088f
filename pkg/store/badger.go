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
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/zbxdiff/zbxdiff/pkg/host"
)

const snapshotKeyPrefix = "snapshot:"

// BadgerStore stores each snapshot as zstd-compressed JSON under
// "snapshot:<date>".
type BadgerStore struct {
	db  *badger.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// BadgerOption configures NewBadgerStore.
type BadgerOption func(*badger.Options)

// WithInMemory keeps all data in memory. Path is ignored.
func WithInMemory() BadgerOption {
	return func(o *badger.Options) {
		*o = o.WithInMemory(true).WithDir("").WithValueDir("")
	}
}

// WithBadgerLogger routes badger's internal logging to logger.
func WithBadgerLogger(logger *slog.Logger) BadgerOption {
	return func(o *badger.Options) {
		if logger == nil {
			*o = o.WithLogger(nil)
			return
		}
		*o = o.WithLogger(&badgerLogger{logger: logger.With("component", "badger")})
	}
}

// NewBadgerStore opens (or creates) a badger database at path.
func NewBadgerStore(path string, opts ...BadgerOption) (*BadgerStore, error) {
	bo := badger.DefaultOptions(filepath.Clean(path)).
		WithLogger(nil).
		WithValueLogFileSize(16 << 20)
	for _, o := range opts {
		o(&bo)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", path, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &BadgerStore{db: db, enc: enc, dec: dec}, nil
}

func snapshotKey(date string) []byte {
	return []byte(snapshotKeyPrefix + date)
}

func (s *BadgerStore) encode(snap *host.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot %s: %w", snap.Date, err)
	}
	return s.enc.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

func (s *BadgerStore) decode(v []byte) (*host.Snapshot, error) {
	data, err := s.dec.DecodeAll(v, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	var snap host.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *BadgerStore) Save(ctx context.Context, snap *host.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	data, err := s.encode(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(snap.Date), data)
	})
}

func (s *BadgerStore) Load(ctx context.Context, date string) (*host.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *host.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(date))
		if err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return notFound(date, "for")
			}
			return err
		}
		return item.Value(func(v []byte) error {
			snap, err := s.decode(v)
			out = snap
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) MostRecentBefore(ctx context.Context, date string) (*host.Snapshot, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	dates, err := s.Dates(ctx)
	if err != nil {
		return nil, err
	}
	prev, ok := latestBefore(dates, date)
	if !ok {
		return nil, notFound(date, "before")
	}
	return s.Load(ctx, prev)
}

func (s *BadgerStore) Dates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var dates []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			dates = append(dates, strings.TrimPrefix(key, snapshotKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}
	return sortDescending(dates), nil
}

func (s *BadgerStore) Exists(ctx context.Context, date string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(snapshotKey(date))
		switch {
		case err == nil:
			found = true
			return nil
		case stderrors.Is(err, badger.ErrKeyNotFound):
			return nil
		default:
			return err
		}
	})
	return found, err
}

func (s *BadgerStore) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		_ = s.db.Close()
		return err
	}
	return s.db.Close()
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
