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
	"fmt"
	"log/slog"

	"github.com/zbxdiff/zbxdiff/pkg/errors"
)

// Supported storage drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config selects and configures a Store backend.
type Config struct {
	// Driver is one of DriverBadger, DriverPostgres or DriverMemory.
	Driver string

	// Path is the badger data directory.
	Path string

	// DSN is the postgres connection string.
	DSN string

	// CacheSize enables a read-through cache when positive.
	CacheSize int
}

// Open creates the Store described by cfg.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case DriverBadger, "":
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "storage path is required for the badger driver")
		}
		st, err = NewBadgerStore(cfg.Path, WithBadgerLogger(logger))
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest, "storage dsn is required for the postgres driver")
		}
		st, err = NewPostgresStore(ctx, cfg.DSN, logger)
	case DriverMemory:
		st = NewMemoryStore()
	default:
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported storage driver %q", cfg.Driver),
			map[string]any{"supported": []string{DriverBadger, DriverPostgres, DriverMemory}})
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to open store", err)
	}

	if cfg.CacheSize > 0 {
		cached, cerr := NewCachedStore(st, cfg.CacheSize)
		if cerr != nil {
			_ = st.Close()
			return nil, cerr
		}
		st = cached
	}

	logger.Debug("store opened", "driver", cfg.Driver, "cache", cfg.CacheSize)
	return st, nil
}
