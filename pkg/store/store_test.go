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
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
)

const envPostgresDSN = "ZBXDIFF_TEST_POSTGRES_DSN"

func testSnapshot(date string, ids ...string) *host.Snapshot {
	records := make([]host.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, host.Record{
			HostID:    id,
			Name:      "host-" + id,
			IPAddress: "10.0.0." + id,
			Groups:    []string{"linux", "web"},
			Templates: []string{"ICMP Ping"},
		})
	}
	return host.NewSnapshot(date, records)
}

// storeFactories returns every backend available in this environment.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	factories := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"badger": func(t *testing.T) Store {
			st, err := NewBadgerStore(filepath.Join(t.TempDir(), "db"))
			require.NoError(t, err)
			return st
		},
		"badger in memory": func(t *testing.T) Store {
			st, err := NewBadgerStore("", WithInMemory())
			require.NoError(t, err)
			return st
		},
		"cached": func(t *testing.T) Store {
			st, err := NewCachedStore(NewMemoryStore(), 2)
			require.NoError(t, err)
			return st
		},
	}
	if dsn := os.Getenv(envPostgresDSN); dsn != "" {
		factories["postgres"] = func(t *testing.T) Store {
			st, err := NewPostgresStore(context.Background(), dsn, nil)
			require.NoError(t, err)
			_, err = st.db.Exec(`TRUNCATE collections CASCADE`)
			require.NoError(t, err)
			return st
		}
	}
	return factories
}

func TestStore_Contract(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			st := factory(t)
			defer st.Close()

			t.Run("empty", func(t *testing.T) {
				dates, err := st.Dates(ctx)
				require.NoError(t, err)
				assert.Empty(t, dates)

				_, err = st.Load(ctx, "2025-01-01")
				assert.True(t, IsNotFound(err))
				assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

				_, err = st.MostRecentBefore(ctx, "2025-01-01")
				assert.ErrorIs(t, err, ErrNotFound)

				ok, err := st.Exists(ctx, "2025-01-01")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("round trip", func(t *testing.T) {
				want := testSnapshot("2025-01-02", "3", "1", "2")
				require.NoError(t, st.Save(ctx, want))

				got, err := st.Load(ctx, "2025-01-02")
				require.NoError(t, err)
				assert.Equal(t, want, got)

				ok, err := st.Exists(ctx, "2025-01-02")
				require.NoError(t, err)
				assert.True(t, ok)
			})

			t.Run("save overwrites", func(t *testing.T) {
				require.NoError(t, st.Save(ctx, testSnapshot("2025-01-02", "9")))
				got, err := st.Load(ctx, "2025-01-02")
				require.NoError(t, err)
				assert.Equal(t, []string{"9"}, got.IDs())
			})

			t.Run("empty snapshot is stored", func(t *testing.T) {
				require.NoError(t, st.Save(ctx, host.NewSnapshot("2024-12-31", nil)))
				got, err := st.Load(ctx, "2024-12-31")
				require.NoError(t, err)
				assert.Equal(t, 0, got.Len())
			})

			t.Run("dates and previous", func(t *testing.T) {
				require.NoError(t, st.Save(ctx, testSnapshot("2025-01-05", "1")))

				dates, err := st.Dates(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"2025-01-05", "2025-01-02", "2024-12-31"}, dates)

				prev, err := st.MostRecentBefore(ctx, "2025-01-05")
				require.NoError(t, err)
				assert.Equal(t, "2025-01-02", prev.Date)

				prev, err = st.MostRecentBefore(ctx, "2025-01-04")
				require.NoError(t, err)
				assert.Equal(t, "2025-01-02", prev.Date)

				prev, err = st.MostRecentBefore(ctx, "2025-02-01")
				require.NoError(t, err)
				assert.Equal(t, "2025-01-05", prev.Date)

				_, err = st.MostRecentBefore(ctx, "2024-12-31")
				assert.True(t, IsNotFound(err))
			})

			t.Run("invalid input", func(t *testing.T) {
				err := st.Save(ctx, nil)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

				err = st.Save(ctx, host.NewSnapshot("01/02/2025", nil))
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

				_, err = st.MostRecentBefore(ctx, "yesterday")
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
			})

			t.Run("loaded snapshot is a copy", func(t *testing.T) {
				got, err := st.Load(ctx, "2025-01-05")
				require.NoError(t, err)
				got.Records[0].Name = "changed"

				again, err := st.Load(ctx, "2025-01-05")
				require.NoError(t, err)
				assert.Equal(t, "host-1", again.Records[0].Name)
			})
		})
	}
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := NewMemoryStore()
	assert.ErrorIs(t, st.Save(ctx, testSnapshot("2025-01-01", "1")), context.Canceled)
	_, err := st.Load(ctx, "2025-01-01")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadgerStore_Persists(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "db")

	st, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, testSnapshot("2025-01-01", "1", "2")))
	require.NoError(t, st.Close())

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, got.IDs())
}

func TestBadgerStore_Compresses(t *testing.T) {
	st, err := NewBadgerStore("", WithInMemory())
	require.NoError(t, err)
	defer st.Close()

	ids := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		ids = append(ids, "1")
	}
	snap := testSnapshot("2025-01-01", ids...)
	encoded, err := st.encode(snap)
	require.NoError(t, err)

	decoded, err := st.decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, snap, decoded)
	assert.Less(t, len(encoded), 2000)
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	st, err := NewCachedStore(inner, 1)
	require.NoError(t, err)

	require.NoError(t, st.Save(ctx, testSnapshot("2025-01-01", "1")))
	_, err = st.Load(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())

	// a save through the cache invalidates the entry
	require.NoError(t, st.Save(ctx, testSnapshot("2025-01-01", "2")))
	assert.Equal(t, 0, st.Len())
	got, err := st.Load(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, got.IDs())

	// misses are not cached
	_, err = st.Load(ctx, "2030-01-01")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, st.Len())

	_, err = NewCachedStore(inner, 0)
	assert.Error(t, err)
}

// pausingStore blocks the first Load after it has read from the wrapped
// store until release is closed.
type pausingStore struct {
	Store
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (p *pausingStore) Load(ctx context.Context, date string) (*host.Snapshot, error) {
	snap, err := p.Store.Load(ctx, date)
	p.once.Do(func() {
		close(p.loaded)
		<-p.release
	})
	return snap, err
}

func TestCachedStoreSaveDuringLoad(t *testing.T) {
	ctx := context.Background()
	inner := &pausingStore{
		Store:   NewMemoryStore(),
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}
	require.NoError(t, inner.Store.Save(ctx, testSnapshot("2025-01-01", "1")))

	st, err := NewCachedStore(inner, 4)
	require.NoError(t, err)

	loadDone := make(chan error, 1)
	go func() {
		_, err := st.Load(ctx, "2025-01-01")
		loadDone <- err
	}()
	<-inner.loaded

	saveDone := make(chan error, 1)
	go func() {
		saveDone <- st.Save(ctx, testSnapshot("2025-01-01", "2"))
	}()

	select {
	case <-saveDone:
		t.Fatal("save completed while a cache fill was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(inner.release)
	require.NoError(t, <-loadDone)
	require.NoError(t, <-saveDone)

	got, err := st.Load(ctx, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, got.IDs())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		check   func(t *testing.T, st Store)
	}{
		{
			name: "memory",
			cfg:  Config{Driver: DriverMemory},
			check: func(t *testing.T, st Store) {
				assert.IsType(t, &MemoryStore{}, st)
			},
		},
		{
			name: "memory with cache",
			cfg:  Config{Driver: DriverMemory, CacheSize: 4},
			check: func(t *testing.T, st Store) {
				assert.IsType(t, &CachedStore{}, st)
			},
		},
		{
			name: "badger default driver",
			cfg:  Config{Path: filepath.Join(t.TempDir(), "db")},
			check: func(t *testing.T, st Store) {
				assert.IsType(t, &BadgerStore{}, st)
			},
		},
		{name: "badger without path", cfg: Config{Driver: DriverBadger}, wantErr: true},
		{name: "postgres without dsn", cfg: Config{Driver: DriverPostgres}, wantErr: true},
		{name: "unknown driver", cfg: Config{Driver: "sqlite"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Open(ctx, tt.cfg, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			defer st.Close()
			tt.check(t, st)
		})
	}
}

func TestSetEncoding(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "empty", in: []string{}, want: nil},
		{name: "values", in: []string{"a", "b, c"}, want: `["a","b, c"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeSet(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			s, _ := got.(string)
			back, err := decodeSet(s)
			require.NoError(t, err)
			if len(tt.in) == 0 {
				assert.Nil(t, back)
			} else {
				assert.Equal(t, tt.in, back)
			}
		})
	}

	_, err := decodeSet("not json")
	assert.Error(t, err)
}

func TestLatestBefore(t *testing.T) {
	dates := []string{"2025-01-03", "2025-01-01", "2025-01-05"}
	got, ok := latestBefore(dates, "2025-01-05")
	assert.True(t, ok)
	assert.Equal(t, "2025-01-03", got)

	_, ok = latestBefore(dates, "2025-01-01")
	assert.False(t, ok)
}
