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

package defaults

import "time"

// Collector timeouts for Zabbix API operations.
const (
	// CollectorTimeout bounds a full collection run (login, host.get, logout).
	// Collectors respect parent context deadlines when shorter.
	CollectorTimeout = 2 * time.Minute

	// CollectorRequestTimeout is the timeout for a single JSON-RPC call.
	CollectorRequestTimeout = 60 * time.Second
)

// Report and delivery timeouts.
const (
	// ReportTimeout bounds load, compare, render and delivery of one report.
	ReportTimeout = 5 * time.Minute

	// MailSendTimeout is the timeout for a single SMTP delivery.
	MailSendTimeout = 60 * time.Second

	// PublishTimeout is the timeout for publishing a change event.
	PublishTimeout = 10 * time.Second
)

// Storage timeouts.
const (
	// StoreOpenTimeout bounds opening or pinging a snapshot store.
	StoreOpenTimeout = 15 * time.Second

	// StoreConnMaxLifetime is the maximum lifetime of a pooled SQL connection.
	StoreConnMaxLifetime = 5 * time.Minute
)

// Server timeouts for HTTP server configuration.
const (
	// ServerReadTimeout is the maximum duration for reading request headers.
	ServerReadTimeout = 10 * time.Second

	// ServerReadHeaderTimeout prevents slow header attacks.
	ServerReadHeaderTimeout = 5 * time.Second

	// ServerWriteTimeout is the maximum duration for writing a response.
	ServerWriteTimeout = 30 * time.Second

	// ServerIdleTimeout is the maximum duration to wait for the next request.
	ServerIdleTimeout = 120 * time.Second

	// ServerShutdownTimeout is the maximum duration for graceful shutdown.
	ServerShutdownTimeout = 30 * time.Second
)

// HTTP client timeouts for outbound requests.
const (
	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 30 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second

	// HTTPClientTimeout is the total timeout for one outbound request.
	HTTPClientTimeout = 60 * time.Second
)

// Scheduler defaults.
const (
	// SchedulerTick is how often the scheduler checks for due jobs.
	SchedulerTick = time.Minute

	// DailyAt is the default time of the daily collect-and-report job.
	DailyAt = "06:00"

	// WeeklyAt is the default time of the weekly period report.
	WeeklyAt = "18:00"

	// WeeklyDay is the default weekday of the weekly period report.
	WeeklyDay = time.Friday

	// MonthlyAt is the default time of the monthly period report.
	MonthlyAt = "08:00"

	// MonthlyDay is the default day of month of the monthly period report.
	MonthlyDay = 1

	// WeeklyPeriodDays is the window covered by the weekly report.
	WeeklyPeriodDays = 7

	// MonthlyPeriodDays is the window covered by the monthly report.
	MonthlyPeriodDays = 31
)

// Cache defaults.
const (
	// SnapshotCacheSize is the number of decoded snapshots kept in memory.
	SnapshotCacheSize = 16
)
