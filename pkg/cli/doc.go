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

// Package cli implements the zbxdiff command line interface.
//
// # Commands
//
// collect - Store today's Zabbix host inventory:
//
//	zbxdiff collect [--date 2025-01-02] [--overwrite]
//
// report - Compare a snapshot with the previous one and deliver the report:
//
//	zbxdiff report [--current 2025-01-02] [--previous 2025-01-01] [--report-format html,text]
//
// run - collect followed by report:
//
//	zbxdiff run
//
// period - Weekly or monthly summary over the trailing window:
//
//	zbxdiff period --name weekly [--days 7]
//
// schedule - Run daily, weekly and monthly jobs and serve the HTTP API:
//
//	zbxdiff schedule [--run-now] [--no-server]
//
// serve - Serve the HTTP API only:
//
//	zbxdiff serve [--port 8080]
//
// dates - List stored snapshot dates:
//
//	zbxdiff dates [--format table]
//
// check - Scan stored snapshots for duplicate host ids:
//
//	zbxdiff check [--date 2025-01-02] [--fail-on-duplicates]
//
// import - Load a JSON or YAML snapshot file or URL into the store:
//
//	zbxdiff import --file snapshot.yaml [--date 2025-01-02] [--overwrite] [--insecure]
//
// # Global Flags
//
//	--config          INI configuration file (env ZBXDIFF_CONFIG)
//	--log-level       debug, info, warn or error (env LOG_LEVEL)
//	--storage-driver  badger, postgres or memory
//	--db-path         badger directory (env DATABASE_PATH)
//	--db-dsn          postgres connection string (env DATABASE_DSN)
//
// Settings resolve in the order defaults, config file, environment, flags.
// See pkg/config for the file format and environment variables.
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure)
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/zbxdiff/zbxdiff/pkg/cli.version=1.0.0'"
package cli
