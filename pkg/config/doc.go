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

// Package config loads zbxdiff settings.
//
// Settings are resolved in three layers, later layers winning:
//
//  1. built-in defaults
//  2. an optional INI file (gopkg.in/ini.v1)
//  3. environment variables
//
// Command line flags are applied on top by pkg/cli.
//
// Example file:
//
//	[zabbix]
//	url = https://zabbix.example.com
//	username = api
//	password = secret
//	insecure_skip_verify = true
//
//	[storage]
//	driver = badger
//	path = /var/lib/zbxdiff
//
//	[report]
//	dir = /var/lib/zbxdiff/reports
//	format = both
//	fields = name,ip_address,groups
//
//	[email]
//	enabled = true
//	recipients = ops@example.com, noc@example.com
//	attach_reports = true
//
//	[smtp]
//	host = smtp.office365.com
//	port = 587
//	username = reports@example.com
//	password = secret
//	use_tls = true
//
//	[nats]
//	url = nats://127.0.0.1:4222
//
//	[schedule]
//	daily_at = 06:00
//	weekly_day = friday
//	weekly_at = 18:00
//	monthly_day = 1
//	monthly_at = 08:00
//
//	[server]
//	port = 8080
//
// The recognised environment variables are listed in Env. When email is
// enabled without SMTP credentials or recipients, Load disables it and
// logs a warning instead of failing.
package config
