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

// Package host defines the data model compared by zbxdiff: the Host Record
// captured from the monitoring platform and the dated, immutable Snapshot
// that groups the records of one collection run.
//
// # Identity
//
// A Record is identified by HostID, the identifier assigned by Zabbix
// (hostid). It is never generated locally. Name, IP address, groups and
// templates may repeat across different hosts; HostID must be unique within
// one Snapshot. Snapshot.Index enforces this and fails on the first
// duplicate instead of silently deduplicating.
//
// # Tracked Fields
//
// Field enumerates the attributes whose change marks a host as modified.
// DefaultFields holds the standard set (name, ip_address, groups); the
// templates field is available for callers that opt in:
//
//	fields, err := host.ParseFields("name,ip_address,groups,templates")
//
// Set-valued fields (groups, templates) compare by membership only:
// ordering and repeated entries are ignored.
//
// # Dates
//
// Snapshots are dated with calendar granularity using DateLayout
// (YYYY-MM-DD). Lexical order of formatted dates equals chronological
// order, which the stores rely on.
package host
