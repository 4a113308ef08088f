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

// Package collector reads the monitored host inventory from a Zabbix server.
//
// # Overview
//
// Client speaks the Zabbix JSON-RPC 2.0 API. A collection run authenticates
// (user.login, or a pre-issued API token), fetches every enabled host with
// host.get and logs out again:
//
//	c, err := collector.New("https://zabbix.example.com",
//	    collector.WithCredentials("api", "secret"),
//	    collector.WithInsecureSkipVerify(true),
//	)
//	if err != nil {
//	    return err
//	}
//	records, err := c.Collect(ctx)
//
// The server version (apiinfo.version) decides the request dialect: the
// "username" login parameter from 5.4, Bearer authentication from 6.4 and
// host groups under "hostgroups" from 6.2.
//
// # Record mapping
//
//   - HostID: hostid
//   - Name: visible name, falling back to the technical host name
//   - IPAddress: the main interface, else the first interface, else empty
//   - Groups and Templates: group and linked template names
//
// Only enabled hosts (status 0) are collected.
//
// # Source
//
// Anything implementing Source can feed a collection run. Client is the
// production implementation; tests use StaticSource.
package collector
