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

package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/version"
)

type zabbixInterface struct {
	IP   string `json:"ip"`
	Main string `json:"main"`
	Type string `json:"type"`
}

type zabbixNamed struct {
	Name string `json:"name"`
}

type zabbixHost struct {
	HostID          string            `json:"hostid"`
	Host            string            `json:"host"`
	Name            string            `json:"name"`
	Interfaces      []zabbixInterface `json:"interfaces"`
	Groups          []zabbixNamed     `json:"groups"`
	HostGroups      []zabbixNamed     `json:"hostgroups"`
	ParentTemplates []zabbixNamed     `json:"parentTemplates"`
}

// record maps an API host to a Record.
func (h zabbixHost) record() host.Record {
	name := h.Name
	if name == "" {
		name = h.Host
	}

	groups := h.HostGroups
	if len(groups) == 0 {
		groups = h.Groups
	}

	return host.Record{
		HostID:    h.HostID,
		Name:      name,
		IPAddress: mainIP(h.Interfaces),
		Groups:    names(groups),
		Templates: names(h.ParentTemplates),
	}
}

func mainIP(ifaces []zabbixInterface) string {
	for _, i := range ifaces {
		if i.Main == "1" && i.IP != "" {
			return i.IP
		}
	}
	if len(ifaces) > 0 {
		return ifaces[0].IP
	}
	return ""
}

func names(items []zabbixNamed) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return host.NormalizeSet(out)
}

// Version returns the API version reported by apiinfo.version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v string
	if err := c.call(ctx, "apiinfo.version", []string{}, nil, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (c *Client) login(ctx context.Context, v version.Version, known bool) (*session, error) {
	bearer := !known || v.AtLeast(6, 4)
	if c.token != "" {
		return &session{token: c.token, bearer: bearer}, nil
	}

	params := map[string]string{"password": c.password}
	if known && !v.AtLeast(5, 4) {
		params["user"] = c.username
	} else {
		params["username"] = c.username
	}

	var token string
	if err := c.call(ctx, "user.login", params, nil, &token); err != nil {
		return nil, err
	}
	return &session{token: token, bearer: bearer}, nil
}

func (c *Client) logout(ctx context.Context, s *session) {
	if c.token != "" {
		return
	}
	// the run context may already be done
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.call(ctx, "user.logout", []string{}, s, nil); err != nil {
		c.logger.Warn("zabbix logout failed", "error", err)
		return
	}
	c.logger.Debug("disconnected from zabbix")
}

func (c *Client) hosts(ctx context.Context, v version.Version, known bool, s *session) ([]host.Record, error) {
	params := map[string]any{
		"output":                []string{"hostid", "host", "name"},
		"selectInterfaces":      []string{"type", "ip", "main"},
		"selectParentTemplates": []string{"templateid", "name"},
		"filter":                map[string]any{"status": 0},
	}
	if known && v.AtLeast(6, 2) {
		params["selectHostGroups"] = []string{"groupid", "name"}
	} else {
		params["selectGroups"] = []string{"groupid", "name"}
	}

	var raw []zabbixHost
	if err := c.call(ctx, "host.get", params, s, &raw); err != nil {
		return nil, err
	}

	records := make([]host.Record, 0, len(raw))
	for _, h := range raw {
		records = append(records, h.record())
	}
	return records, nil
}

// Collect runs one authenticated session and returns every enabled host.
func (c *Client) Collect(ctx context.Context) ([]host.Record, error) {
	raw, err := c.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query zabbix version: %w", err)
	}
	v, verr := version.ParseVersion(raw)
	known := verr == nil
	if !known {
		c.logger.Warn("unrecognised zabbix version, assuming a current api dialect", "version", raw)
	}
	c.logger.Info("connected to zabbix", "url", c.endpoint, "version", raw)

	s, err := c.login(ctx, v, known)
	if err != nil {
		return nil, fmt.Errorf("failed to log in to zabbix: %w", err)
	}
	defer c.logout(ctx, s)

	records, err := c.hosts(ctx, v, known, s)
	if err != nil {
		return nil, fmt.Errorf("failed to collect hosts: %w", err)
	}
	c.logger.Info("collected hosts from zabbix", "count", len(records))
	return records, nil
}
