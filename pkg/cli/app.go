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

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/zbxdiff/zbxdiff/pkg/collector"
	"github.com/zbxdiff/zbxdiff/pkg/config"
	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/mailer"
	"github.com/zbxdiff/zbxdiff/pkg/notify"
	"github.com/zbxdiff/zbxdiff/pkg/orchestrator"
	"github.com/zbxdiff/zbxdiff/pkg/report"
	"github.com/zbxdiff/zbxdiff/pkg/store"
)

// env holds the resources shared by a command run.
type env struct {
	cfg       *config.Config
	store     store.Store
	publisher notify.Publisher
	logger    *slog.Logger
}

// newEnv loads the configuration and opens the store. When collect is set
// the Zabbix settings are validated too.
func newEnv(ctx context.Context, cmd *cli.Command, collect bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if collect {
		if err := cfg.ValidateCollect(); err != nil {
			return nil, err
		}
	}

	logger := slog.Default()
	st, err := store.Open(ctx, cfg.StoreConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &env{cfg: cfg, store: st, publisher: notify.Noop{}, logger: logger}, nil
}

func (e *env) Close() {
	if err := e.publisher.Close(); err != nil {
		e.logger.Warn("failed to close publisher", "error", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn("failed to close snapshot store", "error", err)
	}
}

// newOrchestrator wires the collector, renderer, mailer and publisher
// described by the configuration.
func (e *env) newOrchestrator(withSource bool) (*orchestrator.Orchestrator, error) {
	cfg := e.cfg
	opts := []orchestrator.Option{
		orchestrator.WithLogger(e.logger),
		orchestrator.WithFormats(cfg.Report.Formats...),
		orchestrator.WithFields(cfg.Report.Fields...),
		orchestrator.WithReportsDir(cfg.Report.Dir),
		orchestrator.WithRenderer(report.NewRenderer()),
	}

	if withSource {
		client, err := newCollector(cfg, e.logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithSource(client))
	}

	if cfg.Email.Enabled {
		m, err := mailer.New(cfg.MailerConfig(), e.logger)
		if err != nil {
			return nil, fmt.Errorf("invalid smtp settings: %w", err)
		}
		opts = append(opts, orchestrator.WithMailer(m, cfg.Email.Recipients, cfg.Email.AttachReports))
	}

	if cfg.NATS.URL != "" {
		pub, err := notify.New(notify.Config{URL: cfg.NATS.URL, Subject: cfg.NATS.Subject, Name: name}, e.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to nats: %w", err)
		}
		e.publisher = pub
		opts = append(opts, orchestrator.WithPublisher(pub))
	}

	return orchestrator.New(e.store, opts...), nil
}

func newCollector(cfg *config.Config, logger *slog.Logger) (*collector.Client, error) {
	opts := []collector.Option{
		collector.WithInsecureSkipVerify(cfg.Zabbix.InsecureSkipVerify),
		collector.WithLogger(logger),
		collector.WithUserAgent(fmt.Sprintf("%s/%s", name, version)),
	}
	if cfg.Zabbix.Timeout > 0 {
		opts = append(opts, collector.WithTimeout(cfg.Zabbix.Timeout))
	} else {
		opts = append(opts, collector.WithTimeout(defaults.CollectorRequestTimeout))
	}
	if cfg.Zabbix.Token != "" {
		opts = append(opts, collector.WithAPIToken(cfg.Zabbix.Token))
	} else {
		opts = append(opts, collector.WithCredentials(cfg.Zabbix.Username, cfg.Zabbix.Password))
	}
	return collector.New(cfg.Zabbix.URL, opts...)
}
