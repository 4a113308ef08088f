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

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/zbxdiff/zbxdiff/pkg/comparator"
	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
)

// DefaultSubject is the subject change events are published on.
const DefaultSubject = "zbxdiff.changes"

// ChangeEvent is the published payload.
type ChangeEvent struct {
	ID           string             `json:"id"`
	Kind         string             `json:"kind"`
	Label        string             `json:"label"`
	CurrentDate  string             `json:"current_date"`
	PreviousDate string             `json:"previous_date,omitempty"`
	Baseline     bool               `json:"baseline"`
	Summary      comparator.Summary `json:"summary"`
	Added        []string           `json:"added"`
	Removed      []string           `json:"removed"`
	Modified     []string           `json:"modified"`
	Timestamp    time.Time          `json:"timestamp"`
}

// EventFromChangeset builds the event of a daily run.
func EventFromChangeset(cs *comparator.Changeset) ChangeEvent {
	return ChangeEvent{
		ID:           uuid.NewString(),
		Kind:         "daily",
		Label:        "Daily " + cs.CurrentDate,
		CurrentDate:  cs.CurrentDate,
		PreviousDate: cs.PreviousDate,
		Baseline:     cs.Baseline,
		Summary:      cs.Summary(),
		Added:        cs.AddedIDs(),
		Removed:      cs.RemovedIDs(),
		Modified:     cs.ModifiedIDs(),
		Timestamp:    time.Now().UTC(),
	}
}

// EventFromPeriod builds the event of a period run named kind.
func EventFromPeriod(kind, label string, p *comparator.PeriodChangeset) ChangeEvent {
	ev := ChangeEvent{
		ID:           uuid.NewString(),
		Kind:         kind,
		Label:        label,
		CurrentDate:  p.To,
		PreviousDate: p.From,
		Summary:      p.Summary(),
		Added:        []string{},
		Removed:      []string{},
		Modified:     []string{},
		Timestamp:    time.Now().UTC(),
	}
	for _, cs := range p.Steps {
		ev.Added = append(ev.Added, cs.AddedIDs()...)
		ev.Removed = append(ev.Removed, cs.RemovedIDs()...)
		ev.Modified = append(ev.Modified, cs.ModifiedIDs()...)
	}
	return ev
}

// Publisher delivers change events.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	Close() error
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, ChangeEvent) error { return nil }
func (Noop) Close() error                               { return nil }

// conn is the subset of *nats.Conn used here.
type conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes events to a NATS server.
type NATSPublisher struct {
	nc      conn
	subject string
	logger  *slog.Logger
}

// Config configures New.
type Config struct {
	URL     string
	Subject string
	Name    string
}

// New connects to cfg.URL. An empty URL yields Noop.
func New(cfg Config, logger *slog.Logger) (Publisher, error) {
	if cfg.URL == "" {
		return Noop{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "zbxdiff"
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(defaults.PublishTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to connect to nats", err,
			map[string]any{"url": cfg.URL})
	}
	return newNATSPublisher(nc, cfg.Subject, logger), nil
}

func newNATSPublisher(nc conn, subject string, logger *slog.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{nc: nc, subject: subject, logger: logger}
}

// Publish sends ev and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, ev ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, "failed to publish change event", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.PublishTimeout)
	defer cancel()
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "failed to flush change event", err)
	}

	p.logger.Debug("change event published", "subject", p.subject, "id", ev.ID, "kind", ev.Kind)
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
