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

package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
)

// Security selects how the SMTP connection is protected.
type Security string

const (
	// SecurityStartTLS upgrades a plain connection and fails without TLS.
	SecurityStartTLS Security = "starttls"
	// SecuritySSL uses implicit TLS from the first byte.
	SecuritySSL Security = "ssl"
	// SecurityNone sends in clear text, for local relays only.
	SecurityNone Security = "none"
)

// ParseSecurity parses a security mode name.
func ParseSecurity(s string) (Security, error) {
	switch v := Security(strings.ToLower(strings.TrimSpace(s))); v {
	case SecurityStartTLS, SecuritySSL, SecurityNone:
		return v, nil
	case "tls":
		return SecurityStartTLS, nil
	case "":
		return SecurityStartTLS, nil
	default:
		return "", fmt.Errorf("unknown smtp security %q, supported: starttls, ssl, none", s)
	}
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// From defaults to Username.
	From string

	Security Security

	// Auth is plain, login or cram-md5. Defaults to login.
	Auth string

	Timeout time.Duration
}

// Message is a report email.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer sends messages over SMTP.
type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

// New validates cfg and creates a Mailer.
func New(cfg Config, logger *slog.Logger) (*Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "smtp host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "smtp sender address is required")
	}
	if cfg.Security == "" {
		cfg.Security = SecurityStartTLS
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.MailSendTimeout
	}
	if _, err := authType(cfg.Auth); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid smtp auth", err)
	}
	return &Mailer{cfg: cfg, logger: logger}, nil
}

func authType(s string) (mail.SMTPAuthType, error) {
	switch strings.ToLower(s) {
	case "", "login":
		return mail.SMTPAuthLogin, nil
	case "plain":
		return mail.SMTPAuthPlain, nil
	case "cram-md5":
		return mail.SMTPAuthCramMD5, nil
	default:
		return "", fmt.Errorf("unsupported smtp auth %q", s)
	}
}

func (m *Mailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
	}
	switch m.cfg.Security {
	case SecuritySSL:
		opts = append(opts, mail.WithSSL())
	case SecurityNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if m.cfg.Username != "" {
		auth, _ := authType(m.cfg.Auth)
		opts = append(opts,
			mail.WithSMTPAuth(auth),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

// Build converts msg into a MIME message.
func (m *Mailer) Build(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "no recipients")
	}

	mm := mail.NewMsg()
	if err := mm.From(m.cfg.From); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid sender address", err)
	}
	if err := mm.To(msg.To...); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid recipient address", err)
	}
	mm.Subject(msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		mm.SetBodyString(mail.TypeTextPlain, msg.Text)
		mm.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		mm.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		mm.SetBodyString(mail.TypeTextPlain, msg.Text)
	}

	for _, path := range msg.Attachments {
		mm.AttachFile(path)
	}
	return mm, nil
}

// Send delivers msg in one SMTP session.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	mm, err := m.Build(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "failed to create smtp client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to send email", err,
			map[string]any{"host": m.cfg.Host, "port": m.cfg.Port})
	}

	m.logger.Info("email sent",
		"recipients", strings.Join(msg.To, ", "),
		"subject", msg.Subject,
		"attachments", len(msg.Attachments))
	return nil
}

// WriteTo writes the MIME form of msg to w, for dry runs.
func (m *Mailer) WriteTo(w io.Writer, msg Message) error {
	mm, err := m.Build(msg)
	if err != nil {
		return err
	}
	_, err = mm.WriteTo(w)
	return err
}
