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

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
	"github.com/zbxdiff/zbxdiff/pkg/host"
	"github.com/zbxdiff/zbxdiff/pkg/mailer"
	"github.com/zbxdiff/zbxdiff/pkg/report"
	"github.com/zbxdiff/zbxdiff/pkg/store"
)

// Config is the resolved configuration.
type Config struct {
	Zabbix   Zabbix
	Storage  Storage
	Report   Report
	SMTP     SMTP
	Email    Email
	NATS     NATS
	Schedule Schedule
	Server   Server
}

type Zabbix struct {
	URL                string
	Username           string
	Password           string
	Token              string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

type Storage struct {
	Driver    string
	Path      string
	DSN       string
	CacheSize int
}

type Report struct {
	Dir     string
	Formats []report.Format
	Fields  []host.Field
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Security mailer.Security
	Auth     string
}

type Email struct {
	Enabled       bool
	Recipients    []string
	AttachReports bool
}

type NATS struct {
	URL     string
	Subject string
}

type Schedule struct {
	DailyAt    string
	WeeklyDay  time.Weekday
	WeeklyAt   string
	MonthlyDay int
	MonthlyAt  string
	Timezone   string
}

type Server struct {
	Address   string
	Port      int
	RateLimit float64
	RateBurst int
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Zabbix: Zabbix{Timeout: defaults.CollectorRequestTimeout},
		Storage: Storage{
			Driver:    store.DriverBadger,
			Path:      "data/snapshots",
			CacheSize: defaults.SnapshotCacheSize,
		},
		Report: Report{
			Dir:     "reports",
			Formats: []report.Format{report.FormatHTML, report.FormatText},
			Fields:  host.DefaultFields,
		},
		SMTP: SMTP{
			Host:     "smtp.office365.com",
			Port:     587,
			Security: mailer.SecurityStartTLS,
			Auth:     "login",
		},
		Email: Email{AttachReports: true},
		NATS:  NATS{Subject: "zbxdiff.changes"},
		Schedule: Schedule{
			DailyAt:    defaults.DailyAt,
			WeeklyDay:  defaults.WeeklyDay,
			WeeklyAt:   defaults.WeeklyAt,
			MonthlyDay: defaults.MonthlyDay,
			MonthlyAt:  defaults.MonthlyAt,
			Timezone:   "Local",
		},
		Server: Server{Port: 8080, RateLimit: 100, RateBurst: 200},
	}
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Load resolves the configuration from path (skipped when empty) and the
// process environment.
func Load(path string, logger *slog.Logger) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv, logger)
}

// LoadWithEnv is Load with an explicit environment.
func LoadWithEnv(path string, lookup LookupFunc, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := Default()

	if path != "" {
		f, err := ini.Load(path)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "failed to read config file", err,
				map[string]any{"path": path})
		}
		if err := cfg.applyINI(f); err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid config file", err,
				map[string]any{"path": path})
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid environment", err)
	}

	cfg.normalizeEmail(logger)
	logger.Debug("configuration loaded", "config", cfg)
	return cfg, nil
}

func (c *Config) applyINI(f *ini.File) error {
	z := f.Section("zabbix")
	c.Zabbix.URL = z.Key("url").MustString(c.Zabbix.URL)
	c.Zabbix.Username = z.Key("username").MustString(c.Zabbix.Username)
	c.Zabbix.Password = z.Key("password").MustString(c.Zabbix.Password)
	c.Zabbix.Token = z.Key("token").MustString(c.Zabbix.Token)
	c.Zabbix.InsecureSkipVerify = z.Key("insecure_skip_verify").MustBool(c.Zabbix.InsecureSkipVerify)
	c.Zabbix.Timeout = z.Key("timeout").MustDuration(c.Zabbix.Timeout)

	s := f.Section("storage")
	c.Storage.Driver = s.Key("driver").MustString(c.Storage.Driver)
	c.Storage.Path = s.Key("path").MustString(c.Storage.Path)
	c.Storage.DSN = s.Key("dsn").MustString(c.Storage.DSN)
	c.Storage.CacheSize = s.Key("cache_size").MustInt(c.Storage.CacheSize)

	r := f.Section("report")
	c.Report.Dir = r.Key("dir").MustString(c.Report.Dir)
	if r.HasKey("format") {
		if err := c.setFormats(r.Key("format").String()); err != nil {
			return err
		}
	}
	for _, sec := range []*ini.Section{r, f.Section("comparator")} {
		if sec.HasKey("fields") {
			if err := c.setFields(sec.Key("fields").String()); err != nil {
				return err
			}
		}
	}

	m := f.Section("smtp")
	c.SMTP.Host = m.Key("host").MustString(c.SMTP.Host)
	c.SMTP.Port = m.Key("port").MustInt(c.SMTP.Port)
	c.SMTP.Username = m.Key("username").MustString(c.SMTP.Username)
	c.SMTP.Password = m.Key("password").MustString(c.SMTP.Password)
	c.SMTP.From = m.Key("from").MustString(c.SMTP.From)
	c.SMTP.Auth = m.Key("auth").MustString(c.SMTP.Auth)
	if m.HasKey("use_tls") {
		c.SMTP.Security = securityFromTLS(m.Key("use_tls").MustBool(true))
	}
	if m.HasKey("security") {
		if err := c.setSecurity(m.Key("security").String()); err != nil {
			return err
		}
	}

	e := f.Section("email")
	c.Email.Enabled = e.Key("enabled").MustBool(c.Email.Enabled)
	c.Email.AttachReports = e.Key("attach_reports").MustBool(c.Email.AttachReports)
	if e.HasKey("recipients") {
		c.Email.Recipients = splitList(e.Key("recipients").String())
	}

	n := f.Section("nats")
	c.NATS.URL = n.Key("url").MustString(c.NATS.URL)
	c.NATS.Subject = n.Key("subject").MustString(c.NATS.Subject)

	sc := f.Section("schedule")
	c.Schedule.DailyAt = sc.Key("daily_at").MustString(c.Schedule.DailyAt)
	c.Schedule.WeeklyAt = sc.Key("weekly_at").MustString(c.Schedule.WeeklyAt)
	c.Schedule.MonthlyAt = sc.Key("monthly_at").MustString(c.Schedule.MonthlyAt)
	c.Schedule.MonthlyDay = sc.Key("monthly_day").MustInt(c.Schedule.MonthlyDay)
	c.Schedule.Timezone = sc.Key("timezone").MustString(c.Schedule.Timezone)
	if sc.HasKey("weekly_day") {
		if err := c.setWeekday(sc.Key("weekly_day").String()); err != nil {
			return err
		}
	}

	sv := f.Section("server")
	c.Server.Address = sv.Key("address").MustString(c.Server.Address)
	c.Server.Port = sv.Key("port").MustInt(c.Server.Port)
	c.Server.RateLimit = sv.Key("rate_limit").MustFloat64(c.Server.RateLimit)
	c.Server.RateBurst = sv.Key("rate_burst").MustInt(c.Server.RateBurst)
	return nil
}

// Env lists the environment variables applied by Load.
var Env = []string{
	"ZABBIX_URL", "ZABBIX_USERNAME", "ZABBIX_PASSWORD", "ZABBIX_API_TOKEN", "ZABBIX_INSECURE_SKIP_VERIFY",
	"STORAGE_DRIVER", "DATABASE_PATH", "DATABASE_DSN",
	"REPORTS_DIR", "REPORT_FORMAT", "REPORT_FIELDS",
	"SEND_EMAIL", "EMAIL_RECIPIENTS", "EMAIL_ATTACH_REPORTS",
	"SMTP_SERVER", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "SMTP_USE_TLS", "SMTP_AUTH",
	"NATS_URL", "NATS_SUBJECT",
	"SCHEDULE_DAILY_AT", "SCHEDULE_WEEKLY_DAY", "SCHEDULE_WEEKLY_AT", "SCHEDULE_MONTHLY_DAY", "SCHEDULE_MONTHLY_AT", "SCHEDULE_TIMEZONE",
	"PORT",
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.EqualFold(strings.TrimSpace(v), "true")
		}
	}
	with := func(key string, set func(string) error) {
		if v, ok := lookup(key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			}
		}
	}

	str("ZABBIX_URL", &c.Zabbix.URL)
	str("ZABBIX_USERNAME", &c.Zabbix.Username)
	str("ZABBIX_PASSWORD", &c.Zabbix.Password)
	str("ZABBIX_API_TOKEN", &c.Zabbix.Token)
	boolean("ZABBIX_INSECURE_SKIP_VERIFY", &c.Zabbix.InsecureSkipVerify)

	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("DATABASE_PATH", &c.Storage.Path)
	str("DATABASE_DSN", &c.Storage.DSN)

	str("REPORTS_DIR", &c.Report.Dir)
	with("REPORT_FORMAT", c.setFormats)
	with("REPORT_FIELDS", c.setFields)

	boolean("SEND_EMAIL", &c.Email.Enabled)
	boolean("EMAIL_ATTACH_REPORTS", &c.Email.AttachReports)
	with("EMAIL_RECIPIENTS", func(v string) error {
		c.Email.Recipients = splitList(v)
		return nil
	})

	str("SMTP_SERVER", &c.SMTP.Host)
	num("SMTP_PORT", &c.SMTP.Port)
	str("SMTP_USERNAME", &c.SMTP.Username)
	str("SMTP_PASSWORD", &c.SMTP.Password)
	str("SMTP_FROM", &c.SMTP.From)
	str("SMTP_AUTH", &c.SMTP.Auth)
	with("SMTP_USE_TLS", func(v string) error {
		c.SMTP.Security = securityFromTLS(strings.EqualFold(strings.TrimSpace(v), "true"))
		return nil
	})

	str("NATS_URL", &c.NATS.URL)
	str("NATS_SUBJECT", &c.NATS.Subject)

	str("SCHEDULE_DAILY_AT", &c.Schedule.DailyAt)
	with("SCHEDULE_WEEKLY_DAY", c.setWeekday)
	str("SCHEDULE_WEEKLY_AT", &c.Schedule.WeeklyAt)
	num("SCHEDULE_MONTHLY_DAY", &c.Schedule.MonthlyDay)
	str("SCHEDULE_MONTHLY_AT", &c.Schedule.MonthlyAt)
	str("SCHEDULE_TIMEZONE", &c.Schedule.Timezone)

	num("PORT", &c.Server.Port)

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) setFormats(v string) error {
	fs, err := report.ParseFormats(v)
	if err != nil {
		return err
	}
	c.Report.Formats = fs
	return nil
}

func (c *Config) setFields(v string) error {
	fs, err := host.ParseFields(v)
	if err != nil {
		return err
	}
	c.Report.Fields = fs
	return nil
}

func (c *Config) setSecurity(v string) error {
	s, err := mailer.ParseSecurity(v)
	if err != nil {
		return err
	}
	c.SMTP.Security = s
	return nil
}

func (c *Config) setWeekday(v string) error {
	d, err := ParseWeekday(v)
	if err != nil {
		return err
	}
	c.Schedule.WeeklyDay = d
	return nil
}

// securityFromTLS maps the use_tls switch: STARTTLS when true, implicit
// TLS otherwise.
func securityFromTLS(useTLS bool) mailer.Security {
	if useTLS {
		return mailer.SecurityStartTLS
	}
	return mailer.SecuritySSL
}

// ParseWeekday parses an English weekday name or its three letter prefix.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || (len(v) == 3 && strings.HasPrefix(name, v)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) normalizeEmail(logger *slog.Logger) {
	if !c.Email.Enabled {
		return
	}
	var missing []string
	if c.SMTP.Username == "" || c.SMTP.Password == "" {
		missing = append(missing, "smtp credentials")
	}
	if len(c.Email.Recipients) == 0 {
		missing = append(missing, "recipients")
	}
	if len(missing) > 0 {
		logger.Warn("email delivery disabled, configuration incomplete", "missing", strings.Join(missing, ", "))
		c.Email.Enabled = false
	}
}

// ValidateCollect checks the settings needed to query Zabbix.
func (c *Config) ValidateCollect() error {
	var missing []string
	if c.Zabbix.URL == "" {
		missing = append(missing, "ZABBIX_URL")
	}
	if c.Zabbix.Token == "" && (c.Zabbix.Username == "" || c.Zabbix.Password == "") {
		missing = append(missing, "ZABBIX_USERNAME/ZABBIX_PASSWORD or ZABBIX_API_TOKEN")
	}
	if len(missing) > 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"zabbix connection settings are incomplete",
			map[string]any{"missing": missing})
	}
	return nil
}

// StoreConfig returns the store settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver:    c.Storage.Driver,
		Path:      c.Storage.Path,
		DSN:       c.Storage.DSN,
		CacheSize: c.Storage.CacheSize,
	}
}

// MailerConfig returns the SMTP settings.
func (c *Config) MailerConfig() mailer.Config {
	return mailer.Config{
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		Security: c.SMTP.Security,
		Auth:     c.SMTP.Auth,
		Timeout:  defaults.MailSendTimeout,
	}
}

// LogValue renders the configuration with secrets masked.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("zabbix_url", c.Zabbix.URL),
		slog.String("zabbix_username", c.Zabbix.Username),
		slog.String("zabbix_password", mask(c.Zabbix.Password)),
		slog.String("zabbix_token", mask(c.Zabbix.Token)),
		slog.String("storage_driver", c.Storage.Driver),
		slog.String("storage_path", c.Storage.Path),
		slog.String("reports_dir", c.Report.Dir),
		slog.Bool("email_enabled", c.Email.Enabled),
		slog.Int("email_recipients", len(c.Email.Recipients)),
		slog.String("smtp_host", c.SMTP.Host),
		slog.Int("smtp_port", c.SMTP.Port),
		slog.String("smtp_password", mask(c.SMTP.Password)),
		slog.String("nats_url", c.NATS.URL),
	)
}

func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 4:
		return "***"
	default:
		return secret[:2] + "***" + secret[len(secret)-2:]
	}
}
