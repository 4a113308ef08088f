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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zbxdiff/zbxdiff/pkg/defaults"
	"github.com/zbxdiff/zbxdiff/pkg/errors"
)

const (
	apiPath         = "/api_jsonrpc.php"
	contentTypeJSON = "application/json-rpc"
	maxResponseSize = 64 << 20
)

// Client is a Zabbix JSON-RPC client.
type Client struct {
	endpoint   string
	username   string
	password   string
	token      string
	insecure   bool
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string

	seq atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials authenticates with user.login.
func WithCredentials(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

// WithAPIToken authenticates with a pre-issued API token. No login or
// logout call is made.
func WithAPIToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client. Transport options are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the Zabbix frontend at url. The JSON-RPC path
// is appended unless url already points at a .php endpoint.
func New(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "zabbix url is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"zabbix url must start with http:// or https://", map[string]any{"url": url})
	}
	if !strings.HasSuffix(url, ".php") {
		url = strings.TrimRight(url, "/") + apiPath
	}

	c := &Client{
		endpoint:  url,
		timeout:   defaults.CollectorRequestTimeout,
		logger:    slog.Default(),
		userAgent: "zbxdiff",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.token == "" && (c.username == "" || c.password == "") {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			"zabbix credentials or api token are required")
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: newTransport(c.insecure),
		}
	}
	return c, nil
}

func newTransport(insecure bool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		MaxIdleConnsPerHost:   2,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: insecure, //nolint:gosec // self-signed Zabbix frontends are common
		},
	}
}

// Endpoint returns the JSON-RPC URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
	Auth    string `json:"auth,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      int64           `json:"id"`
}

// RPCError is an error object returned by the Zabbix API.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("zabbix api error %d: %s %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("zabbix api error %d: %s", e.Code, e.Message)
}

// session carries authentication for one collection run.
type session struct {
	token  string
	bearer bool
}

// call invokes method and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, params any, s *session, out any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.seq.Add(1),
	}
	if s != nil && !s.bearer {
		req.Auth = s.token
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if s != nil && s.bearer {
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.WrapWithContext(errors.ErrCodeTimeout, "zabbix request timed out", err,
				map[string]any{"method": method})
		}
		return errors.WrapWithContext(errors.ErrCodeUnavailable, "zabbix request failed", err,
			map[string]any{"method": method})
	}
	defer resp.Body.Close()

	c.logger.Debug("zabbix call", "method", method, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewWithContext(errors.ErrCodeUnavailable,
			fmt.Sprintf("zabbix api returned HTTP %d", resp.StatusCode),
			map[string]any{"method": method, "body": strings.TrimSpace(string(snippet))})
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&rpcResp); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to decode zabbix response", err,
			map[string]any{"method": method})
	}
	if rpcResp.Error != nil {
		code := errors.ErrCodeInternal
		if isAuthError(rpcResp.Error) {
			code = errors.ErrCodeUnauthorized
		}
		return errors.WrapWithContext(code, fmt.Sprintf("zabbix %s failed", method), rpcResp.Error,
			map[string]any{"method": method})
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal, fmt.Sprintf("unexpected %s result", method), err,
			map[string]any{"method": method})
	}
	return nil
}

func isAuthError(e *RPCError) bool {
	text := strings.ToLower(e.Message + " " + e.Data)
	for _, marker := range []string{"not authori", "session terminated", "incorrect user name or password", "login name or password is incorrect", "re-login"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
