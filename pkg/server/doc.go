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

// Package server exposes the snapshot store over a read-only HTTP API.
//
// # Architecture
//
// Routes are served by a gorilla/mux router. API routes under /v1 share
// one middleware chain:
//
//   - Prometheus request metrics
//   - API version negotiation (X-API-Version)
//   - Request ID tracking (X-Request-Id, UUID)
//   - Panic recovery
//   - Token bucket rate limiting (golang.org/x/time/rate)
//   - Debug request logging
//
// System endpoints bypass the chain.
//
// # API Endpoints
//
//	GET /                          service info and route list
//	GET /health                    liveness probe
//	GET /ready                     readiness probe
//	GET /metrics                   Prometheus metrics
//	GET /v1/dates                  stored snapshot dates, newest first
//	GET /v1/snapshots/{date}       one snapshot (?format=json|yaml)
//	GET /v1/changes                changeset between two snapshots
//
// /v1/changes accepts current (default: newest snapshot), previous
// (default: the snapshot before current), fields (comma separated tracked
// fields) and format (json, yaml, html or text; html and text return the
// rendered report).
//
// # Errors
//
// Errors use a JSON envelope:
//
//	{
//	  "code": "NOT_FOUND",
//	  "message": "no snapshot for 2025-01-02",
//	  "requestId": "...",
//	  "timestamp": "...",
//	  "retryable": false
//	}
//
// # Usage
//
//	srv := server.New(server.NewConfig(), st)
//	if err := srv.Start(ctx); err != nil { ... }
//
// Start blocks until ctx is canceled and then shuts the listener down
// gracefully within Config.ShutdownTimeout.
package server
