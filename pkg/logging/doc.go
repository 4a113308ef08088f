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

// Package logging configures log/slog for zbxdiff.
//
// Every record is written to stderr as JSON and carries the module and
// version attributes. Debug level adds the source location.
//
// Levels are parsed case-insensitively from the --log-level flag or the
// LOG_LEVEL environment variable (debug, info, warn/warning, error) and
// default to info:
//
//	logging.SetDefaultStructuredLoggerWithLevel("zbxdiff", version, "debug")
//	slog.Info("collection complete", "hosts", 1532)
//
// A record looks like:
//
//	{"time":"2025-01-15T06:00:02Z","level":"INFO","msg":"collection complete",
//	 "module":"zbxdiff","version":"1.2.0","hosts":1532}
//
// # ASCII Folding
//
// Zabbix host and group names are often localized. Some log pipelines
// reject or mangle non-ASCII text, so LOG_ASCII=true wraps the handler in
// an ASCIIHandler that strips diacritics from messages and string
// attributes ("São Paulo" becomes "Sao Paulo"). FoldASCII is the function
// used for that.
//
// # Standard Library Loggers
//
// NewLogLogger adapts the structured handler to a *log.Logger for APIs
// such as http.Server.ErrorLog.
//
// The comparator and host packages never log; they return errors.
package logging
