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

// Package serializer encodes and decodes zbxdiff documents in JSON, YAML and
// plain-text tables.
//
// # Formats
//
//   - json: indented encoding/json output, the API and machine format
//   - yaml: gopkg.in/yaml.v3, used for snapshot import/export files
//   - table: aligned columns for terminals (write only)
//
// # Writing
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatTable, "")
//	defer w.Close()
//	if err := w.Serialize(ctx, rows); err != nil {
//	    return err
//	}
//
// Values implementing Tabular render as a column table. Anything else is
// flattened into FIELD/VALUE pairs.
//
// # Reading
//
// FromFile loads a document from a local path or an http(s) URL, picking
// the format from the extension:
//
//	snap, err := serializer.FromFile[host.Snapshot](ctx, "exports/2025-01-02.yaml")
//
// # HTTP
//
// RespondJSON writes buffered JSON responses for the API server.
package serializer
