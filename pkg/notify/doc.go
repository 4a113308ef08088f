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

// Package notify announces computed changesets on a NATS subject so other
// systems (CMDB sync, chat bots) can react without polling the store.
//
// Each report run publishes one JSON ChangeEvent:
//
//	{
//	  "id": "3f0c...",
//	  "kind": "daily",
//	  "label": "Daily 2025-01-02",
//	  "current_date": "2025-01-02",
//	  "previous_date": "2025-01-01",
//	  "summary": {"hosts_added": 1, ...},
//	  "added": ["10501"],
//	  "removed": [],
//	  "modified": ["10084"]
//	}
//
// New returns a Noop publisher when no server URL is configured.
package notify
