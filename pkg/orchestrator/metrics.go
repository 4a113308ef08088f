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

package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zbxdiff_collection_duration_seconds",
			Help:    "Time taken to collect the host inventory from Zabbix",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	collectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbxdiff_collection_total",
			Help: "Total number of collection attempts",
		},
		[]string{"status"}, // success, skipped or error
	)

	hostsCollected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zbxdiff_hosts",
			Help: "Number of hosts in the last collected snapshot",
		},
	)

	changesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbxdiff_changes_total",
			Help: "Host changes found by daily comparisons",
		},
		[]string{"class"}, // added, removed, modified
	)

	reportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbxdiff_report_total",
			Help: "Total number of report runs",
		},
		[]string{"kind", "status"},
	)

	deliveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zbxdiff_delivery_total",
			Help: "Report deliveries by channel",
		},
		[]string{"channel", "status"}, // email or nats
	)
)
