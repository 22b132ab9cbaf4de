// Copyright 2026 Blink Labs Software
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

package vaultgov

import (
	"time"

	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// newEngineMetrics returns metrics registered on promRegistry. With a nil
// registry the collectors exist but are never exported
func newEngineMetrics(promRegistry prometheus.Registerer) *engineMetrics {
	promautoFactory := promauto.With(promRegistry)
	return &engineMetrics{
		operations: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultgov_operations_total",
				Help: "governance operations by name and result code",
			},
			[]string{"operation", "code"},
		),
		duration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vaultgov_operation_duration_seconds",
				Help:    "governance operation latency including commit",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"operation"},
		),
	}
}

func (m *engineMetrics) observe(op string, err error, elapsed time.Duration) {
	code := "ok"
	if err != nil {
		code = governance.CodeOf(err)
	}
	m.operations.WithLabelValues(op, code).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *engineMetrics) registerVaultGauge(
	promRegistry prometheus.Registerer,
	fn func() float64,
) {
	promauto.With(promRegistry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vaultgov_vault_balance",
			Help: "current vault balance in raw token units",
		},
		fn,
	)
}
