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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	transfers        *prometheus.CounterVec
	transferredTotal prometheus.Counter
}

func (m *ledgerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.transfers = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultgov_ledger_transfers_total",
			Help: "ledger transfers by result",
		},
		[]string{"result"},
	)
	m.transferredTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "vaultgov_ledger_transferred_units_total",
		Help: "raw token units moved by successful transfers",
	})
}

func (m *ledgerMetrics) recordTransfer(ok bool, amount uint64) {
	if m.transfers == nil {
		return
	}
	if !ok {
		m.transfers.WithLabelValues("rejected").Inc()
		return
	}
	m.transfers.WithLabelValues("ok").Inc()
	m.transferredTotal.Add(float64(amount))
}
