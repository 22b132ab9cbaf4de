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
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"sync"

	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/prometheus/client_golang/prometheus"
)

// MemoryLedger is a process-local Ledger. It is safe for concurrent use
type MemoryLedger struct {
	mu           sync.RWMutex
	balances     map[governance.Identity]uint64
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	metrics      ledgerMetrics
}

type MemoryLedgerOptionFunc func(*MemoryLedger)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) MemoryLedgerOptionFunc {
	return func(l *MemoryLedger) {
		l.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) MemoryLedgerOptionFunc {
	return func(l *MemoryLedger) {
		l.promRegistry = registry
	}
}

// WithBalances seeds the ledger with opening balances
func WithBalances(balances map[governance.Identity]uint64) MemoryLedgerOptionFunc {
	return func(l *MemoryLedger) {
		maps.Copy(l.balances, balances)
	}
}

func NewMemoryLedger(opts ...MemoryLedgerOptionFunc) *MemoryLedger {
	l := &MemoryLedger{
		balances: make(map[governance.Identity]uint64),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if l.promRegistry != nil {
		l.metrics.init(l.promRegistry)
	}
	return l
}

func (l *MemoryLedger) Balance(
	_ context.Context,
	account governance.Identity,
) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account], nil
}

func (l *MemoryLedger) Transfer(
	ctx context.Context,
	from, to governance.Identity,
	amount uint64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fromBal := l.balances[from]
	if fromBal < amount {
		l.metrics.recordTransfer(false, 0)
		return fmt.Errorf(
			"%w: %s holds %d, needs %d",
			governance.ErrInsufficientFunds,
			from,
			fromBal,
			amount,
		)
	}
	if from != to && l.balances[to] > math.MaxUint64-amount {
		l.metrics.recordTransfer(false, 0)
		return governance.ErrAmountOverflow
	}
	l.balances[from] = fromBal - amount
	l.balances[to] += amount
	l.metrics.recordTransfer(true, amount)
	l.logger.Debug(
		"ledger transfer",
		"component", "ledger",
		"from", from.String(),
		"to", to.String(),
		"amount", amount,
	)
	return nil
}

// Credit mints amount into account. It is used for genesis balances and
// dev-mode funding
func (l *MemoryLedger) Credit(account governance.Identity, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[account] > math.MaxUint64-amount {
		return governance.ErrAmountOverflow
	}
	l.balances[account] += amount
	return nil
}

// Balances returns a snapshot of all non-zero balances
func (l *MemoryLedger) Balances() map[governance.Identity]uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ret := make(map[governance.Identity]uint64, len(l.balances))
	for k, v := range l.balances {
		if v > 0 {
			ret[k] = v
		}
	}
	return ret
}
