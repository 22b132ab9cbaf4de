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

	"github.com/blinklabs-io/vaultgov/governance"
)

// Settlement is a single transfer owed by a governance operation
type Settlement struct {
	From   governance.Identity
	To     governance.Identity
	Amount uint64
}

// Reverse returns the transfer that undoes s
func (s Settlement) Reverse() Settlement {
	return Settlement{From: s.To, To: s.From, Amount: s.Amount}
}

func (s Settlement) String() string {
	return fmt.Sprintf("%d from %s to %s", s.Amount, s.From, s.To)
}

// AbortHook is implemented by transactions that can run compensating
// actions when they fail to commit
type AbortHook interface {
	OnAbort(fn func() error)
}

// Settle applies s against l and registers its reversal on txn, so that a
// transaction which rolls back or fails to commit returns the tokens. It
// must be the last write of an operation
func Settle(ctx context.Context, txn AbortHook, l Ledger, s Settlement) error {
	if s.Amount == 0 {
		return nil
	}
	if err := l.Transfer(ctx, s.From, s.To, s.Amount); err != nil {
		return err
	}
	// The reversal runs after the caller's context may already be done
	undoCtx := context.WithoutCancel(ctx)
	txn.OnAbort(func() error {
		undo := s.Reverse()
		if err := l.Transfer(undoCtx, undo.From, undo.To, undo.Amount); err != nil {
			return fmt.Errorf("reverse settlement of %s: %w", s, err)
		}
		return nil
	})
	return nil
}
