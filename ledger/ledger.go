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

// Package ledger defines the token settlement boundary used by the engine
// and provides an in-memory reference implementation
package ledger

import (
	"context"

	"github.com/blinklabs-io/vaultgov/governance"
)

//go:generate go run go.uber.org/mock/mockgen -destination=../internal/test/testutil/mock_ledger.go -package=testutil github.com/blinklabs-io/vaultgov/ledger Ledger

// Ledger holds token balances per account and moves value between them.
// Implementations must apply a Transfer completely or not at all
type Ledger interface {
	Balance(ctx context.Context, account governance.Identity) (uint64, error)
	// Transfer returns governance.ErrInsufficientFunds when from cannot cover amount
	Transfer(ctx context.Context, from, to governance.Identity, amount uint64) error
}
