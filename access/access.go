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

// Package access tracks paid, time-windowed access passes
package access

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/ledger"
)

const OperationBurnForPass = "burn_for_pass"

// Registry grants access passes in exchange for a payment into the vault
type Registry struct {
	db     *database.Database
	ledger ledger.Ledger
	vault  governance.Identity
	logger *slog.Logger
}

func NewRegistry(
	db *database.Database,
	l ledger.Ledger,
	vault governance.Identity,
	logger *slog.Logger,
) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Registry{
		db:     db,
		ledger: l,
		vault:  vault,
		logger: logger,
	}
}

// Grant records a new pass for user valid for AccessPassDuration from now,
// then moves amount from user to the vault. feePayer only identifies who is
// billed for the call and has no effect on the pass
func (r *Registry) Grant(
	ctx context.Context,
	txn *database.Txn,
	user governance.Identity,
	feePayer governance.Identity,
	amount uint64,
	now time.Time,
) (*models.AccessPass, error) {
	if !user.Valid() {
		return nil, governance.ErrInvalidIdentity
	}
	if amount < governance.MinAccessCost || amount > governance.MaxAccessCost {
		return nil, governance.ErrInvalidBurnAmount
	}
	nowUnix := now.Unix()
	pass, err := r.db.GetAccessPass(user.String(), txn)
	if err != nil {
		return nil, err
	}
	if pass != nil && pass.Active(nowUnix) {
		return nil, fmt.Errorf(
			"%w: expires at %d",
			governance.ErrAccessStillActive,
			pass.AccessExpires,
		)
	}
	if !feePayer.Valid() {
		feePayer = user
	}
	if pass == nil {
		pass = &models.AccessPass{User: user.String()}
	}
	pass.FeePayer = feePayer.String()
	pass.AmountPaid = types.Uint64(amount)
	pass.BurnTimestamp = nowUnix
	pass.AccessExpires = nowUnix + governance.Seconds(governance.AccessPassDuration)
	if err := r.db.SetAccessPass(pass, txn); err != nil {
		return nil, err
	}
	if _, err := r.db.AppendJournal(&models.JournalEntry{
		Time:         nowUnix,
		Operation:    OperationBurnForPass,
		Caller:       user.String(),
		Amount:       amount,
		Counterparty: r.vault.String(),
		Detail:       "fee_payer=" + feePayer.String(),
	}, txn); err != nil {
		return nil, err
	}
	if err := ledger.Settle(ctx, txn, r.ledger, ledger.Settlement{
		From:   user,
		To:     r.vault,
		Amount: amount,
	}); err != nil {
		return nil, err
	}
	r.logger.Info(
		"access pass granted",
		"component", "access",
		"user", user.String(),
		"amount", amount,
		"expires", pass.AccessExpires,
	)
	return pass, nil
}

// HasAccess reports whether user holds a pass that is active at now. Users
// without a pass have no access
func (r *Registry) HasAccess(
	txn *database.Txn,
	user governance.Identity,
	now time.Time,
) (bool, error) {
	pass, err := r.db.GetAccessPass(user.String(), txn)
	if err != nil {
		return false, err
	}
	if pass == nil {
		return false, nil
	}
	return pass.Active(now.Unix()), nil
}

// Get returns the pass for user or governance.ErrAccessPassNotFound
func (r *Registry) Get(
	txn *database.Txn,
	user governance.Identity,
) (*models.AccessPass, error) {
	pass, err := r.db.GetAccessPass(user.String(), txn)
	if err != nil {
		return nil, err
	}
	if pass == nil {
		return nil, governance.ErrAccessPassNotFound
	}
	return pass, nil
}

// ActivePasses counts passes active at now
func (r *Registry) ActivePasses(txn *database.Txn, now time.Time) (uint64, error) {
	return r.db.CountActiveAccessPasses(now.Unix(), txn)
}
