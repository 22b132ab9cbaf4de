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

package emergency_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/emergency"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/internal/test/testutil"
	"github.com/blinklabs-io/vaultgov/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vault     governance.Identity = "vault"
	admin     governance.Identity = "admin"
	initiator governance.Identity = "initiator"
)

var (
	genesis  = time.Unix(1_700_000_000, 0)
	unlocked = genesis.Add(governance.EmergencyTimeLock)
)

type fixture struct {
	t      *testing.T
	db     *database.Database
	ledger *ledger.MemoryLedger
	coord  *emergency.Coordinator
}

func newFixture(t *testing.T, vaultBalance uint64) *fixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	l := ledger.NewMemoryLedger(ledger.WithBalances(map[governance.Identity]uint64{
		vault:     vaultBalance,
		initiator: governance.EmergencySignerMinBalance,
	}))
	require.NoError(t, testutil.InTxn(db, func(txn *database.Txn) error {
		return db.SetEmergencyConfig(emergency.NewConfig(admin, genesis), txn)
	}))
	return &fixture{
		t:      t,
		db:     db,
		ledger: l,
		coord:  emergency.NewCoordinator(db, l, vault, nil),
	}
}

func (f *fixture) initiate(pct uint8, now time.Time) (*models.EmergencyUnlockRequest, error) {
	var req *models.EmergencyUnlockRequest
	err := testutil.InTxn(f.db, func(txn *database.Txn) error {
		var err error
		req, err = f.coord.Initiate(context.Background(), txn, initiator, pct, "test", now)
		return err
	})
	return req, err
}

func (f *fixture) sign(signer governance.Identity, id uint64, now time.Time) error {
	return testutil.InTxn(f.db, func(txn *database.Txn) error {
		_, err := f.coord.Sign(context.Background(), txn, signer, id, now)
		return err
	})
}

func (f *fixture) execute(id uint64, now time.Time) (*models.EmergencyUnlockRequest, error) {
	var req *models.EmergencyUnlockRequest
	err := testutil.InTxn(f.db, func(txn *database.Txn) error {
		var err error
		req, err = f.coord.Execute(context.Background(), txn, initiator, id, now)
		return err
	})
	return req, err
}

// signers funds n additional signers and has each sign the request
func (f *fixture) signers(id uint64, prefix string, n int, now time.Time) {
	f.t.Helper()
	for i := range n {
		signer := governance.Identity(fmt.Sprintf("%s-%d", prefix, i))
		require.NoError(f.t, f.ledger.Credit(signer, governance.EmergencySignerMinBalance))
		require.NoError(f.t, f.sign(signer, id, now))
	}
}

func TestInitiateTimeLock(t *testing.T) {
	f := newFixture(t, 1000)
	_, err := f.initiate(20, unlocked.Add(-time.Second))
	require.ErrorIs(t, err, governance.ErrTimeLockNotExpired)

	req, err := f.initiate(20, unlocked)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), req.UnlockId)
	assert.Equal(t, uint64(1), req.SignaturesCount)
	assert.Equal(
		t,
		unlocked.Unix()+governance.Seconds(governance.EmergencySignaturePeriod),
		req.SignatureDeadline,
	)

	sigs, err := f.coord.Signatures(nil, req.UnlockId)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, initiator.String(), sigs[0].Signer)

	// The initiator has already signed
	require.ErrorIs(t, f.sign(initiator, req.UnlockId, unlocked), governance.ErrAlreadySigned)
}

func TestInitiateValidation(t *testing.T) {
	f := newFixture(t, 1000)
	for _, pct := range []uint8{0, 14, 36, 100} {
		_, err := f.initiate(pct, unlocked)
		require.ErrorIs(t, err, governance.ErrInvalidUnlockPercentage)
	}
	err := testutil.InTxn(f.db, func(txn *database.Txn) error {
		_, err := f.coord.Initiate(
			context.Background(),
			txn,
			initiator,
			20,
			strings.Repeat("r", governance.MaxReasonLength+1),
			unlocked,
		)
		return err
	})
	require.ErrorIs(t, err, governance.ErrReasonTooLong)
	err = testutil.InTxn(f.db, func(txn *database.Txn) error {
		_, err := f.coord.Initiate(context.Background(), txn, "poor", 20, "", unlocked)
		return err
	})
	require.ErrorIs(t, err, governance.ErrInsufficientBalance)

	for _, pct := range []uint8{15, 35} {
		_, err := f.initiate(pct, unlocked)
		require.NoError(t, err)
	}
}

func TestExecuteRequiresFiveSignatures(t *testing.T) {
	f := newFixture(t, 1000)
	req, err := f.initiate(20, unlocked)
	require.NoError(t, err)
	f.signers(req.UnlockId, "a", 3, unlocked)

	_, err = f.execute(req.UnlockId, unlocked)
	require.ErrorIs(t, err, governance.ErrInsufficientSignatures)

	// Four signatures stay insufficient once the signature window closes
	closed := time.Unix(req.SignatureDeadline+1, 0)
	_, err = f.execute(req.UnlockId, closed)
	require.ErrorIs(t, err, governance.ErrInsufficientSignatures)
	require.NoError(t, f.ledger.Credit("late", governance.EmergencySignerMinBalance))
	require.ErrorIs(t, f.sign("late", req.UnlockId, closed), governance.ErrSignaturePeriodClosed)
	_, err = f.execute(req.UnlockId, closed.Add(governance.Day))
	require.ErrorIs(t, err, governance.ErrInsufficientSignatures)

	// A fresh request executes as soon as the fifth signature lands
	retry, err := f.initiate(20, closed)
	require.NoError(t, err)
	f.signers(retry.UnlockId, "b", 3, closed)
	_, err = f.execute(retry.UnlockId, closed)
	require.ErrorIs(t, err, governance.ErrInsufficientSignatures)
	lastSign := time.Unix(retry.SignatureDeadline, 0)
	f.signers(retry.UnlockId, "c", 1, lastSign)
	got, err := f.coord.Get(nil, retry.UnlockId)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got.SignaturesCount)
	got, err = f.execute(retry.UnlockId, lastSign)
	require.NoError(t, err)
	assert.True(t, got.Executed)
}

func TestExecuteReleasesPercentage(t *testing.T) {
	f := newFixture(t, 1000)
	req, err := f.initiate(20, unlocked)
	require.NoError(t, err)
	for i := range 4 {
		signer := governance.Identity(fmt.Sprintf("signer-%d", i))
		require.NoError(t, f.ledger.Credit(signer, governance.EmergencySignerMinBalance))
		require.NoError(t, f.sign(signer, req.UnlockId, unlocked))
	}

	// No deadline applies to execution
	executeAt := unlocked.Add(30 * governance.Day)
	got, err := f.execute(req.UnlockId, executeAt)
	require.NoError(t, err)
	assert.True(t, got.Executed)
	assert.Equal(t, uint64(200), uint64(got.UnlockAmount))
	assert.Equal(t, executeAt.Unix(), got.ExecutedAt)

	ctx := context.Background()
	vaultBal, _ := f.ledger.Balance(ctx, vault)
	adminBal, _ := f.ledger.Balance(ctx, admin)
	assert.Equal(t, uint64(800), vaultBal)
	assert.Equal(t, uint64(200), adminBal)

	cfg, err := f.db.GetEmergencyConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, executeAt.Unix(), cfg.LastUnlockTime)
	assert.Equal(t, uint64(1), cfg.CurrentUnlockId)

	_, err = f.execute(req.UnlockId, executeAt)
	require.ErrorIs(t, err, governance.ErrUnlockAlreadyExecuted)
	require.ErrorIs(t, f.sign("signer-0", req.UnlockId, unlocked), governance.ErrUnlockAlreadyExecuted)
}

func TestCooldownBoundary(t *testing.T) {
	f := newFixture(t, 1000)
	req, err := f.initiate(20, unlocked)
	require.NoError(t, err)
	f.signers(req.UnlockId, "signer", 4, unlocked)
	_, err = f.execute(req.UnlockId, unlocked)
	require.NoError(t, err)

	cooldownEnd := unlocked.Add(governance.EmergencyCooldown)
	_, err = f.initiate(20, cooldownEnd.Add(-time.Second))
	require.ErrorIs(t, err, governance.ErrCooldownActive)

	limits, err := f.coord.Limits(nil, cooldownEnd.Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, limits.CooldownExpired)
	assert.Equal(t, cooldownEnd.Unix(), limits.CooldownExpiresAt)

	next, err := f.initiate(20, cooldownEnd)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.UnlockId)
}

func TestSignWindowAndBalance(t *testing.T) {
	f := newFixture(t, 1000)
	req, err := f.initiate(20, unlocked)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Credit("late", governance.EmergencySignerMinBalance))
	require.NoError(t, f.ledger.Credit("poor", governance.EmergencySignerMinBalance-1))

	require.ErrorIs(t, f.sign("poor", req.UnlockId, unlocked), governance.ErrInsufficientBalance)
	require.ErrorIs(
		t,
		f.sign("late", req.UnlockId, time.Unix(req.SignatureDeadline+1, 0)),
		governance.ErrSignaturePeriodClosed,
	)
	require.NoError(t, f.sign("late", req.UnlockId, time.Unix(req.SignatureDeadline, 0)))
	require.ErrorIs(t, f.sign("late", 42, unlocked), governance.ErrUnlockRequestNotFound)
}

func TestSignatureAtTimeZeroStillBlocks(t *testing.T) {
	f := newFixture(t, 1000)
	req, err := f.initiate(20, unlocked)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Credit("zero", governance.EmergencySignerMinBalance))
	require.NoError(t, testutil.InTxn(f.db, func(txn *database.Txn) error {
		return f.db.CreateEmergencySignature(&models.EmergencySignature{
			UnlockId: req.UnlockId,
			Signer:   "zero",
			SignedAt: 0,
		}, txn)
	}))
	require.ErrorIs(t, f.sign("zero", req.UnlockId, unlocked), governance.ErrAlreadySigned)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, 1000)
	req, err := f.initiate(20, unlocked)
	require.NoError(t, err)

	cancel := func(caller governance.Identity) error {
		return testutil.InTxn(f.db, func(txn *database.Txn) error {
			_, err := f.coord.Cancel(context.Background(), txn, caller, req.UnlockId, unlocked)
			return err
		})
	}
	require.ErrorIs(t, cancel("mallory"), governance.ErrUnauthorized)
	require.NoError(t, cancel(admin))
	require.ErrorIs(t, cancel(initiator), governance.ErrUnlockAlreadyCancelled)
	_, err = f.execute(req.UnlockId, unlocked)
	require.ErrorIs(t, err, governance.ErrUnlockCancelled)
}

func TestLimitsBeforeAnyUnlock(t *testing.T) {
	f := newFixture(t, 0)
	limits, err := f.coord.Limits(nil, genesis)
	require.NoError(t, err)
	assert.False(t, limits.TimeLockExpired)
	assert.Equal(t, unlocked.Unix(), limits.TimeLockExpiresAt)
	assert.True(t, limits.CooldownExpired)
	assert.Zero(t, limits.CooldownExpiresAt)
	assert.Equal(t, uint64(governance.EmergencyMinSigners), limits.RequiredSignatures)
	assert.Equal(t, governance.EmergencySignerMinBalance, limits.MinBalanceThreshold)
}
