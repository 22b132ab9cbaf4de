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

package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/vaultgov/access"
	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/internal/test/testutil"
	"github.com/blinklabs-io/vaultgov/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	vault governance.Identity = "vault"
	alice governance.Identity = "alice"
)

var testStart = time.Unix(1_700_000_000, 0)

func setupRegistry(t *testing.T, l ledger.Ledger) (*access.Registry, *database.Database) {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	return access.NewRegistry(db, l, vault, nil), db
}

func grant(
	t *testing.T,
	reg *access.Registry,
	db *database.Database,
	user governance.Identity,
	amount uint64,
	now time.Time,
) (*models.AccessPass, error) {
	t.Helper()
	var pass *models.AccessPass
	err := testutil.InTxn(db, func(txn *database.Txn) error {
		var err error
		pass, err = reg.Grant(context.Background(), txn, user, "", amount, now)
		return err
	})
	return pass, err
}

func TestGrantSetsWindow(t *testing.T) {
	l := ledger.NewMemoryLedger(ledger.WithBalances(map[governance.Identity]uint64{
		alice: 2_000_000_000,
	}))
	reg, db := setupRegistry(t, l)

	pass, err := grant(t, reg, db, alice, governance.MinAccessCost, testStart)
	require.NoError(t, err)
	assert.Equal(t, testStart.Unix(), pass.BurnTimestamp)
	assert.Equal(
		t,
		pass.BurnTimestamp+governance.Seconds(governance.AccessPassDuration),
		pass.AccessExpires,
	)
	assert.Equal(t, "alice", pass.FeePayer)

	bal, _ := l.Balance(context.Background(), vault)
	assert.Equal(t, governance.MinAccessCost, bal)

	ok, err := reg.HasAccess(nil, alice, testStart.Add(governance.AccessPassDuration-time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
	// Expiry is exclusive
	ok, err = reg.HasAccess(nil, alice, testStart.Add(governance.AccessPassDuration))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantRejectsStacking(t *testing.T) {
	l := ledger.NewMemoryLedger(ledger.WithBalances(map[governance.Identity]uint64{
		alice: 3_000_000_000,
	}))
	reg, db := setupRegistry(t, l)

	_, err := grant(t, reg, db, alice, governance.MinAccessCost, testStart)
	require.NoError(t, err)
	_, err = grant(t, reg, db, alice, governance.MinAccessCost, testStart.Add(29*governance.Day))
	require.ErrorIs(t, err, governance.ErrAccessStillActive)

	// Renewal is allowed once the pass has expired
	pass, err := grant(t, reg, db, alice, governance.MaxAccessCost, testStart.Add(governance.AccessPassDuration))
	require.NoError(t, err)
	assert.Equal(t, testStart.Add(governance.AccessPassDuration).Unix(), pass.BurnTimestamp)

	bal, _ := l.Balance(context.Background(), vault)
	assert.Equal(t, governance.MinAccessCost+governance.MaxAccessCost, bal)
}

func TestGrantAmountBounds(t *testing.T) {
	l := ledger.NewMemoryLedger(ledger.WithBalances(map[governance.Identity]uint64{
		alice: 5_000_000_000,
	}))
	reg, db := setupRegistry(t, l)

	for _, amount := range []uint64{0, governance.MinAccessCost - 1, governance.MaxAccessCost + 1} {
		_, err := grant(t, reg, db, alice, amount, testStart)
		require.ErrorIs(t, err, governance.ErrInvalidBurnAmount)
	}
	_, err := grant(t, reg, db, "", governance.MinAccessCost, testStart)
	require.ErrorIs(t, err, governance.ErrInvalidIdentity)
}

func TestHasAccessWithoutPass(t *testing.T) {
	reg, _ := setupRegistry(t, ledger.NewMemoryLedger())
	ok, err := reg.HasAccess(nil, "nobody", testStart)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = reg.Get(nil, "nobody")
	require.ErrorIs(t, err, governance.ErrAccessPassNotFound)
}

func TestGrantTransferFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLedger := testutil.NewMockLedger(ctrl)
	mockLedger.EXPECT().
		Transfer(gomock.Any(), alice, vault, governance.MinAccessCost).
		Return(governance.ErrInsufficientFunds)
	reg, db := setupRegistry(t, mockLedger)

	_, err := grant(t, reg, db, alice, governance.MinAccessCost, testStart)
	require.ErrorIs(t, err, governance.ErrInsufficientFunds)

	_, err = reg.Get(nil, alice)
	require.ErrorIs(t, err, governance.ErrAccessPassNotFound)
	entries, err := db.Journal(0, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestActivePasses(t *testing.T) {
	l := ledger.NewMemoryLedger(ledger.WithBalances(map[governance.Identity]uint64{
		alice: 1_000_000_000,
		"bob": 1_000_000_000,
	}))
	reg, db := setupRegistry(t, l)
	_, err := grant(t, reg, db, alice, governance.MinAccessCost, testStart)
	require.NoError(t, err)
	_, err = grant(t, reg, db, "bob", governance.MinAccessCost, testStart.Add(governance.Day))
	require.NoError(t, err)

	count, err := reg.ActivePasses(nil, testStart.Add(governance.AccessPassDuration))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
