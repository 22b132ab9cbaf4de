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

package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/plugin/blob/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbConfig = &database.Config{
	BlobCacheSize: 1 << 20,
	Logger:        nil,
	PromRegistry:  nil,
	DataDir:       "",
}

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(dbConfig)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

func TestTxnDoCommitsBothStores(t *testing.T) {
	db := newTestDatabase(t)

	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetAccessPass(&models.AccessPass{
			User:          "alice",
			AmountPaid:    500_000_000,
			AccessExpires: 100,
		}, txn); err != nil {
			return err
		}
		_, err := db.AppendJournal(&models.JournalEntry{
			Operation: "burn_for_pass",
			Caller:    "alice",
			Amount:    500_000_000,
		}, txn)
		return err
	})
	require.NoError(t, err)

	pass, err := db.GetAccessPass("alice", nil)
	require.NoError(t, err)
	require.NotNil(t, pass)

	entries, err := db.Journal(0, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, "burn_for_pass", entries[0].Operation)
	assert.Equal(t, uint64(500_000_000), entries[0].Amount)

	metaTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Positive(t, metaTs)
	assert.Equal(t, metaTs, blobTs)
}

func TestTxnDoRollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	errTest := errors.New("test failure")

	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetAccessPass(&models.AccessPass{
			User:          "bob",
			AccessExpires: 100,
		}, txn); err != nil {
			return err
		}
		if _, err := db.AppendJournal(&models.JournalEntry{Operation: "x"}, txn); err != nil {
			return err
		}
		return errTest
	})
	require.ErrorIs(t, err, errTest)

	pass, err := db.GetAccessPass("bob", nil)
	require.NoError(t, err)
	assert.Nil(t, pass)
	entries, err := db.Journal(0, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournalPaging(t *testing.T) {
	db := newTestDatabase(t)
	for i := range 5 {
		err := db.Transaction(true).Do(func(txn *database.Txn) error {
			_, err := db.AppendJournal(&models.JournalEntry{
				Operation: "vote",
				RecordId:  uint64(i), //nolint:gosec
			}, txn)
			return err
		})
		require.NoError(t, err)
	}
	entries, err := db.Journal(2, 2, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(3), entries[0].Seq)
	assert.Equal(t, uint64(4), entries[1].Seq)

	entries, err = db.Journal(4, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(5), entries[0].Seq)
}

func TestAppendJournalRequiresTxn(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.AppendJournal(&models.JournalEntry{}, nil)
	require.Error(t, err)
}

func TestCommitTimestampMismatch(t *testing.T) {
	dir := t.TempDir()
	cfg := &database.Config{DataDir: dir}
	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetGlobalConfig(&models.GlobalConfig{Admin: "admin"}, txn)
	}))
	require.NoError(t, db.Close())

	// Move the journal commit timestamp out of step with the state store
	blobStore, err := badger.New(badger.WithDataDir(dir), badger.WithGc(false))
	require.NoError(t, err)
	blobTxn := blobStore.NewTransaction(true)
	require.NoError(t, blobStore.SetCommitTimestamp(1, blobTxn))
	require.NoError(t, blobTxn.Commit())
	require.NoError(t, blobStore.Close())

	db, err = database.New(cfg)
	require.Error(t, err)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(1), tsErr.BlobTimestamp)
	require.NoError(t, db.Close())
}

func TestTxnAbortFuncsRunInReverseOnError(t *testing.T) {
	db := newTestDatabase(t)
	errTest := errors.New("test failure")
	var order []int

	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		txn.OnAbort(func() error { order = append(order, 1); return nil })
		txn.OnAbort(func() error { order = append(order, 2); return nil })
		return errTest
	})
	require.ErrorIs(t, err, errTest)
	assert.Equal(t, []int{2, 1}, order)
}

func TestTxnAbortFuncsSkippedOnCommit(t *testing.T) {
	db := newTestDatabase(t)
	ran := false
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		txn.OnAbort(func() error { ran = true; return nil })
		return db.SetAccessPass(&models.AccessPass{User: "carol", AccessExpires: 1}, txn)
	})
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestTxnAbortFuncsRunOnCommitFailure(t *testing.T) {
	db := newTestDatabase(t)
	errUndo := errors.New("undo failed")
	ran := false

	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetAccessPass(&models.AccessPass{User: "dave", AccessExpires: 1}, txn); err != nil {
			return err
		}
		txn.OnAbort(func() error { ran = true; return errUndo })
		// The journal store going away makes the commit fail
		return db.Blob().Close()
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit failed")
	require.ErrorIs(t, err, errUndo)
	assert.True(t, ran)

	pass, err := db.GetAccessPass("dave", nil)
	require.NoError(t, err)
	assert.Nil(t, pass)
}

func TestCommitUsesConfiguredClock(t *testing.T) {
	stamp := time.UnixMilli(1_700_000_000_123)
	db, err := database.New(&database.Config{Now: func() time.Time { return stamp }})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetGlobalConfig(&models.GlobalConfig{Admin: "admin"}, txn)
	}))
	metaTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, stamp.UnixMilli(), metaTs)
}
