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

package badger_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/vaultgov/database/plugin/blob/badger"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...badger.BlobStoreBadgerOptionFunc) *badger.BlobStoreBadger {
	t.Helper()
	store, err := badger.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestInMemoryStoreSetGet(t *testing.T) {
	store := newTestStore(t)
	assert.Empty(t, store.DataDir())

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err := store.Get(readTxn, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)

	_, err = store.Get(readTxn, []byte("missing"))
	assert.True(t, errors.Is(err, types.ErrBlobKeyNotFound))
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Rollback())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	_, err := store.Get(readTxn, []byte("key"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestFinishedTxnRejected(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, txn.Commit())
	require.Error(t, store.Set(txn, []byte("key"), []byte("value")))
	require.ErrorIs(t, store.Set(nil, []byte("key"), nil), types.ErrNilTxn)
}

func TestIteratorPrefixOrder(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	for _, seq := range []uint64{3, 1, 2} {
		require.NoError(t, store.Set(txn, types.JournalKey(seq), []byte{byte(seq)}))
	}
	require.NoError(t, store.Set(txn, []byte("other"), []byte("x")))
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	prefix := []byte(types.JournalKeyPrefix)
	iter := store.NewIterator(readTxn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var seqs []uint64
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		seq, ok := types.JournalSeqFromKey(iter.Item().Key())
		require.True(t, ok)
		seqs = append(seqs, seq)
	}
	assert.Equal(t, []uint64{1, 2, 3}, seqs)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1767225600000, txn))
	require.NoError(t, txn.Commit())

	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1767225600000), ts)
}

func TestDiskStoreWithMetrics(t *testing.T) {
	dir := t.TempDir()
	registry := prometheus.NewRegistry()
	store := newTestStore(
		t,
		badger.WithDataDir(dir),
		badger.WithPromRegistry(registry),
		badger.WithGc(false),
	)
	assert.Equal(t, dir, store.DataDir())
	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "vaultgov_blob_lsm_size_bytes")
}
