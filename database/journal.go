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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/fxamacker/cbor/v2"
)

var (
	journalEncMode cbor.EncMode
	journalDecMode cbor.DecMode
)

func init() {
	var err error
	journalEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("database: CBOR encoder initialization failed: " + err.Error())
	}
	journalDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("database: CBOR decoder initialization failed: " + err.Error())
	}
}

// AppendJournal assigns the next sequence number to entry and stores it in
// the blob side of txn. The entry becomes visible when txn commits
func (d *Database) AppendJournal(entry *models.JournalEntry, txn *Txn) (uint64, error) {
	if txn == nil || txn.Blob() == nil {
		return 0, types.ErrNilTxn
	}
	var lastSeq uint64
	val, err := d.blob.Get(txn.Blob(), []byte(types.JournalSequenceKey))
	switch {
	case err == nil:
		lastSeq = types.BytesToUint64(val)
	case errors.Is(err, types.ErrBlobKeyNotFound):
	default:
		return 0, fmt.Errorf("read journal sequence: %w", err)
	}
	entry.Seq = lastSeq + 1
	data, err := journalEncMode.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("encode journal entry: %w", err)
	}
	if err := d.blob.Set(txn.Blob(), types.JournalKey(entry.Seq), data); err != nil {
		return 0, err
	}
	if err := d.blob.Set(
		txn.Blob(),
		[]byte(types.JournalSequenceKey),
		types.Uint64ToBytes(entry.Seq),
	); err != nil {
		return 0, err
	}
	return entry.Seq, nil
}

// Journal returns up to limit journal entries with a sequence number greater
// than afterSeq, oldest first. A limit of 0 returns all remaining entries
func (d *Database) Journal(afterSeq uint64, limit int, txn *Txn) ([]models.JournalEntry, error) {
	if txn == nil {
		txn = NewTxn(d, false)
		defer txn.Release()
	}
	if txn.Blob() == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	prefix := []byte(types.JournalKeyPrefix)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []models.JournalEntry
	for iter.Seek(types.JournalKey(afterSeq + 1)); iter.ValidForPrefix(prefix); iter.Next() {
		if limit > 0 && len(ret) >= limit {
			break
		}
		item := iter.Item()
		if _, ok := types.JournalSeqFromKey(item.Key()); !ok {
			continue
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var entry models.JournalEntry
		if err := journalDecMode.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		ret = append(ret, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
