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
	"fmt"
	"time"
)

// CommitTimestampError reports that the state and the journal were last
// committed by different transactions, as after a partial commit
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"state committed at %s but journal committed at %s",
		time.UnixMilli(e.MetadataTimestamp).UTC().Format(time.RFC3339Nano),
		time.UnixMilli(e.BlobTimestamp).UTC().Format(time.RFC3339Nano),
	)
}

// checkCommitTimestamp compares the commit marker of both stores. A fresh
// database has no marker and passes
func (d *Database) checkCommitTimestamp() error {
	stateTs, err := d.Metadata().GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read state commit marker: %w", err)
	}
	journalTs, err := d.Blob().GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read journal commit marker: %w", err)
	}
	if stateTs == 0 && journalTs == 0 {
		return nil
	}
	if stateTs != journalTs {
		return CommitTimestampError{
			MetadataTimestamp: stateTs,
			BlobTimestamp:     journalTs,
		}
	}
	return nil
}

func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.Metadata().SetCommitTimestamp(timestamp, txn.Metadata()); err != nil {
		return fmt.Errorf("state commit marker: %w", err)
	}
	if err := d.Blob().SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return fmt.Errorf("journal commit marker: %w", err)
	}
	return nil
}
