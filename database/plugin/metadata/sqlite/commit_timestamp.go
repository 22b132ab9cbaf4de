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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/vaultgov/database/types"
	"gorm.io/gorm"
)

// commitMarker is a single-row table holding the commit timestamp shared
// with the journal store
type commitMarker struct {
	ID        uint `gorm:"primarykey"`
	Timestamp int64
}

const commitMarkerRowId = 1

func (commitMarker) TableName() string {
	return "commit_marker"
}

// GetCommitTimestamp returns the last commit marker, or 0 before the first
// commit
func (d *MetadataStoreSqlite) GetCommitTimestamp() (int64, error) {
	var marker commitMarker
	if err := d.DB().Take(&marker, commitMarkerRowId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return marker.Timestamp, nil
}

func (d *MetadataStoreSqlite) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(&commitMarker{
		ID:        commitMarkerRowId,
		Timestamp: timestamp,
	}).Error
}
