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

	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetAccessPass returns the access pass for a user, or nil if the user has
// never bought one
func (d *MetadataStoreSqlite) GetAccessPass(
	user string,
	txn types.Txn,
) (*models.AccessPass, error) {
	var ret models.AccessPass
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("user = ?", user).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// SetAccessPass creates or refreshes the access pass for pass.User
func (d *MetadataStoreSqlite) SetAccessPass(
	pass *models.AccessPass,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "user"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"fee_payer",
			"amount_paid",
			"burn_timestamp",
			"access_expires",
		}),
	}
	if result := db.Clauses(onConflict).Create(pass); result.Error != nil {
		return result.Error
	}
	return nil
}

// CountActiveAccessPasses returns the number of passes still active at now
func (d *MetadataStoreSqlite) CountActiveAccessPasses(
	now int64,
	txn types.Txn,
) (uint64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.AccessPass{}).
		Where("access_expires > ?", now).
		Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil //nolint:gosec
}
