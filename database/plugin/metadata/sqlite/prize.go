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

// GetPrizeDistribution retrieves a distribution and its recipients in
// position order. Returns nil if it does not exist
func (d *MetadataStoreSqlite) GetPrizeDistribution(
	distributionId uint64,
	txn types.Txn,
) (*models.PrizeDistribution, error) {
	var ret models.PrizeDistribution
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	result := db.Preload("Recipients", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("distribution_id = ?", distributionId).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// CreatePrizeDistribution inserts a distribution together with its
// recipient rows
func (d *MetadataStoreSqlite) CreatePrizeDistribution(
	dist *models.PrizeDistribution,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return createUnique(db, dist)
}

// SetPrizeDistribution saves the distribution row. Recipients are immutable
// and are not touched
func (d *MetadataStoreSqlite) SetPrizeDistribution(
	dist *models.PrizeDistribution,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if dist.ID == 0 {
		return errors.New("prize distribution has not been created")
	}
	if result := db.Omit(clause.Associations).Save(dist); result.Error != nil {
		return result.Error
	}
	return nil
}
