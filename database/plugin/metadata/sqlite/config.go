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

var singletonConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id"}},
	UpdateAll: true,
}

// getSingleton loads the singleton row of the given model, returning
// notFound if the row does not exist
func (d *MetadataStoreSqlite) getSingleton(
	dest any,
	notFound error,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Where("id = ?", models.SingletonRowId).First(dest); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return notFound
		}
		return result.Error
	}
	return nil
}

func (d *MetadataStoreSqlite) setSingleton(value any, txn types.Txn) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Clauses(singletonConflict).Create(value); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetGlobalConfig returns the global config row
func (d *MetadataStoreSqlite) GetGlobalConfig(
	txn types.Txn,
) (*models.GlobalConfig, error) {
	var ret models.GlobalConfig
	if err := d.getSingleton(&ret, models.ErrGlobalConfigNotFound, txn); err != nil {
		return nil, err
	}
	return &ret, nil
}

// SetGlobalConfig creates or replaces the global config row
func (d *MetadataStoreSqlite) SetGlobalConfig(
	cfg *models.GlobalConfig,
	txn types.Txn,
) error {
	cfg.ID = models.SingletonRowId
	return d.setSingleton(cfg, txn)
}

func (d *MetadataStoreSqlite) GetEmergencyConfig(
	txn types.Txn,
) (*models.EmergencyConfig, error) {
	var ret models.EmergencyConfig
	if err := d.getSingleton(&ret, models.ErrEmergencyConfigNotFound, txn); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) SetEmergencyConfig(
	cfg *models.EmergencyConfig,
	txn types.Txn,
) error {
	cfg.ID = models.SingletonRowId
	return d.setSingleton(cfg, txn)
}

func (d *MetadataStoreSqlite) GetPrizeConfig(
	txn types.Txn,
) (*models.PrizeConfig, error) {
	var ret models.PrizeConfig
	if err := d.getSingleton(&ret, models.ErrPrizeConfigNotFound, txn); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) SetPrizeConfig(
	cfg *models.PrizeConfig,
	txn types.Txn,
) error {
	cfg.ID = models.SingletonRowId
	return d.setSingleton(cfg, txn)
}
