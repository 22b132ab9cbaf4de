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
)

func (d *MetadataStoreSqlite) GetUnlockRequest(
	unlockId uint64,
	txn types.Txn,
) (*models.EmergencyUnlockRequest, error) {
	var ret models.EmergencyUnlockRequest
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("unlock_id = ?", unlockId).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) CreateUnlockRequest(
	req *models.EmergencyUnlockRequest,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return createUnique(db, req)
}

func (d *MetadataStoreSqlite) SetUnlockRequest(
	req *models.EmergencyUnlockRequest,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if req.ID == 0 {
		return errors.New("unlock request has not been created")
	}
	if result := db.Save(req); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetEmergencySignature returns the signature of signer on an unlock
// request, or nil if there is none
func (d *MetadataStoreSqlite) GetEmergencySignature(
	unlockId uint64,
	signer string,
	txn types.Txn,
) (*models.EmergencySignature, error) {
	var ret models.EmergencySignature
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"unlock_id = ? AND signer = ?",
		unlockId,
		signer,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

func (d *MetadataStoreSqlite) GetEmergencySignatures(
	unlockId uint64,
	txn types.Txn,
) ([]models.EmergencySignature, error) {
	var ret []models.EmergencySignature
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("unlock_id = ?", unlockId).
		Order("id").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CreateEmergencySignature records a signature. Returns
// types.ErrDuplicateKey if the signer has already signed the request
func (d *MetadataStoreSqlite) CreateEmergencySignature(
	sig *models.EmergencySignature,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return createUnique(db, sig)
}
