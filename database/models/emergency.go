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

package models

import "github.com/blinklabs-io/vaultgov/database/types"

// EmergencyConfig holds the time lock and cooldown state for emergency
// vault releases
type EmergencyConfig struct {
	ID                  uint         `gorm:"primarykey"`
	Admin               string       `gorm:"size:128;not null"`
	TimeLockStart       int64        `gorm:"not null"`
	TimeLockDuration    int64        `gorm:"not null"`
	LastUnlockTime      int64        `gorm:"not null"`
	CooldownPeriod      int64        `gorm:"not null"`
	MinSigners          uint64       `gorm:"not null"`
	MinBalanceThreshold types.Uint64 `gorm:"not null"`
	CurrentUnlockId     uint64       `gorm:"not null"`
	NextRequestId       uint64       `gorm:"not null"`
}

func (EmergencyConfig) TableName() string {
	return "emergency_config"
}

type EmergencyUnlockRequest struct {
	ID                uint         `gorm:"primarykey"`
	UnlockId          uint64       `gorm:"uniqueIndex;not null"`
	Initiator         string       `gorm:"size:128;not null"`
	Percentage        uint8        `gorm:"not null"`
	Reason            string       `gorm:"size:200"`
	CreatedAt         int64        `gorm:"autoCreateTime:false;not null"`
	SignatureDeadline int64        `gorm:"not null"`
	SignaturesCount   uint64       `gorm:"not null"`
	Executed          bool         `gorm:"not null"`
	Cancelled         bool         `gorm:"not null"`
	ExecutedAt        int64        `gorm:"not null"`
	UnlockAmount      types.Uint64 `gorm:"not null"`
}

func (EmergencyUnlockRequest) TableName() string {
	return "emergency_unlock_request"
}

// EmergencySignature records one signer's approval. The row itself is the
// double-sign guard, regardless of SignedAt
type EmergencySignature struct {
	ID               uint         `gorm:"primarykey"`
	UnlockId         uint64       `gorm:"uniqueIndex:idx_signature_unique,priority:1;not null"`
	Signer           string       `gorm:"size:128;uniqueIndex:idx_signature_unique,priority:2;not null"`
	SignedAt         int64        `gorm:"not null"`
	BalanceAtSigning types.Uint64 `gorm:"not null"`
}

func (EmergencySignature) TableName() string {
	return "emergency_signature"
}
