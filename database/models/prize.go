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

type PrizeConfig struct {
	ID                uint         `gorm:"primarykey"`
	Admin             string       `gorm:"size:128;not null"`
	TotalDistributed  types.Uint64 `gorm:"not null"`
	CurrentSeason     uint64       `gorm:"not null"`
	SeasonStartTime   int64        `gorm:"not null"`
	DistributionCount uint64       `gorm:"not null"`
}

func (PrizeConfig) TableName() string {
	return "prize_config"
}

// PrizeDistribution is a batch of awards paid out of the vault in one
// aggregate transfer
type PrizeDistribution struct {
	ID             uint             `gorm:"primarykey"`
	DistributionId uint64           `gorm:"uniqueIndex;not null"`
	Admin          string           `gorm:"size:128;not null"`
	TotalAmount    types.Uint64     `gorm:"not null"`
	Reason         string           `gorm:"size:200"`
	CreatedAt      int64            `gorm:"autoCreateTime:false;not null"`
	Season         uint64           `gorm:"index;not null"`
	ProposalId     *uint64          `gorm:"index"`
	Executed       bool             `gorm:"not null"`
	Cancelled      bool             `gorm:"not null"`
	ExecutedAt     int64            `gorm:"not null"`
	Recipients     []PrizeRecipient `gorm:"foreignKey:DistributionId;references:DistributionId"`
}

func (PrizeDistribution) TableName() string {
	return "prize_distribution"
}

type PrizeRecipient struct {
	ID             uint         `gorm:"primarykey"`
	DistributionId uint64       `gorm:"uniqueIndex:idx_prize_recipient_position,priority:1;not null"`
	Position       uint         `gorm:"uniqueIndex:idx_prize_recipient_position,priority:2;not null"`
	Recipient      string       `gorm:"size:128;not null"`
	Amount         types.Uint64 `gorm:"not null"`
}

func (PrizeRecipient) TableName() string {
	return "prize_recipient"
}
