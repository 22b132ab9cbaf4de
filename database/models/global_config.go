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

// GlobalConfig holds the engine-wide policy parameters. There is exactly one
// row, created by initialization
type GlobalConfig struct {
	ID             uint         `gorm:"primarykey"`
	Admin          string       `gorm:"size:128;not null"`
	Sponsor        string       `gorm:"size:128"`
	AccessCost     types.Uint64 `gorm:"not null"`
	FeeMode        uint8        `gorm:"not null"`
	NextProposalId uint64       `gorm:"not null"`
	InitializedAt  int64        `gorm:"not null"`
}

func (GlobalConfig) TableName() string {
	return "global_config"
}
