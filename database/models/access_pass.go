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

// AccessPass is the most recent paid access window for a user
type AccessPass struct {
	ID            uint         `gorm:"primarykey"`
	User          string       `gorm:"size:128;uniqueIndex;not null"`
	FeePayer      string       `gorm:"size:128"`
	AmountPaid    types.Uint64 `gorm:"not null"`
	BurnTimestamp int64        `gorm:"not null"`
	AccessExpires int64        `gorm:"index;not null"`
}

func (AccessPass) TableName() string {
	return "access_pass"
}

// Active reports whether the pass grants access at the given unix time
func (p *AccessPass) Active(now int64) bool {
	return now < p.AccessExpires
}
