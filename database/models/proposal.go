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

// Proposal is a DAO proposal. ProposalId is assigned from
// GlobalConfig.NextProposalId and is never reused
type Proposal struct {
	ID                uint         `gorm:"primarykey"`
	ProposalId        uint64       `gorm:"uniqueIndex;not null"`
	Proposer          string       `gorm:"size:128;index;not null"`
	Type              uint8        `gorm:"not null"`
	Description       string       `gorm:"size:200"`
	TargetValue       types.Uint64 `gorm:"not null"`
	CreatedAt         int64        `gorm:"autoCreateTime:false;not null"`
	VotingDeadline    int64        `gorm:"not null"`
	ExecutionDeadline int64        `gorm:"not null"`
	YesVotes          types.Uint64 `gorm:"not null"`
	NoVotes           types.Uint64 `gorm:"not null"`
	TotalVoters       uint64       `gorm:"not null"`
	Executed          bool         `gorm:"not null"`
	Cancelled         bool         `gorm:"not null"`
	// Set once a prize distribution has been submitted under this proposal
	ConsumedBy *uint64
}

func (Proposal) TableName() string {
	return "proposal"
}

// Vote is a single voter's ballot on a proposal. The unique index on
// (proposal_id, voter) is the authoritative double-vote guard
type Vote struct {
	ID          uint         `gorm:"primarykey"`
	ProposalId  uint64       `gorm:"uniqueIndex:idx_vote_unique,priority:1;not null"`
	Voter       string       `gorm:"size:128;uniqueIndex:idx_vote_unique,priority:2;not null"`
	Choice      bool         `gorm:"not null"`
	VotingPower types.Uint64 `gorm:"not null"`
	CastAt      int64        `gorm:"not null"`
}

func (Vote) TableName() string {
	return "vote"
}
