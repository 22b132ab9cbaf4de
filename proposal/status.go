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

package proposal

import (
	"context"
	"time"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/governance"
)

// Status derives the lifecycle status of a proposal at the given time.
// Terminal flags win over time windows
func Status(p *models.Proposal, now time.Time) governance.ProposalStatus {
	nowUnix := now.Unix()
	switch {
	case p.Cancelled:
		return governance.ProposalStatusCancelled
	case p.Executed:
		return governance.ProposalStatusExecuted
	case nowUnix <= p.VotingDeadline:
		return governance.ProposalStatusVotingOpen
	case nowUnix <= p.ExecutionDeadline:
		if governance.QuorumMet(
			p.TotalVoters,
			uint64(p.YesVotes),
			uint64(p.NoVotes),
		) {
			return governance.ProposalStatusReadyForExecution
		}
		return governance.ProposalStatusFailed
	default:
		return governance.ProposalStatusExpired
	}
}

// Eligibility summarizes what a user may currently do in governance
type Eligibility struct {
	HasActiveAccess bool   `json:"has_active_access"`
	Balance         uint64 `json:"balance"`
	CanVote         bool   `json:"can_vote"`
	CanPropose      bool   `json:"can_propose"`
	VotingPower     uint64 `json:"voting_power"`
}

func (s *Store) Eligibility(
	ctx context.Context,
	txn *database.Txn,
	user governance.Identity,
	now time.Time,
) (*Eligibility, error) {
	hasAccess, err := s.access.HasAccess(txn, user, now)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.Balance(ctx, user)
	if err != nil {
		return nil, err
	}
	ret := &Eligibility{
		HasActiveAccess: hasAccess,
		Balance:         balance,
		CanVote:         hasAccess && balance >= governance.VotingMinBalance,
		CanPropose:      hasAccess && balance >= governance.ProposalMinBalance,
	}
	if ret.CanVote {
		ret.VotingPower = balance
	}
	return ret, nil
}
