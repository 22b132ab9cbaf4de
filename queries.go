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

package vaultgov

import (
	"context"
	"time"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/emergency"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/proposal"
)

// HasAccess reports whether user holds an active access pass
func (e *Engine) HasAccess(ctx context.Context, user governance.Identity) (bool, error) {
	var ret bool
	err := e.query(ctx, "has_access", func(_ context.Context, txn *database.Txn, now time.Time) error {
		var err error
		ret, err = e.access.HasAccess(txn, user, now)
		return err
	})
	return ret, err
}

func (e *Engine) GetAccessPass(
	ctx context.Context,
	user governance.Identity,
) (*models.AccessPass, error) {
	var ret *models.AccessPass
	err := e.query(ctx, "get_access_pass", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.access.Get(txn, user)
		return err
	})
	return ret, err
}

func (e *Engine) GlobalConfig(ctx context.Context) (*models.GlobalConfig, error) {
	var ret *models.GlobalConfig
	err := e.query(ctx, "get_global_config", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.globalConfig(txn)
		return err
	})
	return ret, err
}

func (e *Engine) GetProposal(ctx context.Context, proposalId uint64) (*models.Proposal, error) {
	var ret *models.Proposal
	err := e.query(ctx, "get_proposal", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.proposals.Get(txn, proposalId)
		return err
	})
	return ret, err
}

// ProposalStatus derives the lifecycle status of a proposal at the current
// engine time
func (e *Engine) ProposalStatus(
	ctx context.Context,
	proposalId uint64,
) (governance.ProposalStatus, error) {
	var ret governance.ProposalStatus
	err := e.query(ctx, "proposal_status", func(_ context.Context, txn *database.Txn, now time.Time) error {
		p, err := e.proposals.Get(txn, proposalId)
		if err != nil {
			return err
		}
		ret = proposal.Status(p, now)
		return nil
	})
	return ret, err
}

func (e *Engine) HasVoted(
	ctx context.Context,
	user governance.Identity,
	proposalId uint64,
) (bool, error) {
	var ret bool
	err := e.query(ctx, "has_voted", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		if _, err := e.proposals.Get(txn, proposalId); err != nil {
			return err
		}
		var err error
		ret, err = e.proposals.HasVoted(txn, user, proposalId)
		return err
	})
	return ret, err
}

func (e *Engine) Votes(ctx context.Context, proposalId uint64) ([]models.Vote, error) {
	var ret []models.Vote
	err := e.query(ctx, "get_votes", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.proposals.Votes(txn, proposalId)
		return err
	})
	return ret, err
}

func (e *Engine) VotingEligibility(
	ctx context.Context,
	user governance.Identity,
) (*proposal.Eligibility, error) {
	var ret *proposal.Eligibility
	err := e.query(ctx, "voting_eligibility", func(ctx context.Context, txn *database.Txn, now time.Time) error {
		var err error
		ret, err = e.proposals.Eligibility(ctx, txn, user, now)
		return err
	})
	return ret, err
}

func (e *Engine) GetUnlockRequest(
	ctx context.Context,
	unlockId uint64,
) (*models.EmergencyUnlockRequest, error) {
	var ret *models.EmergencyUnlockRequest
	err := e.query(ctx, "get_unlock_request", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.emergency.Get(txn, unlockId)
		return err
	})
	return ret, err
}

func (e *Engine) UnlockSignatures(
	ctx context.Context,
	unlockId uint64,
) ([]models.EmergencySignature, error) {
	var ret []models.EmergencySignature
	err := e.query(ctx, "get_unlock_signatures", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.emergency.Signatures(txn, unlockId)
		return err
	})
	return ret, err
}

func (e *Engine) EmergencyLimits(ctx context.Context) (*emergency.Limits, error) {
	var ret *emergency.Limits
	err := e.query(ctx, "emergency_limits", func(_ context.Context, txn *database.Txn, now time.Time) error {
		var err error
		ret, err = e.emergency.Limits(txn, now)
		return err
	})
	return ret, err
}

func (e *Engine) GetDistribution(
	ctx context.Context,
	distributionId uint64,
) (*models.PrizeDistribution, error) {
	var ret *models.PrizeDistribution
	err := e.query(ctx, "get_distribution", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.prizes.Get(txn, distributionId)
		return err
	})
	return ret, err
}

// Journal returns up to limit audit entries with a sequence number greater
// than afterSeq. A limit of zero returns every remaining entry
func (e *Engine) Journal(
	ctx context.Context,
	afterSeq uint64,
	limit int,
) ([]models.JournalEntry, error) {
	var ret []models.JournalEntry
	err := e.query(ctx, "journal", func(_ context.Context, txn *database.Txn, _ time.Time) error {
		var err error
		ret, err = e.db.Journal(afterSeq, limit, txn)
		return err
	})
	return ret, err
}

// PlatformStats is a snapshot of engine-wide counters
type PlatformStats struct {
	// TotalBurned is the current vault balance
	TotalBurned        uint64             `json:"total_burned"`
	TotalDistributed   uint64             `json:"total_distributed"`
	AccessCost         uint64             `json:"access_cost"`
	FeeMode            governance.FeeMode `json:"fee_mode"`
	CurrentSeason      uint64             `json:"current_season"`
	SeasonStartTime    int64              `json:"season_start_time"`
	TotalProposals     uint64             `json:"total_proposals"`
	TotalDistributions uint64             `json:"total_distributions"`
	ActivePasses       uint64             `json:"active_passes"`
	EmergencyUnlocks   uint64             `json:"emergency_unlocks"`
}

func (e *Engine) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	var ret *PlatformStats
	err := e.query(ctx, "platform_stats", func(ctx context.Context, txn *database.Txn, now time.Time) error {
		global, err := e.globalConfig(txn)
		if err != nil {
			return err
		}
		prizeCfg, err := e.prizes.Config(txn)
		if err != nil {
			return err
		}
		emergencyCfg, err := e.db.GetEmergencyConfig(txn)
		if err != nil {
			return err
		}
		activePasses, err := e.access.ActivePasses(txn, now)
		if err != nil {
			return err
		}
		vaultBalance, err := e.ledger.Balance(ctx, e.config.vault)
		if err != nil {
			return err
		}
		ret = &PlatformStats{
			TotalBurned:        vaultBalance,
			TotalDistributed:   uint64(prizeCfg.TotalDistributed),
			AccessCost:         uint64(global.AccessCost),
			FeeMode:            governance.FeeMode(global.FeeMode),
			CurrentSeason:      prizeCfg.CurrentSeason,
			SeasonStartTime:    prizeCfg.SeasonStartTime,
			TotalProposals:     global.NextProposalId - governance.FirstProposalId,
			TotalDistributions: prizeCfg.DistributionCount,
			ActivePasses:       activePasses,
			EmergencyUnlocks:   emergencyCfg.CurrentUnlockId,
		}
		return nil
	})
	return ret, err
}
