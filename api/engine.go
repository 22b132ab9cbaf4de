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

package api

import (
	"context"

	"github.com/blinklabs-io/vaultgov"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/emergency"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/prize"
	"github.com/blinklabs-io/vaultgov/proposal"
)

// Engine is the set of governance operations the API server exposes. It is
// satisfied by *vaultgov.Engine
type Engine interface {
	Initialize(ctx context.Context, admin, sponsor governance.Identity) error

	BurnForPass(ctx context.Context, user governance.Identity, amount uint64) (*models.AccessPass, error)
	BurnForPassSponsored(ctx context.Context, user governance.Identity, amount uint64) (*models.AccessPass, error)
	ChangeAccessCost(ctx context.Context, caller governance.Identity, cost uint64) error
	ChangeFeeMode(ctx context.Context, caller governance.Identity, mode governance.FeeMode) error
	ChangeSponsor(ctx context.Context, caller, sponsor governance.Identity) error

	CreateProposal(
		ctx context.Context,
		proposer governance.Identity,
		proposalType governance.ProposalType,
		description string,
		targetValue uint64,
	) (*models.Proposal, error)
	Vote(ctx context.Context, voter governance.Identity, proposalId uint64, choice bool) (*models.Vote, error)
	ExecuteProposal(ctx context.Context, caller governance.Identity, proposalId uint64) (*models.Proposal, error)
	CancelProposal(ctx context.Context, caller governance.Identity, proposalId uint64) (*models.Proposal, error)

	InitiateEmergencyUnlock(
		ctx context.Context,
		initiator governance.Identity,
		percentage uint8,
		reason string,
	) (*models.EmergencyUnlockRequest, error)
	SignEmergencyUnlock(ctx context.Context, signer governance.Identity, unlockId uint64) (*models.EmergencyUnlockRequest, error)
	ExecuteEmergencyUnlock(ctx context.Context, caller governance.Identity, unlockId uint64) (*models.EmergencyUnlockRequest, error)
	CancelEmergencyUnlock(ctx context.Context, caller governance.Identity, unlockId uint64) (*models.EmergencyUnlockRequest, error)

	SubmitPrizeDistribution(
		ctx context.Context,
		caller governance.Identity,
		awards []prize.Award,
		reason string,
		proposalId *uint64,
	) (*models.PrizeDistribution, error)
	ExecutePrizeDistribution(ctx context.Context, caller governance.Identity, distributionId uint64) (*models.PrizeDistribution, error)
	CancelPrizeDistribution(ctx context.Context, caller governance.Identity, distributionId uint64) (*models.PrizeDistribution, error)
	StartNewSeason(ctx context.Context, caller governance.Identity) (*models.PrizeConfig, error)

	HasAccess(ctx context.Context, user governance.Identity) (bool, error)
	GetAccessPass(ctx context.Context, user governance.Identity) (*models.AccessPass, error)
	GlobalConfig(ctx context.Context) (*models.GlobalConfig, error)
	GetProposal(ctx context.Context, proposalId uint64) (*models.Proposal, error)
	ProposalStatus(ctx context.Context, proposalId uint64) (governance.ProposalStatus, error)
	HasVoted(ctx context.Context, user governance.Identity, proposalId uint64) (bool, error)
	Votes(ctx context.Context, proposalId uint64) ([]models.Vote, error)
	VotingEligibility(ctx context.Context, user governance.Identity) (*proposal.Eligibility, error)
	GetUnlockRequest(ctx context.Context, unlockId uint64) (*models.EmergencyUnlockRequest, error)
	UnlockSignatures(ctx context.Context, unlockId uint64) ([]models.EmergencySignature, error)
	EmergencyLimits(ctx context.Context) (*emergency.Limits, error)
	GetDistribution(ctx context.Context, distributionId uint64) (*models.PrizeDistribution, error)
	Journal(ctx context.Context, afterSeq uint64, limit int) ([]models.JournalEntry, error)
	PlatformStats(ctx context.Context) (*vaultgov.PlatformStats, error)
}

// Funder mints test balances. Only ledgers used in dev mode implement it
type Funder interface {
	Credit(account governance.Identity, amount uint64) error
}

var _ Engine = (*vaultgov.Engine)(nil)
