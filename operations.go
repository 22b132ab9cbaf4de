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
	"strconv"
	"time"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/blinklabs-io/vaultgov/event"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/prize"
)

const (
	opInitialize       = "initialize"
	opChangeAccessCost = "change_access_cost"
	opChangeFeeMode    = "change_fee_mode"
	opChangeSponsor    = "change_sponsor"
)

// BurnForPass buys a 30 day access pass for user, who also pays the fee
func (e *Engine) BurnForPass(
	ctx context.Context,
	user governance.Identity,
	amount uint64,
) (*models.AccessPass, error) {
	return e.burnForPass(ctx, user, amount, false)
}

// BurnForPassSponsored buys an access pass for user with the configured
// sponsor recorded as fee payer. It requires the sponsor-pays fee mode. The
// burned tokens still come from user
func (e *Engine) BurnForPassSponsored(
	ctx context.Context,
	user governance.Identity,
	amount uint64,
) (*models.AccessPass, error) {
	return e.burnForPass(ctx, user, amount, true)
}

func (e *Engine) burnForPass(
	ctx context.Context,
	user governance.Identity,
	amount uint64,
	sponsored bool,
) (*models.AccessPass, error) {
	var ret *models.AccessPass
	err := e.mutate(ctx, "burn_for_pass", func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		feePayer := user
		if sponsored {
			cfg, err := e.globalConfig(txn)
			if err != nil {
				return nil, err
			}
			if governance.FeeMode(cfg.FeeMode) != governance.FeeModeSponsorPays {
				return nil, governance.ErrWrongFeeMode
			}
			feePayer = governance.Identity(cfg.Sponsor)
			if !feePayer.Valid() {
				feePayer = governance.Identity(cfg.Admin)
			}
		}
		pass, err := e.access.Grant(ctx, txn, user, feePayer, amount, now)
		if err != nil {
			return nil, err
		}
		ret = pass
		return &pendingEvent{
			eventType: event.AccessGrantedEventType,
			data: event.GovernanceEvent{
				Caller: user.String(),
				Amount: amount,
				Detail: "fee_payer=" + feePayer.String(),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// adminChange applies fn to the global config after checking that caller is
// the admin
func (e *Engine) adminChange(
	ctx context.Context,
	op string,
	caller governance.Identity,
	fn func(cfg *models.GlobalConfig) (string, error),
) error {
	return e.mutate(ctx, op, func(_ context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		cfg, err := e.globalConfig(txn)
		if err != nil {
			return nil, err
		}
		if !governance.Authorized(caller, governance.Identity(cfg.Admin)) {
			return nil, governance.ErrUnauthorized
		}
		detail, err := fn(cfg)
		if err != nil {
			return nil, err
		}
		if err := e.db.SetGlobalConfig(cfg, txn); err != nil {
			return nil, err
		}
		if _, err := e.db.AppendJournal(&models.JournalEntry{
			Time:      now.Unix(),
			Operation: op,
			Caller:    caller.String(),
			Detail:    detail,
		}, txn); err != nil {
			return nil, err
		}
		e.config.logger.Info(
			"global config changed",
			"component", "engine",
			"operation", op,
			"detail", detail,
		)
		return &pendingEvent{
			eventType: event.ConfigChangedEventType,
			data:      event.GovernanceEvent{Caller: caller.String(), Detail: detail},
		}, nil
	})
}

func (e *Engine) ChangeAccessCost(
	ctx context.Context,
	caller governance.Identity,
	cost uint64,
) error {
	return e.adminChange(ctx, opChangeAccessCost, caller, func(cfg *models.GlobalConfig) (string, error) {
		if cost < governance.MinAccessCost || cost > governance.MaxAccessCost {
			return "", governance.ErrInvalidAccessCost
		}
		cfg.AccessCost = types.Uint64(cost)
		return "access_cost=" + strconv.FormatUint(cost, 10), nil
	})
}

func (e *Engine) ChangeFeeMode(
	ctx context.Context,
	caller governance.Identity,
	mode governance.FeeMode,
) error {
	return e.adminChange(ctx, opChangeFeeMode, caller, func(cfg *models.GlobalConfig) (string, error) {
		if !mode.Valid() {
			return "", governance.ErrInvalidFeeMode
		}
		cfg.FeeMode = uint8(mode)
		return "fee_mode=" + mode.String(), nil
	})
}

func (e *Engine) ChangeSponsor(
	ctx context.Context,
	caller governance.Identity,
	sponsor governance.Identity,
) error {
	return e.adminChange(ctx, opChangeSponsor, caller, func(cfg *models.GlobalConfig) (string, error) {
		if !sponsor.Valid() {
			return "", governance.ErrInvalidIdentity
		}
		cfg.Sponsor = sponsor.String()
		return "sponsor=" + sponsor.String(), nil
	})
}

func (e *Engine) CreateProposal(
	ctx context.Context,
	proposer governance.Identity,
	proposalType governance.ProposalType,
	description string,
	targetValue uint64,
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := e.mutate(ctx, "create_proposal", func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		p, err := e.proposals.Create(ctx, txn, proposer, proposalType, description, targetValue, now)
		if err != nil {
			return nil, err
		}
		ret = p
		return &pendingEvent{
			eventType: event.ProposalCreatedEventType,
			data: event.GovernanceEvent{
				Caller:   proposer.String(),
				RecordId: p.ProposalId,
				Amount:   targetValue,
				Detail:   proposalType.String(),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Vote records voter's ballot weighted by their current balance
func (e *Engine) Vote(
	ctx context.Context,
	voter governance.Identity,
	proposalId uint64,
	choice bool,
) (*models.Vote, error) {
	var ret *models.Vote
	err := e.mutate(ctx, "vote", func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		vote, err := e.proposals.Vote(ctx, txn, voter, proposalId, choice, now)
		if err != nil {
			return nil, err
		}
		ret = vote
		return &pendingEvent{
			eventType: event.VoteCastEventType,
			data: event.GovernanceEvent{
				Caller:   voter.String(),
				RecordId: proposalId,
				Amount:   uint64(vote.VotingPower),
				Detail:   "choice=" + strconv.FormatBool(choice),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// proposalOp runs a proposal state transition that takes only an id
func (e *Engine) proposalOp(
	ctx context.Context,
	op string,
	eventType event.EventType,
	caller governance.Identity,
	proposalId uint64,
	fn func(context.Context, *database.Txn, governance.Identity, uint64, time.Time) (*models.Proposal, error),
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := e.mutate(ctx, op, func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		p, err := fn(ctx, txn, caller, proposalId, now)
		if err != nil {
			return nil, err
		}
		ret = p
		return &pendingEvent{
			eventType: eventType,
			data: event.GovernanceEvent{
				Caller:   caller.String(),
				RecordId: proposalId,
				Detail:   governance.ProposalType(p.Type).String(),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ExecuteProposal applies an approved proposal. Anyone may trigger it
func (e *Engine) ExecuteProposal(
	ctx context.Context,
	caller governance.Identity,
	proposalId uint64,
) (*models.Proposal, error) {
	return e.proposalOp(ctx, "execute_proposal", event.ProposalExecutedEventType, caller, proposalId, e.proposals.Execute)
}

func (e *Engine) CancelProposal(
	ctx context.Context,
	caller governance.Identity,
	proposalId uint64,
) (*models.Proposal, error) {
	return e.proposalOp(ctx, "cancel_proposal", event.ProposalCancelledEventType, caller, proposalId, e.proposals.Cancel)
}

func (e *Engine) InitiateEmergencyUnlock(
	ctx context.Context,
	initiator governance.Identity,
	percentage uint8,
	reason string,
) (*models.EmergencyUnlockRequest, error) {
	var ret *models.EmergencyUnlockRequest
	err := e.mutate(ctx, "initiate_emergency_unlock", func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		req, err := e.emergency.Initiate(ctx, txn, initiator, percentage, reason, now)
		if err != nil {
			return nil, err
		}
		ret = req
		return &pendingEvent{
			eventType: event.UnlockInitiatedEventType,
			data: event.GovernanceEvent{
				Caller:   initiator.String(),
				RecordId: req.UnlockId,
				Detail:   "percentage=" + strconv.Itoa(int(percentage)),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// unlockOp runs an emergency unlock state transition that takes only an id
func (e *Engine) unlockOp(
	ctx context.Context,
	op string,
	eventType event.EventType,
	caller governance.Identity,
	unlockId uint64,
	fn func(context.Context, *database.Txn, governance.Identity, uint64, time.Time) (*models.EmergencyUnlockRequest, error),
) (*models.EmergencyUnlockRequest, error) {
	var ret *models.EmergencyUnlockRequest
	err := e.mutate(ctx, op, func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		req, err := fn(ctx, txn, caller, unlockId, now)
		if err != nil {
			return nil, err
		}
		ret = req
		return &pendingEvent{
			eventType: eventType,
			data: event.GovernanceEvent{
				Caller:   caller.String(),
				RecordId: unlockId,
				Amount:   uint64(req.UnlockAmount),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *Engine) SignEmergencyUnlock(
	ctx context.Context,
	signer governance.Identity,
	unlockId uint64,
) (*models.EmergencyUnlockRequest, error) {
	return e.unlockOp(ctx, "sign_emergency_unlock", event.UnlockSignedEventType, signer, unlockId, e.emergency.Sign)
}

// ExecuteEmergencyUnlock releases the unlock amount to the emergency admin.
// Anyone may trigger it once enough signatures are collected
func (e *Engine) ExecuteEmergencyUnlock(
	ctx context.Context,
	caller governance.Identity,
	unlockId uint64,
) (*models.EmergencyUnlockRequest, error) {
	return e.unlockOp(ctx, "execute_emergency_unlock", event.UnlockExecutedEventType, caller, unlockId, e.emergency.Execute)
}

func (e *Engine) CancelEmergencyUnlock(
	ctx context.Context,
	caller governance.Identity,
	unlockId uint64,
) (*models.EmergencyUnlockRequest, error) {
	return e.unlockOp(ctx, "cancel_emergency_unlock", event.UnlockCancelledEventType, caller, unlockId, e.emergency.Cancel)
}

// SubmitPrizeDistribution records a batch of awards. proposalId may name an
// executed PrizeDistribution proposal authorizing a non-admin caller
func (e *Engine) SubmitPrizeDistribution(
	ctx context.Context,
	caller governance.Identity,
	awards []prize.Award,
	reason string,
	proposalId *uint64,
) (*models.PrizeDistribution, error) {
	var ret *models.PrizeDistribution
	err := e.mutate(ctx, "submit_prize_distribution", func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		dist, err := e.prizes.Submit(ctx, txn, caller, awards, reason, proposalId, now)
		if err != nil {
			return nil, err
		}
		ret = dist
		return &pendingEvent{
			eventType: event.DistributionSubmittedEventType,
			data: event.GovernanceEvent{
				Caller:   caller.String(),
				RecordId: dist.DistributionId,
				Amount:   uint64(dist.TotalAmount),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// distributionOp runs a prize distribution state transition that takes only
// an id
func (e *Engine) distributionOp(
	ctx context.Context,
	op string,
	eventType event.EventType,
	caller governance.Identity,
	distributionId uint64,
	fn func(context.Context, *database.Txn, governance.Identity, uint64, time.Time) (*models.PrizeDistribution, error),
) (*models.PrizeDistribution, error) {
	var ret *models.PrizeDistribution
	err := e.mutate(ctx, op, func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		dist, err := fn(ctx, txn, caller, distributionId, now)
		if err != nil {
			return nil, err
		}
		ret = dist
		return &pendingEvent{
			eventType: eventType,
			data: event.GovernanceEvent{
				Caller:   caller.String(),
				RecordId: distributionId,
				Amount:   uint64(dist.TotalAmount),
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ExecutePrizeDistribution pays out a submitted distribution. Anyone may
// trigger it
func (e *Engine) ExecutePrizeDistribution(
	ctx context.Context,
	caller governance.Identity,
	distributionId uint64,
) (*models.PrizeDistribution, error) {
	return e.distributionOp(ctx, "execute_prize_distribution", event.DistributionExecutedEventType, caller, distributionId, e.prizes.Execute)
}

func (e *Engine) CancelPrizeDistribution(
	ctx context.Context,
	caller governance.Identity,
	distributionId uint64,
) (*models.PrizeDistribution, error) {
	return e.distributionOp(ctx, "cancel_prize_distribution", event.DistributionCancelledEventType, caller, distributionId, e.prizes.Cancel)
}

func (e *Engine) StartNewSeason(
	ctx context.Context,
	caller governance.Identity,
) (*models.PrizeConfig, error) {
	var ret *models.PrizeConfig
	err := e.mutate(ctx, "start_new_season", func(ctx context.Context, txn *database.Txn, now time.Time) (*pendingEvent, error) {
		cfg, err := e.prizes.StartNewSeason(ctx, txn, caller, now)
		if err != nil {
			return nil, err
		}
		ret = cfg
		return &pendingEvent{
			eventType: event.SeasonStartedEventType,
			data: event.GovernanceEvent{
				Caller:   caller.String(),
				RecordId: cfg.CurrentSeason,
			},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}
