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

// Package proposal implements DAO proposals: creation, balance-weighted
// voting, quorum-gated execution and cancellation
package proposal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/blinklabs-io/vaultgov/access"
	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/ledger"
)

const (
	OperationCreate  = "create_proposal"
	OperationVote    = "vote"
	OperationExecute = "execute_proposal"
	OperationCancel  = "cancel_proposal"
)

// Store owns proposals and votes. It reads access passes and ledger
// balances to decide eligibility
type Store struct {
	db     *database.Database
	ledger ledger.Ledger
	access *access.Registry
	logger *slog.Logger
}

func NewStore(
	db *database.Database,
	l ledger.Ledger,
	registry *access.Registry,
	logger *slog.Logger,
) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{
		db:     db,
		ledger: l,
		access: registry,
		logger: logger,
	}
}

// Create opens a new proposal. The proposer needs an active access pass and
// at least ProposalMinBalance tokens
func (s *Store) Create(
	ctx context.Context,
	txn *database.Txn,
	proposer governance.Identity,
	proposalType governance.ProposalType,
	description string,
	targetValue uint64,
	now time.Time,
) (*models.Proposal, error) {
	if !proposer.Valid() {
		return nil, governance.ErrInvalidIdentity
	}
	hasAccess, err := s.access.HasAccess(txn, proposer, now)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, governance.ErrNoActiveAccess
	}
	balance, err := s.ledger.Balance(ctx, proposer)
	if err != nil {
		return nil, err
	}
	if balance < governance.ProposalMinBalance {
		return nil, fmt.Errorf(
			"%w: proposing requires %d, have %d",
			governance.ErrInsufficientBalance,
			governance.ProposalMinBalance,
			balance,
		)
	}
	if !proposalType.Valid() {
		return nil, governance.ErrInvalidProposalType
	}
	if len(description) > governance.MaxDescriptionLength {
		return nil, governance.ErrDescriptionTooLong
	}
	cfg, err := s.db.GetGlobalConfig(txn)
	if err != nil {
		return nil, err
	}
	nowUnix := now.Unix()
	p := &models.Proposal{
		ProposalId:        cfg.NextProposalId,
		Proposer:          proposer.String(),
		Type:              uint8(proposalType),
		Description:       description,
		TargetValue:       types.Uint64(targetValue),
		CreatedAt:         nowUnix,
		VotingDeadline:    nowUnix + governance.Seconds(governance.VotingPeriod),
		ExecutionDeadline: nowUnix + governance.Seconds(governance.ExecutionPeriod),
	}
	if err := s.db.CreateProposal(p, txn); err != nil {
		return nil, err
	}
	cfg.NextProposalId++
	if err := s.db.SetGlobalConfig(cfg, txn); err != nil {
		return nil, err
	}
	if _, err := s.db.AppendJournal(&models.JournalEntry{
		Time:      nowUnix,
		Operation: OperationCreate,
		Caller:    proposer.String(),
		RecordId:  p.ProposalId,
		Amount:    targetValue,
		Detail:    proposalType.String(),
	}, txn); err != nil {
		return nil, err
	}
	s.logger.Info(
		"proposal created",
		"component", "proposal",
		"id", p.ProposalId,
		"type", proposalType.String(),
		"proposer", proposer.String(),
	)
	return p, nil
}

// Vote casts voter's ballot on a proposal with a voting power equal to the
// voter's balance at the time of the call
func (s *Store) Vote(
	ctx context.Context,
	txn *database.Txn,
	voter governance.Identity,
	proposalId uint64,
	choice bool,
	now time.Time,
) (*models.Vote, error) {
	if !voter.Valid() {
		return nil, governance.ErrInvalidIdentity
	}
	p, err := s.Get(txn, proposalId)
	if err != nil {
		return nil, err
	}
	hasAccess, err := s.access.HasAccess(txn, voter, now)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, governance.ErrNoActiveAccess
	}
	balance, err := s.ledger.Balance(ctx, voter)
	if err != nil {
		return nil, err
	}
	if balance < governance.VotingMinBalance {
		return nil, fmt.Errorf(
			"%w: voting requires %d, have %d",
			governance.ErrInsufficientBalance,
			governance.VotingMinBalance,
			balance,
		)
	}
	nowUnix := now.Unix()
	if nowUnix > p.VotingDeadline {
		return nil, governance.ErrVotingClosed
	}
	if p.Executed {
		return nil, governance.ErrProposalAlreadyExecuted
	}
	if p.Cancelled {
		return nil, governance.ErrProposalCancelled
	}
	existing, err := s.db.GetVote(proposalId, voter.String(), txn)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, governance.ErrAlreadyVoted
	}
	vote := &models.Vote{
		ProposalId:  proposalId,
		Voter:       voter.String(),
		Choice:      choice,
		VotingPower: types.Uint64(balance),
		CastAt:      nowUnix,
	}
	if err := s.db.CreateVote(vote, txn); err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			return nil, governance.ErrAlreadyVoted
		}
		return nil, err
	}
	if choice {
		sum, err := governance.SafeAdd(uint64(p.YesVotes), balance)
		if err != nil {
			return nil, err
		}
		p.YesVotes = types.Uint64(sum)
	} else {
		sum, err := governance.SafeAdd(uint64(p.NoVotes), balance)
		if err != nil {
			return nil, err
		}
		p.NoVotes = types.Uint64(sum)
	}
	p.TotalVoters++
	if err := s.db.SetProposal(p, txn); err != nil {
		return nil, err
	}
	if _, err := s.db.AppendJournal(&models.JournalEntry{
		Time:      nowUnix,
		Operation: OperationVote,
		Caller:    voter.String(),
		RecordId:  proposalId,
		Amount:    balance,
		Detail:    "choice=" + strconv.FormatBool(choice),
	}, txn); err != nil {
		return nil, err
	}
	s.logger.Debug(
		"vote cast",
		"component", "proposal",
		"id", proposalId,
		"voter", voter.String(),
		"choice", choice,
		"power", balance,
	)
	return vote, nil
}

// Execute applies an approved proposal once its voting window has closed
// and before its execution deadline. AccessCost and FeeMode proposals
// update the global config; EmergencyUnlock and PrizeDistribution
// proposals only record the approval
func (s *Store) Execute(
	_ context.Context,
	txn *database.Txn,
	caller governance.Identity,
	proposalId uint64,
	now time.Time,
) (*models.Proposal, error) {
	p, err := s.Get(txn, proposalId)
	if err != nil {
		return nil, err
	}
	if p.Executed {
		return nil, governance.ErrProposalAlreadyExecuted
	}
	if p.Cancelled {
		return nil, governance.ErrProposalCancelled
	}
	nowUnix := now.Unix()
	if nowUnix <= p.VotingDeadline {
		return nil, governance.ErrVotingStillOpen
	}
	if nowUnix > p.ExecutionDeadline {
		return nil, governance.ErrExecutionDeadlinePassed
	}
	if p.TotalVoters < governance.QuorumMinVoters {
		return nil, governance.ErrQuorumNotMet
	}
	if !governance.QuorumMet(p.TotalVoters, uint64(p.YesVotes), uint64(p.NoVotes)) {
		return nil, governance.ErrInsufficientYesVotes
	}
	target := uint64(p.TargetValue)
	switch governance.ProposalType(p.Type) {
	case governance.ProposalTypeAccessCost:
		if target < governance.MinAccessCost || target > governance.MaxAccessCost {
			return nil, governance.ErrInvalidAccessCost
		}
		if err := s.updateGlobalConfig(txn, func(cfg *models.GlobalConfig) {
			cfg.AccessCost = types.Uint64(target)
		}); err != nil {
			return nil, err
		}
	case governance.ProposalTypeFeeMode:
		if target > uint64(governance.FeeModeSponsorPays) {
			return nil, governance.ErrInvalidFeeMode
		}
		if err := s.updateGlobalConfig(txn, func(cfg *models.GlobalConfig) {
			cfg.FeeMode = uint8(target)
		}); err != nil {
			return nil, err
		}
	case governance.ProposalTypeEmergencyUnlock, governance.ProposalTypePrizeDistribution:
		// Recorded approval only. The emergency unlock protocol keeps its own
		// signer quorum; an approved PrizeDistribution may later authorize
		// one prize submission
	default:
		return nil, governance.ErrInvalidProposalType
	}
	p.Executed = true
	if err := s.db.SetProposal(p, txn); err != nil {
		return nil, err
	}
	if _, err := s.db.AppendJournal(&models.JournalEntry{
		Time:      nowUnix,
		Operation: OperationExecute,
		Caller:    caller.String(),
		RecordId:  proposalId,
		Amount:    target,
		Detail:    governance.ProposalType(p.Type).String(),
	}, txn); err != nil {
		return nil, err
	}
	s.logger.Info(
		"proposal executed",
		"component", "proposal",
		"id", proposalId,
		"type", governance.ProposalType(p.Type).String(),
		"target", target,
	)
	return p, nil
}

func (s *Store) updateGlobalConfig(
	txn *database.Txn,
	fn func(*models.GlobalConfig),
) error {
	cfg, err := s.db.GetGlobalConfig(txn)
	if err != nil {
		return err
	}
	fn(cfg)
	return s.db.SetGlobalConfig(cfg, txn)
}

// Cancel marks a proposal cancelled. Only the proposer or the global admin
// may cancel, and only before execution
func (s *Store) Cancel(
	_ context.Context,
	txn *database.Txn,
	caller governance.Identity,
	proposalId uint64,
	now time.Time,
) (*models.Proposal, error) {
	p, err := s.Get(txn, proposalId)
	if err != nil {
		return nil, err
	}
	cfg, err := s.db.GetGlobalConfig(txn)
	if err != nil {
		return nil, err
	}
	if !governance.Authorized(
		caller,
		governance.Identity(p.Proposer),
		governance.Identity(cfg.Admin),
	) {
		return nil, governance.ErrUnauthorized
	}
	if p.Executed {
		return nil, governance.ErrProposalAlreadyExecuted
	}
	if p.Cancelled {
		return nil, governance.ErrProposalAlreadyCancelled
	}
	p.Cancelled = true
	if err := s.db.SetProposal(p, txn); err != nil {
		return nil, err
	}
	if _, err := s.db.AppendJournal(&models.JournalEntry{
		Time:      now.Unix(),
		Operation: OperationCancel,
		Caller:    caller.String(),
		RecordId:  proposalId,
	}, txn); err != nil {
		return nil, err
	}
	s.logger.Info(
		"proposal cancelled",
		"component", "proposal",
		"id", proposalId,
		"caller", caller.String(),
	)
	return p, nil
}

// Get returns a proposal or governance.ErrProposalNotFound
func (s *Store) Get(txn *database.Txn, proposalId uint64) (*models.Proposal, error) {
	p, err := s.db.GetProposal(proposalId, txn)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, governance.ErrProposalNotFound
	}
	return p, nil
}

// HasVoted reports whether user has a vote recorded on the proposal
func (s *Store) HasVoted(
	txn *database.Txn,
	user governance.Identity,
	proposalId uint64,
) (bool, error) {
	vote, err := s.db.GetVote(proposalId, user.String(), txn)
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}

// Votes returns all votes on a proposal in the order they were cast
func (s *Store) Votes(txn *database.Txn, proposalId uint64) ([]models.Vote, error) {
	if _, err := s.Get(txn, proposalId); err != nil {
		return nil, err
	}
	return s.db.GetVotes(proposalId, txn)
}
