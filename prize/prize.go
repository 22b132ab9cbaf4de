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

// Package prize records batched prize distributions paid out of the vault
// and tracks competitive seasons
package prize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/ledger"
)

const (
	OperationSubmit      = "submit_prize_distribution"
	OperationExecute     = "execute_prize_distribution"
	OperationCancel      = "cancel_prize_distribution"
	OperationStartSeason = "start_new_season"
)

// Award is a single recipient and amount within a distribution
type Award struct {
	Recipient governance.Identity `json:"recipient"`
	Amount    uint64              `json:"amount"`
}

type Ledger struct {
	db     *database.Database
	ledger ledger.Ledger
	vault  governance.Identity
	logger *slog.Logger
}

func NewLedger(
	db *database.Database,
	l ledger.Ledger,
	vault governance.Identity,
	logger *slog.Logger,
) *Ledger {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Ledger{
		db:     db,
		ledger: l,
		vault:  vault,
		logger: logger,
	}
}

// NewConfig returns the prize config for a freshly initialized engine
func NewConfig(admin governance.Identity, now time.Time) *models.PrizeConfig {
	return &models.PrizeConfig{
		Admin:           admin.String(),
		CurrentSeason:   governance.FirstSeason,
		SeasonStartTime: now.Unix(),
	}
}

// Total sums the award amounts, failing on overflow
func Total(awards []Award) (uint64, error) {
	var total uint64
	for _, award := range awards {
		var err error
		total, err = governance.SafeAdd(total, award.Amount)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Submit records a distribution for later execution. The caller must be the
// prize admin unless proposalId names an executed PrizeDistribution proposal
// approving exactly this total that has not been used before
func (l *Ledger) Submit(
	ctx context.Context,
	txn *database.Txn,
	caller governance.Identity,
	awards []Award,
	reason string,
	proposalId *uint64,
	now time.Time,
) (*models.PrizeDistribution, error) {
	cfg, err := l.db.GetPrizeConfig(txn)
	if err != nil {
		return nil, err
	}
	if proposalId == nil &&
		!governance.Authorized(caller, governance.Identity(cfg.Admin)) {
		return nil, governance.ErrUnauthorized
	}
	if len(awards) > governance.MaxPrizeRecipients {
		return nil, governance.ErrTooManyRecipients
	}
	if len(awards) == 0 {
		return nil, governance.ErrNoRecipients
	}
	for _, award := range awards {
		if !award.Recipient.Valid() {
			return nil, governance.ErrInvalidIdentity
		}
	}
	if len(reason) > governance.MaxReasonLength {
		return nil, governance.ErrReasonTooLong
	}
	total, err := Total(awards)
	if err != nil {
		return nil, err
	}
	distributionId := cfg.DistributionCount + 1
	if proposalId != nil {
		if !caller.Valid() {
			return nil, governance.ErrUnauthorized
		}
		if err := l.consumeProposal(txn, *proposalId, total, distributionId); err != nil {
			return nil, err
		}
	}
	vaultBalance, err := l.ledger.Balance(ctx, l.vault)
	if err != nil {
		return nil, err
	}
	if vaultBalance < total {
		return nil, fmt.Errorf(
			"%w: vault holds %d, distribution needs %d",
			governance.ErrInsufficientVaultBalance,
			vaultBalance,
			total,
		)
	}
	nowUnix := now.Unix()
	dist := &models.PrizeDistribution{
		DistributionId: distributionId,
		Admin:          caller.String(),
		TotalAmount:    types.Uint64(total),
		Reason:         reason,
		CreatedAt:      nowUnix,
		Season:         cfg.CurrentSeason,
		ProposalId:     proposalId,
		Recipients:     make([]models.PrizeRecipient, 0, len(awards)),
	}
	for i, award := range awards {
		dist.Recipients = append(dist.Recipients, models.PrizeRecipient{
			DistributionId: distributionId,
			Position:       uint(i),
			Recipient:      award.Recipient.String(),
			Amount:         types.Uint64(award.Amount),
		})
	}
	if err := l.db.CreatePrizeDistribution(dist, txn); err != nil {
		return nil, err
	}
	cfg.DistributionCount = distributionId
	if err := l.db.SetPrizeConfig(cfg, txn); err != nil {
		return nil, err
	}
	if _, err := l.db.AppendJournal(&models.JournalEntry{
		Time:      nowUnix,
		Operation: OperationSubmit,
		Caller:    caller.String(),
		RecordId:  distributionId,
		Amount:    total,
		Detail:    "recipients=" + strconv.Itoa(len(awards)),
	}, txn); err != nil {
		return nil, err
	}
	l.logger.Info(
		"prize distribution submitted",
		"component", "prize",
		"id", distributionId,
		"total", total,
		"recipients", len(awards),
		"season", cfg.CurrentSeason,
	)
	return dist, nil
}

func (l *Ledger) consumeProposal(
	txn *database.Txn,
	proposalId uint64,
	total uint64,
	distributionId uint64,
) error {
	p, err := l.db.GetProposal(proposalId, txn)
	if err != nil {
		return err
	}
	if p == nil {
		return governance.ErrProposalNotFound
	}
	if governance.ProposalType(p.Type) != governance.ProposalTypePrizeDistribution ||
		!p.Executed ||
		uint64(p.TargetValue) != total {
		return governance.ErrProposalNotApproved
	}
	if p.ConsumedBy != nil {
		return fmt.Errorf(
			"%w: used by distribution %d",
			governance.ErrProposalAlreadyUsed,
			*p.ConsumedBy,
		)
	}
	p.ConsumedBy = &distributionId
	return l.db.SetProposal(p, txn)
}

// Execute pays out a submitted distribution with one aggregate transfer from
// the vault to the prize admin, who settles individual recipients
func (l *Ledger) Execute(
	ctx context.Context,
	txn *database.Txn,
	caller governance.Identity,
	distributionId uint64,
	now time.Time,
) (*models.PrizeDistribution, error) {
	dist, err := l.Get(txn, distributionId)
	if err != nil {
		return nil, err
	}
	if dist.Executed {
		return nil, governance.ErrDistributionAlreadyExecuted
	}
	if dist.Cancelled {
		return nil, governance.ErrDistributionCancelled
	}
	cfg, err := l.db.GetPrizeConfig(txn)
	if err != nil {
		return nil, err
	}
	total := uint64(dist.TotalAmount)
	vaultBalance, err := l.ledger.Balance(ctx, l.vault)
	if err != nil {
		return nil, err
	}
	if vaultBalance < total {
		return nil, fmt.Errorf(
			"%w: vault holds %d, distribution needs %d",
			governance.ErrInsufficientVaultBalance,
			vaultBalance,
			total,
		)
	}
	distributed, err := governance.SafeAdd(uint64(cfg.TotalDistributed), total)
	if err != nil {
		return nil, err
	}
	nowUnix := now.Unix()
	dist.Executed = true
	dist.ExecutedAt = nowUnix
	if err := l.db.SetPrizeDistribution(dist, txn); err != nil {
		return nil, err
	}
	cfg.TotalDistributed = types.Uint64(distributed)
	if err := l.db.SetPrizeConfig(cfg, txn); err != nil {
		return nil, err
	}
	admin := governance.Identity(cfg.Admin)
	if _, err := l.db.AppendJournal(&models.JournalEntry{
		Time:         nowUnix,
		Operation:    OperationExecute,
		Caller:       caller.String(),
		RecordId:     distributionId,
		Amount:       total,
		Counterparty: admin.String(),
	}, txn); err != nil {
		return nil, err
	}
	if err := ledger.Settle(ctx, txn, l.ledger, ledger.Settlement{
		From:   l.vault,
		To:     admin,
		Amount: total,
	}); err != nil {
		return nil, err
	}
	l.logger.Info(
		"prize distribution executed",
		"component", "prize",
		"id", distributionId,
		"total", total,
		"total_distributed", distributed,
	)
	return dist, nil
}

func (l *Ledger) Cancel(
	_ context.Context,
	txn *database.Txn,
	caller governance.Identity,
	distributionId uint64,
	now time.Time,
) (*models.PrizeDistribution, error) {
	cfg, err := l.db.GetPrizeConfig(txn)
	if err != nil {
		return nil, err
	}
	if !governance.Authorized(caller, governance.Identity(cfg.Admin)) {
		return nil, governance.ErrUnauthorized
	}
	dist, err := l.Get(txn, distributionId)
	if err != nil {
		return nil, err
	}
	if dist.Executed {
		return nil, governance.ErrDistributionAlreadyExecuted
	}
	if dist.Cancelled {
		return nil, governance.ErrDistributionAlreadyCancelled
	}
	dist.Cancelled = true
	if err := l.db.SetPrizeDistribution(dist, txn); err != nil {
		return nil, err
	}
	if _, err := l.db.AppendJournal(&models.JournalEntry{
		Time:      now.Unix(),
		Operation: OperationCancel,
		Caller:    caller.String(),
		RecordId:  distributionId,
		Amount:    uint64(dist.TotalAmount),
	}, txn); err != nil {
		return nil, err
	}
	l.logger.Info(
		"prize distribution cancelled",
		"component", "prize",
		"id", distributionId,
	)
	return dist, nil
}

// StartNewSeason advances the season counter. Distributions already
// submitted keep the season they were created in
func (l *Ledger) StartNewSeason(
	_ context.Context,
	txn *database.Txn,
	caller governance.Identity,
	now time.Time,
) (*models.PrizeConfig, error) {
	cfg, err := l.db.GetPrizeConfig(txn)
	if err != nil {
		return nil, err
	}
	if !governance.Authorized(caller, governance.Identity(cfg.Admin)) {
		return nil, governance.ErrUnauthorized
	}
	nowUnix := now.Unix()
	cfg.CurrentSeason++
	cfg.SeasonStartTime = nowUnix
	if err := l.db.SetPrizeConfig(cfg, txn); err != nil {
		return nil, err
	}
	if _, err := l.db.AppendJournal(&models.JournalEntry{
		Time:      nowUnix,
		Operation: OperationStartSeason,
		Caller:    caller.String(),
		RecordId:  cfg.CurrentSeason,
	}, txn); err != nil {
		return nil, err
	}
	l.logger.Info(
		"new season started",
		"component", "prize",
		"season", cfg.CurrentSeason,
	)
	return cfg, nil
}

// Get returns a distribution with its recipients, or
// governance.ErrDistributionNotFound
func (l *Ledger) Get(
	txn *database.Txn,
	distributionId uint64,
) (*models.PrizeDistribution, error) {
	dist, err := l.db.GetPrizeDistribution(distributionId, txn)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		return nil, governance.ErrDistributionNotFound
	}
	return dist, nil
}

// Config returns the current prize config
func (l *Ledger) Config(txn *database.Txn) (*models.PrizeConfig, error) {
	return l.db.GetPrizeConfig(txn)
}
