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

// Package emergency implements the time-locked, multi-signature emergency
// release of a percentage of the vault
package emergency

import (
	"context"
	"errors"
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
	OperationInitiate = "initiate_emergency_unlock"
	OperationSign     = "sign_emergency_unlock"
	OperationExecute  = "execute_emergency_unlock"
	OperationCancel   = "cancel_emergency_unlock"
)

type Coordinator struct {
	db     *database.Database
	ledger ledger.Ledger
	vault  governance.Identity
	logger *slog.Logger
}

func NewCoordinator(
	db *database.Database,
	l ledger.Ledger,
	vault governance.Identity,
	logger *slog.Logger,
) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Coordinator{
		db:     db,
		ledger: l,
		vault:  vault,
		logger: logger,
	}
}

// NewConfig returns the emergency config for a freshly initialized engine
// with the time lock starting at now
func NewConfig(admin governance.Identity, now time.Time) *models.EmergencyConfig {
	return &models.EmergencyConfig{
		Admin:               admin.String(),
		TimeLockStart:       now.Unix(),
		TimeLockDuration:    governance.Seconds(governance.EmergencyTimeLock),
		CooldownPeriod:      governance.Seconds(governance.EmergencyCooldown),
		MinSigners:          governance.EmergencyMinSigners,
		MinBalanceThreshold: types.Uint64(governance.EmergencySignerMinBalance),
		NextRequestId:       1,
	}
}

func timeLockExpired(cfg *models.EmergencyConfig, nowUnix int64) bool {
	return nowUnix >= cfg.TimeLockStart+cfg.TimeLockDuration
}

func cooldownExpired(cfg *models.EmergencyConfig, nowUnix int64) bool {
	return cfg.LastUnlockTime == 0 ||
		nowUnix >= cfg.LastUnlockTime+cfg.CooldownPeriod
}

func (c *Coordinator) checkBalance(
	ctx context.Context,
	cfg *models.EmergencyConfig,
	who governance.Identity,
) (uint64, error) {
	balance, err := c.ledger.Balance(ctx, who)
	if err != nil {
		return 0, err
	}
	if balance < uint64(cfg.MinBalanceThreshold) {
		return 0, fmt.Errorf(
			"%w: emergency actions require %d, have %d",
			governance.ErrInsufficientBalance,
			uint64(cfg.MinBalanceThreshold),
			balance,
		)
	}
	return balance, nil
}

// Initiate opens an unlock request. The initiator's signature is recorded in
// the same transaction and counts as the first of the required signatures
func (c *Coordinator) Initiate(
	ctx context.Context,
	txn *database.Txn,
	initiator governance.Identity,
	percentage uint8,
	reason string,
	now time.Time,
) (*models.EmergencyUnlockRequest, error) {
	if !initiator.Valid() {
		return nil, governance.ErrInvalidIdentity
	}
	cfg, err := c.db.GetEmergencyConfig(txn)
	if err != nil {
		return nil, err
	}
	nowUnix := now.Unix()
	if !timeLockExpired(cfg, nowUnix) {
		return nil, fmt.Errorf(
			"%w: expires at %d",
			governance.ErrTimeLockNotExpired,
			cfg.TimeLockStart+cfg.TimeLockDuration,
		)
	}
	if !cooldownExpired(cfg, nowUnix) {
		return nil, fmt.Errorf(
			"%w: expires at %d",
			governance.ErrCooldownActive,
			cfg.LastUnlockTime+cfg.CooldownPeriod,
		)
	}
	if percentage < governance.EmergencyMinPercentage ||
		percentage > governance.EmergencyMaxPercentage {
		return nil, governance.ErrInvalidUnlockPercentage
	}
	if len(reason) > governance.MaxReasonLength {
		return nil, governance.ErrReasonTooLong
	}
	balance, err := c.checkBalance(ctx, cfg, initiator)
	if err != nil {
		return nil, err
	}
	req := &models.EmergencyUnlockRequest{
		UnlockId:          cfg.NextRequestId,
		Initiator:         initiator.String(),
		Percentage:        percentage,
		Reason:            reason,
		CreatedAt:         nowUnix,
		SignatureDeadline: nowUnix + governance.Seconds(governance.EmergencySignaturePeriod),
		SignaturesCount:   1,
	}
	if err := c.db.CreateUnlockRequest(req, txn); err != nil {
		return nil, err
	}
	if err := c.db.CreateEmergencySignature(&models.EmergencySignature{
		UnlockId:         req.UnlockId,
		Signer:           initiator.String(),
		SignedAt:         nowUnix,
		BalanceAtSigning: types.Uint64(balance),
	}, txn); err != nil {
		return nil, err
	}
	cfg.NextRequestId++
	if err := c.db.SetEmergencyConfig(cfg, txn); err != nil {
		return nil, err
	}
	if _, err := c.db.AppendJournal(&models.JournalEntry{
		Time:      nowUnix,
		Operation: OperationInitiate,
		Caller:    initiator.String(),
		RecordId:  req.UnlockId,
		Detail:    "percentage=" + strconv.Itoa(int(percentage)),
	}, txn); err != nil {
		return nil, err
	}
	c.logger.Warn(
		"emergency unlock initiated",
		"component", "emergency",
		"id", req.UnlockId,
		"initiator", initiator.String(),
		"percentage", percentage,
	)
	return req, nil
}

// Sign adds signer's approval to an open request
func (c *Coordinator) Sign(
	ctx context.Context,
	txn *database.Txn,
	signer governance.Identity,
	unlockId uint64,
	now time.Time,
) (*models.EmergencyUnlockRequest, error) {
	if !signer.Valid() {
		return nil, governance.ErrInvalidIdentity
	}
	req, err := c.Get(txn, unlockId)
	if err != nil {
		return nil, err
	}
	nowUnix := now.Unix()
	if nowUnix > req.SignatureDeadline {
		return nil, governance.ErrSignaturePeriodClosed
	}
	if req.Executed {
		return nil, governance.ErrUnlockAlreadyExecuted
	}
	if req.Cancelled {
		return nil, governance.ErrUnlockCancelled
	}
	cfg, err := c.db.GetEmergencyConfig(txn)
	if err != nil {
		return nil, err
	}
	balance, err := c.checkBalance(ctx, cfg, signer)
	if err != nil {
		return nil, err
	}
	existing, err := c.db.GetEmergencySignature(unlockId, signer.String(), txn)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, governance.ErrAlreadySigned
	}
	if err := c.db.CreateEmergencySignature(&models.EmergencySignature{
		UnlockId:         unlockId,
		Signer:           signer.String(),
		SignedAt:         nowUnix,
		BalanceAtSigning: types.Uint64(balance),
	}, txn); err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			return nil, governance.ErrAlreadySigned
		}
		return nil, err
	}
	req.SignaturesCount++
	if err := c.db.SetUnlockRequest(req, txn); err != nil {
		return nil, err
	}
	if _, err := c.db.AppendJournal(&models.JournalEntry{
		Time:      nowUnix,
		Operation: OperationSign,
		Caller:    signer.String(),
		RecordId:  unlockId,
		Amount:    balance,
	}, txn); err != nil {
		return nil, err
	}
	c.logger.Info(
		"emergency unlock signed",
		"component", "emergency",
		"id", unlockId,
		"signer", signer.String(),
		"signatures", req.SignaturesCount,
		"required", cfg.MinSigners,
	)
	return req, nil
}

// Execute releases the requested percentage of the vault balance to the
// emergency admin. Execution has no deadline once enough signatures exist
func (c *Coordinator) Execute(
	ctx context.Context,
	txn *database.Txn,
	caller governance.Identity,
	unlockId uint64,
	now time.Time,
) (*models.EmergencyUnlockRequest, error) {
	req, err := c.Get(txn, unlockId)
	if err != nil {
		return nil, err
	}
	if req.Executed {
		return nil, governance.ErrUnlockAlreadyExecuted
	}
	if req.Cancelled {
		return nil, governance.ErrUnlockCancelled
	}
	cfg, err := c.db.GetEmergencyConfig(txn)
	if err != nil {
		return nil, err
	}
	if req.SignaturesCount < cfg.MinSigners {
		return nil, fmt.Errorf(
			"%w: have %d",
			governance.ErrInsufficientSignatures,
			req.SignaturesCount,
		)
	}
	vaultBalance, err := c.ledger.Balance(ctx, c.vault)
	if err != nil {
		return nil, err
	}
	amount := governance.PercentOf(vaultBalance, uint64(req.Percentage))
	nowUnix := now.Unix()
	req.Executed = true
	req.ExecutedAt = nowUnix
	req.UnlockAmount = types.Uint64(amount)
	if err := c.db.SetUnlockRequest(req, txn); err != nil {
		return nil, err
	}
	cfg.LastUnlockTime = nowUnix
	cfg.CurrentUnlockId++
	if err := c.db.SetEmergencyConfig(cfg, txn); err != nil {
		return nil, err
	}
	admin := governance.Identity(cfg.Admin)
	if _, err := c.db.AppendJournal(&models.JournalEntry{
		Time:         nowUnix,
		Operation:    OperationExecute,
		Caller:       caller.String(),
		RecordId:     unlockId,
		Amount:       amount,
		Counterparty: admin.String(),
	}, txn); err != nil {
		return nil, err
	}
	if err := ledger.Settle(ctx, txn, c.ledger, ledger.Settlement{
		From:   c.vault,
		To:     admin,
		Amount: amount,
	}); err != nil {
		return nil, err
	}
	c.logger.Warn(
		"emergency unlock executed",
		"component", "emergency",
		"id", unlockId,
		"amount", amount,
		"vault_balance", vaultBalance,
	)
	return req, nil
}

// Cancel withdraws a request. Only the initiator or the emergency admin may
// cancel
func (c *Coordinator) Cancel(
	_ context.Context,
	txn *database.Txn,
	caller governance.Identity,
	unlockId uint64,
	now time.Time,
) (*models.EmergencyUnlockRequest, error) {
	req, err := c.Get(txn, unlockId)
	if err != nil {
		return nil, err
	}
	cfg, err := c.db.GetEmergencyConfig(txn)
	if err != nil {
		return nil, err
	}
	if !governance.Authorized(
		caller,
		governance.Identity(req.Initiator),
		governance.Identity(cfg.Admin),
	) {
		return nil, governance.ErrUnauthorized
	}
	if req.Executed {
		return nil, governance.ErrUnlockAlreadyExecuted
	}
	if req.Cancelled {
		return nil, governance.ErrUnlockAlreadyCancelled
	}
	req.Cancelled = true
	if err := c.db.SetUnlockRequest(req, txn); err != nil {
		return nil, err
	}
	if _, err := c.db.AppendJournal(&models.JournalEntry{
		Time:      now.Unix(),
		Operation: OperationCancel,
		Caller:    caller.String(),
		RecordId:  unlockId,
	}, txn); err != nil {
		return nil, err
	}
	c.logger.Info(
		"emergency unlock cancelled",
		"component", "emergency",
		"id", unlockId,
		"caller", caller.String(),
	)
	return req, nil
}

// Get returns a request or governance.ErrUnlockRequestNotFound
func (c *Coordinator) Get(
	txn *database.Txn,
	unlockId uint64,
) (*models.EmergencyUnlockRequest, error) {
	req, err := c.db.GetUnlockRequest(unlockId, txn)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, governance.ErrUnlockRequestNotFound
	}
	return req, nil
}

func (c *Coordinator) Signatures(
	txn *database.Txn,
	unlockId uint64,
) ([]models.EmergencySignature, error) {
	if _, err := c.Get(txn, unlockId); err != nil {
		return nil, err
	}
	return c.db.GetEmergencySignatures(unlockId, txn)
}

// Limits describes when the next emergency unlock may be initiated
type Limits struct {
	TimeLockExpired     bool   `json:"time_lock_expired"`
	TimeLockExpiresAt   int64  `json:"time_lock_expires_at"`
	CooldownExpired     bool   `json:"cooldown_expired"`
	CooldownExpiresAt   int64  `json:"cooldown_expires_at"`
	MinPercentage       uint8  `json:"min_percentage"`
	MaxPercentage       uint8  `json:"max_percentage"`
	RequiredSignatures  uint64 `json:"required_signatures"`
	MinBalanceThreshold uint64 `json:"min_balance_threshold"`
	CurrentUnlockId     uint64 `json:"current_unlock_id"`
}

func (c *Coordinator) Limits(txn *database.Txn, now time.Time) (*Limits, error) {
	cfg, err := c.db.GetEmergencyConfig(txn)
	if err != nil {
		return nil, err
	}
	nowUnix := now.Unix()
	ret := &Limits{
		TimeLockExpired:     timeLockExpired(cfg, nowUnix),
		TimeLockExpiresAt:   cfg.TimeLockStart + cfg.TimeLockDuration,
		CooldownExpired:     cooldownExpired(cfg, nowUnix),
		MinPercentage:       governance.EmergencyMinPercentage,
		MaxPercentage:       governance.EmergencyMaxPercentage,
		RequiredSignatures:  cfg.MinSigners,
		MinBalanceThreshold: uint64(cfg.MinBalanceThreshold),
		CurrentUnlockId:     cfg.CurrentUnlockId,
	}
	if cfg.LastUnlockTime != 0 {
		ret.CooldownExpiresAt = cfg.LastUnlockTime + cfg.CooldownPeriod
	}
	return ret, nil
}
