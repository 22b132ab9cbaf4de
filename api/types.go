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
	"math/big"

	"github.com/blinklabs-io/vaultgov"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/shopspring/decimal"
)

// DisplayAmount renders raw token units in display units with a fixed number
// of decimal places
func DisplayAmount(raw uint64) string {
	return decimal.NewFromBigInt(
		new(big.Int).SetUint64(raw),
		-governance.DisplayDecimals,
	).StringFixed(governance.DisplayDecimals)
}

// RootResponse is returned by GET /
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse carries the stable error code of a rejected call
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

type InitializeRequest struct {
	Admin   string `json:"admin"`
	Sponsor string `json:"sponsor"`
}

type BurnRequest struct {
	Amount    uint64 `json:"amount"`
	Sponsored bool   `json:"sponsored"`
}

type AccessCostRequest struct {
	AccessCost uint64 `json:"access_cost"`
}

type FeeModeRequest struct {
	FeeMode string `json:"fee_mode"`
}

type SponsorRequest struct {
	Sponsor string `json:"sponsor"`
}

type CreateProposalRequest struct {
	Type        uint8  `json:"type"`
	Description string `json:"description"`
	TargetValue uint64 `json:"target_value"`
}

type VoteRequest struct {
	Choice *bool `json:"choice"`
}

type InitiateUnlockRequest struct {
	Percentage uint8  `json:"percentage"`
	Reason     string `json:"reason"`
}

type AwardRequest struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

type SubmitDistributionRequest struct {
	Awards     []AwardRequest `json:"awards"`
	Reason     string         `json:"reason"`
	ProposalId *uint64        `json:"proposal_id,omitempty"`
}

type FundRequest struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

type AccessPassResponse struct {
	User              string `json:"user"`
	FeePayer          string `json:"fee_payer"`
	AmountPaid        uint64 `json:"amount_paid"`
	AmountPaidDisplay string `json:"amount_paid_display"`
	BurnTimestamp     int64  `json:"burn_timestamp"`
	AccessExpires     int64  `json:"access_expires"`
	HasAccess         bool   `json:"has_access"`
}

func newAccessPassResponse(p *models.AccessPass, hasAccess bool) AccessPassResponse {
	return AccessPassResponse{
		User:              p.User,
		FeePayer:          p.FeePayer,
		AmountPaid:        uint64(p.AmountPaid),
		AmountPaidDisplay: DisplayAmount(uint64(p.AmountPaid)),
		BurnTimestamp:     p.BurnTimestamp,
		AccessExpires:     p.AccessExpires,
		HasAccess:         hasAccess,
	}
}

type GlobalConfigResponse struct {
	Admin             string `json:"admin"`
	Sponsor           string `json:"sponsor"`
	AccessCost        uint64 `json:"access_cost"`
	AccessCostDisplay string `json:"access_cost_display"`
	FeeMode           string `json:"fee_mode"`
	NextProposalId    uint64 `json:"next_proposal_id"`
	InitializedAt     int64  `json:"initialized_at"`
}

func newGlobalConfigResponse(cfg *models.GlobalConfig) GlobalConfigResponse {
	return GlobalConfigResponse{
		Admin:             cfg.Admin,
		Sponsor:           cfg.Sponsor,
		AccessCost:        uint64(cfg.AccessCost),
		AccessCostDisplay: DisplayAmount(uint64(cfg.AccessCost)),
		FeeMode:           governance.FeeMode(cfg.FeeMode).String(),
		NextProposalId:    cfg.NextProposalId,
		InitializedAt:     cfg.InitializedAt,
	}
}

type ProposalResponse struct {
	ProposalId        uint64  `json:"proposal_id"`
	Proposer          string  `json:"proposer"`
	Type              string  `json:"type"`
	Description       string  `json:"description"`
	TargetValue       uint64  `json:"target_value"`
	CreatedAt         int64   `json:"created_at"`
	VotingDeadline    int64   `json:"voting_deadline"`
	ExecutionDeadline int64   `json:"execution_deadline"`
	YesVotes          uint64  `json:"yes_votes"`
	NoVotes           uint64  `json:"no_votes"`
	TotalVoters       uint64  `json:"total_voters"`
	ApprovalPercent   uint64  `json:"approval_percent"`
	Executed          bool    `json:"executed"`
	Cancelled         bool    `json:"cancelled"`
	ConsumedBy        *uint64 `json:"consumed_by,omitempty"`
	Status            string  `json:"status,omitempty"`
}

func newProposalResponse(p *models.Proposal) ProposalResponse {
	return ProposalResponse{
		ProposalId:        p.ProposalId,
		Proposer:          p.Proposer,
		Type:              governance.ProposalType(p.Type).String(),
		Description:       p.Description,
		TargetValue:       uint64(p.TargetValue),
		CreatedAt:         p.CreatedAt,
		VotingDeadline:    p.VotingDeadline,
		ExecutionDeadline: p.ExecutionDeadline,
		YesVotes:          uint64(p.YesVotes),
		NoVotes:           uint64(p.NoVotes),
		TotalVoters:       p.TotalVoters,
		ApprovalPercent: governance.ApprovalPercent(
			uint64(p.YesVotes),
			uint64(p.NoVotes),
		),
		Executed:   p.Executed,
		Cancelled:  p.Cancelled,
		ConsumedBy: p.ConsumedBy,
	}
}

type VoteResponse struct {
	ProposalId  uint64 `json:"proposal_id"`
	Voter       string `json:"voter"`
	Choice      bool   `json:"choice"`
	VotingPower uint64 `json:"voting_power"`
	CastAt      int64  `json:"cast_at"`
}

func newVoteResponse(v *models.Vote) VoteResponse {
	return VoteResponse{
		ProposalId:  v.ProposalId,
		Voter:       v.Voter,
		Choice:      v.Choice,
		VotingPower: uint64(v.VotingPower),
		CastAt:      v.CastAt,
	}
}

type HasVotedResponse struct {
	ProposalId uint64 `json:"proposal_id"`
	User       string `json:"user"`
	HasVoted   bool   `json:"has_voted"`
}

type UnlockResponse struct {
	UnlockId            uint64 `json:"unlock_id"`
	Initiator           string `json:"initiator"`
	Percentage          uint8  `json:"percentage"`
	Reason              string `json:"reason"`
	CreatedAt           int64  `json:"created_at"`
	SignatureDeadline   int64  `json:"signature_deadline"`
	SignaturesCount     uint64 `json:"signatures_count"`
	Executed            bool   `json:"executed"`
	Cancelled           bool   `json:"cancelled"`
	ExecutedAt          int64  `json:"executed_at"`
	UnlockAmount        uint64 `json:"unlock_amount"`
	UnlockAmountDisplay string `json:"unlock_amount_display"`
}

func newUnlockResponse(r *models.EmergencyUnlockRequest) UnlockResponse {
	return UnlockResponse{
		UnlockId:            r.UnlockId,
		Initiator:           r.Initiator,
		Percentage:          r.Percentage,
		Reason:              r.Reason,
		CreatedAt:           r.CreatedAt,
		SignatureDeadline:   r.SignatureDeadline,
		SignaturesCount:     r.SignaturesCount,
		Executed:            r.Executed,
		Cancelled:           r.Cancelled,
		ExecutedAt:          r.ExecutedAt,
		UnlockAmount:        uint64(r.UnlockAmount),
		UnlockAmountDisplay: DisplayAmount(uint64(r.UnlockAmount)),
	}
}

type SignatureResponse struct {
	Signer           string `json:"signer"`
	SignedAt         int64  `json:"signed_at"`
	BalanceAtSigning uint64 `json:"balance_at_signing"`
}

type RecipientResponse struct {
	Recipient     string `json:"recipient"`
	Amount        uint64 `json:"amount"`
	AmountDisplay string `json:"amount_display"`
}

type DistributionResponse struct {
	DistributionId     uint64              `json:"distribution_id"`
	Admin              string              `json:"admin"`
	TotalAmount        uint64              `json:"total_amount"`
	TotalAmountDisplay string              `json:"total_amount_display"`
	Reason             string              `json:"reason"`
	CreatedAt          int64               `json:"created_at"`
	Season             uint64              `json:"season"`
	ProposalId         *uint64             `json:"proposal_id,omitempty"`
	Executed           bool                `json:"executed"`
	Cancelled          bool                `json:"cancelled"`
	ExecutedAt         int64               `json:"executed_at"`
	Recipients         []RecipientResponse `json:"recipients"`
}

func newDistributionResponse(d *models.PrizeDistribution) DistributionResponse {
	recipients := make([]RecipientResponse, 0, len(d.Recipients))
	for _, r := range d.Recipients {
		recipients = append(recipients, RecipientResponse{
			Recipient:     r.Recipient,
			Amount:        uint64(r.Amount),
			AmountDisplay: DisplayAmount(uint64(r.Amount)),
		})
	}
	return DistributionResponse{
		DistributionId:     d.DistributionId,
		Admin:              d.Admin,
		TotalAmount:        uint64(d.TotalAmount),
		TotalAmountDisplay: DisplayAmount(uint64(d.TotalAmount)),
		Reason:             d.Reason,
		CreatedAt:          d.CreatedAt,
		Season:             d.Season,
		ProposalId:         d.ProposalId,
		Executed:           d.Executed,
		Cancelled:          d.Cancelled,
		ExecutedAt:         d.ExecutedAt,
		Recipients:         recipients,
	}
}

type SeasonResponse struct {
	CurrentSeason   uint64 `json:"current_season"`
	SeasonStartTime int64  `json:"season_start_time"`
}

type JournalEntryResponse struct {
	Seq          uint64 `json:"seq"`
	Time         int64  `json:"time"`
	Operation    string `json:"operation"`
	Caller       string `json:"caller"`
	RecordId     uint64 `json:"record_id"`
	Amount       uint64 `json:"amount"`
	Counterparty string `json:"counterparty,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// StatsResponse adds display amounts to the engine stats
type StatsResponse struct {
	vaultgov.PlatformStats
	TotalBurnedDisplay      string `json:"total_burned_display"`
	TotalDistributedDisplay string `json:"total_distributed_display"`
}

type FundResponse struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}
