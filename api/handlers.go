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
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/prize"
)

const (
	apiVersion = "0.1.0"

	maxRequestBody = 1 << 20

	codeBadRequest = "BadRequest"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		StatusCode: http.StatusBadRequest,
		Error:      codeBadRequest,
		Kind:       governance.KindValidation.String(),
		Message:    message,
	})
}

// StatusForError maps an engine error kind to an HTTP status
func StatusForError(err error) int {
	switch governance.KindOf(err) {
	case governance.KindValidation:
		return http.StatusBadRequest
	case governance.KindConflict:
		return http.StatusConflict
	case governance.KindAuthorization:
		return http.StatusForbidden
	case governance.KindResource:
		return http.StatusUnprocessableEntity
	case governance.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the classified form of an engine error. Internal errors
// are logged and their detail withheld
func (s *Server) writeError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	status := StatusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(
			"request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get(RequestIdHeader),
			"error", err,
		)
		message = "internal error"
	}
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      governance.CodeOf(err),
		Kind:       governance.KindOf(err).String(),
		Message:    message,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func caller(r *http.Request) governance.Identity {
	return governance.Identity(r.Header.Get(CallerHeader))
}

func pathId(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid id: "+r.PathValue("id"))
		return 0, false
	}
	return id, true
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "vaultgov",
		Version: apiVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req InitializeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.engine.Initialize(
		r.Context(),
		governance.Identity(req.Admin),
		governance.Identity(req.Sponsor),
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGlobalConfigStatus(w, r, http.StatusCreated)
}

func (s *Server) handleGlobalConfig(w http.ResponseWriter, r *http.Request) {
	s.handleGlobalConfigStatus(w, r, http.StatusOK)
}

func (s *Server) handleGlobalConfigStatus(
	w http.ResponseWriter,
	r *http.Request,
	status int,
) {
	cfg, err := s.engine.GlobalConfig(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, newGlobalConfigResponse(cfg))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.PlatformStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		PlatformStats:           *stats,
		TotalBurnedDisplay:      DisplayAmount(stats.TotalBurned),
		TotalDistributedDisplay: DisplayAmount(stats.TotalDistributed),
	})
}

func (s *Server) handleChangeAccessCost(w http.ResponseWriter, r *http.Request) {
	var req AccessCostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.engine.ChangeAccessCost(r.Context(), caller(r), req.AccessCost); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGlobalConfig(w, r)
}

func (s *Server) handleChangeFeeMode(w http.ResponseWriter, r *http.Request) {
	var req FeeModeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	mode, err := governance.ParseFeeMode(req.FeeMode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.ChangeFeeMode(r.Context(), caller(r), mode); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGlobalConfig(w, r)
}

func (s *Server) handleChangeSponsor(w http.ResponseWriter, r *http.Request) {
	var req SponsorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := s.engine.ChangeSponsor(r.Context(), caller(r), governance.Identity(req.Sponsor))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGlobalConfig(w, r)
}

// handleBurnForPass buys a pass for the calling user
func (s *Server) handleBurnForPass(w http.ResponseWriter, r *http.Request) {
	var req BurnRequest
	if !decodeBody(w, r, &req) {
		return
	}
	burn := s.engine.BurnForPass
	if req.Sponsored {
		burn = s.engine.BurnForPassSponsored
	}
	pass, err := burn(r.Context(), caller(r), req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccessPassResponse(pass, true))
}

func (s *Server) handleGetAccessPass(w http.ResponseWriter, r *http.Request) {
	user := governance.Identity(r.PathValue("user"))
	pass, err := s.engine.GetAccessPass(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hasAccess, err := s.engine.HasAccess(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccessPassResponse(pass, hasAccess))
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	eligibility, err := s.engine.VotingEligibility(
		r.Context(),
		governance.Identity(r.PathValue("user")),
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibility)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req CreateProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := s.engine.CreateProposal(
		r.Context(),
		caller(r),
		governance.ProposalType(req.Type),
		req.Description,
		req.TargetValue,
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := newProposalResponse(p)
	resp.Status = governance.ProposalStatusVotingOpen.String()
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	p, err := s.engine.GetProposal(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.engine.ProposalStatus(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := newProposalResponse(p)
	resp.Status = status.String()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var req VoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Choice == nil {
		writeBadRequest(w, "choice is required")
		return
	}
	vote, err := s.engine.Vote(r.Context(), caller(r), id, *req.Choice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newVoteResponse(vote))
}

func (s *Server) handleVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	votes, err := s.engine.Votes(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]VoteResponse, 0, len(votes))
	for i := range votes {
		resp = append(resp, newVoteResponse(&votes[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	user := r.PathValue("user")
	voted, err := s.engine.HasVoted(r.Context(), governance.Identity(user), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HasVotedResponse{
		ProposalId: id,
		User:       user,
		HasVoted:   voted,
	})
}

func (s *Server) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	p, err := s.engine.ExecuteProposal(r.Context(), caller(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := newProposalResponse(p)
	resp.Status = governance.ProposalStatusExecuted.String()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	p, err := s.engine.CancelProposal(r.Context(), caller(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := newProposalResponse(p)
	resp.Status = governance.ProposalStatusCancelled.String()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEmergencyLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := s.engine.EmergencyLimits(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, limits)
}

func (s *Server) handleInitiateUnlock(w http.ResponseWriter, r *http.Request) {
	var req InitiateUnlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	unlock, err := s.engine.InitiateEmergencyUnlock(
		r.Context(),
		caller(r),
		req.Percentage,
		req.Reason,
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUnlockResponse(unlock))
}

func (s *Server) handleGetUnlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	unlock, err := s.engine.GetUnlockRequest(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUnlockResponse(unlock))
}

func (s *Server) handleUnlockSignatures(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	sigs, err := s.engine.UnlockSignatures(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := make([]SignatureResponse, 0, len(sigs))
	for _, sig := range sigs {
		resp = append(resp, SignatureResponse{
			Signer:           sig.Signer,
			SignedAt:         sig.SignedAt,
			BalanceAtSigning: uint64(sig.BalanceAtSigning),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSignUnlock(w http.ResponseWriter, r *http.Request) {
	s.unlockAction(w, r, s.engine.SignEmergencyUnlock)
}

func (s *Server) handleExecuteUnlock(w http.ResponseWriter, r *http.Request) {
	s.unlockAction(w, r, s.engine.ExecuteEmergencyUnlock)
}

func (s *Server) handleCancelUnlock(w http.ResponseWriter, r *http.Request) {
	s.unlockAction(w, r, s.engine.CancelEmergencyUnlock)
}

func (s *Server) unlockAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(context.Context, governance.Identity, uint64) (*models.EmergencyUnlockRequest, error),
) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	unlock, err := action(r.Context(), caller(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUnlockResponse(unlock))
}

func (s *Server) handleSubmitDistribution(w http.ResponseWriter, r *http.Request) {
	var req SubmitDistributionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	awards := make([]prize.Award, 0, len(req.Awards))
	for _, a := range req.Awards {
		awards = append(awards, prize.Award{
			Recipient: governance.Identity(a.Recipient),
			Amount:    a.Amount,
		})
	}
	dist, err := s.engine.SubmitPrizeDistribution(
		r.Context(),
		caller(r),
		awards,
		req.Reason,
		req.ProposalId,
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newDistributionResponse(dist))
}

func (s *Server) handleGetDistribution(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	dist, err := s.engine.GetDistribution(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDistributionResponse(dist))
}

func (s *Server) handleExecuteDistribution(w http.ResponseWriter, r *http.Request) {
	s.distributionAction(w, r, s.engine.ExecutePrizeDistribution)
}

func (s *Server) handleCancelDistribution(w http.ResponseWriter, r *http.Request) {
	s.distributionAction(w, r, s.engine.CancelPrizeDistribution)
}

func (s *Server) distributionAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(context.Context, governance.Identity, uint64) (*models.PrizeDistribution, error),
) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	dist, err := action(r.Context(), caller(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDistributionResponse(dist))
}

func (s *Server) handleStartNewSeason(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.engine.StartNewSeason(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SeasonResponse{
		CurrentSeason:   cfg.CurrentSeason,
		SeasonStartTime: cfg.SeasonStartTime,
	})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	entries, err := s.engine.Journal(r.Context(), 0, 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	SetPaginationHeaders(w, len(entries), params)
	page := params.Apply(len(entries))
	resp := make([]JournalEntryResponse, 0, len(page))
	for _, idx := range page {
		e := entries[idx]
		resp = append(resp, JournalEntryResponse{
			Seq:          e.Seq,
			Time:         e.Time,
			Operation:    e.Operation,
			Caller:       e.Caller,
			RecordId:     e.RecordId,
			Amount:       e.Amount,
			Counterparty: e.Counterparty,
			Detail:       e.Detail,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFund mints balance into an account. It is only routed in dev mode
func (s *Server) handleFund(w http.ResponseWriter, r *http.Request) {
	var req FundRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account := governance.Identity(req.Account)
	if !account.Valid() {
		s.writeError(w, r, governance.ErrInvalidIdentity)
		return
	}
	if err := s.config.Funder.Credit(account, req.Amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(
		"funded account",
		"account", req.Account,
		"amount", req.Amount,
	)
	writeJSON(w, http.StatusOK, FundResponse{
		Account: req.Account,
		Amount:  req.Amount,
	})
}
