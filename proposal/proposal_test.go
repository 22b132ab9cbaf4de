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

package proposal_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/vaultgov/access"
	"github.com/blinklabs-io/vaultgov/database"
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/internal/test/testutil"
	"github.com/blinklabs-io/vaultgov/ledger"
	"github.com/blinklabs-io/vaultgov/proposal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vault governance.Identity = "vault"
	admin governance.Identity = "admin"
	alice governance.Identity = "alice"
)

var testStart = time.Unix(1_700_000_000, 0)

type fixture struct {
	t      *testing.T
	db     *database.Database
	ledger *ledger.MemoryLedger
	access *access.Registry
	store  *proposal.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	l := ledger.NewMemoryLedger()
	reg := access.NewRegistry(db, l, vault, nil)
	require.NoError(t, testutil.InTxn(db, func(txn *database.Txn) error {
		return db.SetGlobalConfig(&models.GlobalConfig{
			Admin:          admin.String(),
			AccessCost:     types.Uint64(governance.DefaultAccessCost),
			NextProposalId: governance.FirstProposalId,
			InitializedAt:  testStart.Unix(),
		}, txn)
	}))
	return &fixture{
		t:      t,
		db:     db,
		ledger: l,
		access: reg,
		store:  proposal.NewStore(db, l, reg, nil),
	}
}

// member funds user with balance on top of the burn cost and grants a pass
func (f *fixture) member(user governance.Identity, balance uint64) {
	f.t.Helper()
	require.NoError(f.t, f.ledger.Credit(user, balance+governance.MinAccessCost))
	require.NoError(f.t, testutil.InTxn(f.db, func(txn *database.Txn) error {
		_, err := f.access.Grant(
			context.Background(), txn, user, "", governance.MinAccessCost, testStart,
		)
		return err
	}))
}

func (f *fixture) create(
	proposer governance.Identity,
	pType governance.ProposalType,
	target uint64,
	now time.Time,
) (*models.Proposal, error) {
	var p *models.Proposal
	err := testutil.InTxn(f.db, func(txn *database.Txn) error {
		var err error
		p, err = f.store.Create(context.Background(), txn, proposer, pType, "test", target, now)
		return err
	})
	return p, err
}

func (f *fixture) vote(voter governance.Identity, id uint64, choice bool, now time.Time) error {
	return testutil.InTxn(f.db, func(txn *database.Txn) error {
		_, err := f.store.Vote(context.Background(), txn, voter, id, choice, now)
		return err
	})
}

func (f *fixture) execute(id uint64, now time.Time) (*models.Proposal, error) {
	var p *models.Proposal
	err := testutil.InTxn(f.db, func(txn *database.Txn) error {
		var err error
		p, err = f.store.Execute(context.Background(), txn, alice, id, now)
		return err
	})
	return p, err
}

// voters registers n eligible voters and has them vote; the first yes of
// them vote yes
func (f *fixture) voters(id uint64, n int, yes int, now time.Time) {
	f.t.Helper()
	for i := range n {
		voter := governance.Identity(fmt.Sprintf("voter-%03d", i))
		f.member(voter, governance.VotingMinBalance)
		require.NoError(f.t, f.vote(voter, id, i < yes, now))
	}
}

func TestCreateAssignsSequentialIds(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)

	p1, err := f.create(alice, governance.ProposalTypeAccessCost, 750_000_000, testStart)
	require.NoError(t, err)
	p2, err := f.create(alice, governance.ProposalTypeFeeMode, 1, testStart)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p1.ProposalId)
	assert.Equal(t, uint64(2), p2.ProposalId)
	assert.Equal(
		t,
		testStart.Unix()+governance.Seconds(governance.VotingPeriod),
		p1.VotingDeadline,
	)
	assert.Equal(
		t,
		testStart.Unix()+governance.Seconds(governance.ExecutionPeriod),
		p1.ExecutionDeadline,
	)

	cfg, err := f.db.GetGlobalConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cfg.NextProposalId)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)

	_, err := f.create("bob", governance.ProposalTypeAccessCost, 0, testStart)
	require.ErrorIs(t, err, governance.ErrNoActiveAccess)

	f.member("bob", governance.ProposalMinBalance-1)
	_, err = f.create("bob", governance.ProposalTypeAccessCost, 0, testStart)
	require.ErrorIs(t, err, governance.ErrInsufficientBalance)

	_, err = f.create(alice, governance.ProposalType(4), 0, testStart)
	require.ErrorIs(t, err, governance.ErrInvalidProposalType)

	err = testutil.InTxn(f.db, func(txn *database.Txn) error {
		_, err := f.store.Create(
			context.Background(),
			txn,
			alice,
			governance.ProposalTypeFeeMode,
			strings.Repeat("x", governance.MaxDescriptionLength+1),
			0,
			testStart,
		)
		return err
	})
	require.ErrorIs(t, err, governance.ErrDescriptionTooLong)

	cfg, err := f.db.GetGlobalConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, governance.FirstProposalId, cfg.NextProposalId)
}

func TestVoteRecordsBalanceWeight(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)
	f.member("bob", 3*governance.VotingMinBalance)
	p, err := f.create(alice, governance.ProposalTypeFeeMode, 1, testStart)
	require.NoError(t, err)

	require.NoError(t, f.vote(alice, p.ProposalId, true, testStart))
	require.NoError(t, f.vote("bob", p.ProposalId, false, testStart))

	got, err := f.store.Get(nil, p.ProposalId)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(governance.ProposalMinBalance), got.YesVotes)
	assert.Equal(t, types.Uint64(3*governance.VotingMinBalance), got.NoVotes)
	assert.Equal(t, uint64(2), got.TotalVoters)

	voted, err := f.store.HasVoted(nil, "bob", p.ProposalId)
	require.NoError(t, err)
	assert.True(t, voted)
	votes, err := f.store.Votes(nil, p.ProposalId)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, "alice", votes[0].Voter)
}

func TestVoteRejections(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)
	p, err := f.create(alice, governance.ProposalTypeFeeMode, 1, testStart)
	require.NoError(t, err)

	require.ErrorIs(t, f.vote(alice, 99, true, testStart), governance.ErrProposalNotFound)
	require.ErrorIs(t, f.vote("nobody", p.ProposalId, true, testStart), governance.ErrNoActiveAccess)

	f.member("poor", governance.VotingMinBalance-1)
	require.ErrorIs(t, f.vote("poor", p.ProposalId, true, testStart), governance.ErrInsufficientBalance)

	require.NoError(t, f.vote(alice, p.ProposalId, true, testStart))
	require.ErrorIs(t, f.vote(alice, p.ProposalId, false, testStart), governance.ErrAlreadyVoted)

	f.member("late", governance.VotingMinBalance)
	deadline := time.Unix(p.VotingDeadline, 0)
	require.NoError(t, f.vote("late", p.ProposalId, true, deadline))
	f.member("later", governance.VotingMinBalance)
	require.ErrorIs(
		t,
		f.vote("later", p.ProposalId, true, deadline.Add(time.Second)),
		governance.ErrVotingClosed,
	)

	got, err := f.store.Get(nil, p.ProposalId)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.TotalVoters)
}

func TestExecuteAccessCost(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)
	p, err := f.create(alice, governance.ProposalTypeAccessCost, 750_000_000, testStart)
	require.NoError(t, err)
	f.voters(p.ProposalId, 100, 60, testStart.Add(time.Hour))

	_, err = f.execute(p.ProposalId, time.Unix(p.VotingDeadline, 0))
	require.ErrorIs(t, err, governance.ErrVotingStillOpen)

	afterVoting := time.Unix(p.VotingDeadline+1, 0)
	tallied, err := f.store.Get(nil, p.ProposalId)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), tallied.TotalVoters)
	assert.Equal(
		t,
		governance.ProposalStatusReadyForExecution,
		proposal.Status(tallied, afterVoting),
	)
	got, err := f.execute(p.ProposalId, afterVoting)
	require.NoError(t, err)
	assert.True(t, got.Executed)

	cfg, err := f.db.GetGlobalConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, types.Uint64(750_000_000), cfg.AccessCost)

	_, err = f.execute(p.ProposalId, afterVoting)
	require.ErrorIs(t, err, governance.ErrProposalAlreadyExecuted)
	assert.Equal(t, governance.ProposalStatusExecuted, proposal.Status(got, afterVoting))
}

func TestExecuteEmergencyUnlockRecordsApprovalOnly(t *testing.T) {
	f := newFixture(t)
	before, err := f.db.GetGlobalConfig(nil)
	require.NoError(t, err)
	f.member(alice, governance.ProposalMinBalance)
	p, err := f.create(alice, governance.ProposalTypeEmergencyUnlock, 20, testStart)
	require.NoError(t, err)
	f.voters(p.ProposalId, 100, 100, testStart.Add(time.Hour))

	got, err := f.execute(p.ProposalId, time.Unix(p.VotingDeadline+1, 0))
	require.NoError(t, err)
	assert.True(t, got.Executed)
	assert.Nil(t, got.ConsumedBy)

	after, err := f.db.GetGlobalConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, before.AccessCost, after.AccessCost)
	assert.Equal(t, before.FeeMode, after.FeeMode)
}

func TestExecuteQuorumRules(t *testing.T) {
	testDefs := []struct {
		name    string
		voters  int
		yes     int
		wantErr error
	}{
		{name: "too few voters", voters: 99, yes: 99, wantErr: governance.ErrQuorumNotMet},
		{name: "approval below threshold", voters: 100, yes: 59, wantErr: governance.ErrInsufficientYesVotes},
		{name: "exact threshold", voters: 100, yes: 60},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			f := newFixture(t)
			f.member(alice, governance.ProposalMinBalance)
			p, err := f.create(alice, governance.ProposalTypeFeeMode, 1, testStart)
			require.NoError(t, err)
			f.voters(p.ProposalId, testDef.voters, testDef.yes, testStart)

			_, err = f.execute(p.ProposalId, time.Unix(p.VotingDeadline+1, 0))
			if testDef.wantErr != nil {
				require.ErrorIs(t, err, testDef.wantErr)
				return
			}
			require.NoError(t, err)
			cfg, err := f.db.GetGlobalConfig(nil)
			require.NoError(t, err)
			assert.Equal(t, uint8(governance.FeeModeSponsorPays), cfg.FeeMode)
		})
	}
}

func TestExecuteDeadlineAndTargetChecks(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)
	late, err := f.create(alice, governance.ProposalTypeFeeMode, 0, testStart)
	require.NoError(t, err)
	badCost, err := f.create(alice, governance.ProposalTypeAccessCost, 1, testStart)
	require.NoError(t, err)
	for i := range 100 {
		voter := governance.Identity(fmt.Sprintf("voter-%03d", i))
		f.member(voter, governance.VotingMinBalance)
		require.NoError(t, f.vote(voter, late.ProposalId, true, testStart))
		require.NoError(t, f.vote(voter, badCost.ProposalId, true, testStart))
	}

	_, err = f.execute(late.ProposalId, time.Unix(late.ExecutionDeadline+1, 0))
	require.ErrorIs(t, err, governance.ErrExecutionDeadlinePassed)
	_, err = f.execute(late.ProposalId, time.Unix(late.ExecutionDeadline, 0))
	require.NoError(t, err)

	_, err = f.execute(badCost.ProposalId, time.Unix(badCost.VotingDeadline+1, 0))
	require.ErrorIs(t, err, governance.ErrInvalidAccessCost)
	got, err := f.store.Get(nil, badCost.ProposalId)
	require.NoError(t, err)
	assert.False(t, got.Executed)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)
	p1, err := f.create(alice, governance.ProposalTypeFeeMode, 1, testStart)
	require.NoError(t, err)
	p2, err := f.create(alice, governance.ProposalTypeFeeMode, 1, testStart)
	require.NoError(t, err)

	cancel := func(caller governance.Identity, id uint64) error {
		return testutil.InTxn(f.db, func(txn *database.Txn) error {
			_, err := f.store.Cancel(context.Background(), txn, caller, id, testStart)
			return err
		})
	}
	require.ErrorIs(t, cancel("mallory", p1.ProposalId), governance.ErrUnauthorized)
	require.NoError(t, cancel(alice, p1.ProposalId))
	require.ErrorIs(t, cancel(alice, p1.ProposalId), governance.ErrProposalAlreadyCancelled)
	require.NoError(t, cancel(admin, p2.ProposalId))

	require.ErrorIs(t, f.vote(alice, p1.ProposalId, true, testStart), governance.ErrProposalCancelled)
	_, err = f.execute(p2.ProposalId, time.Unix(p2.VotingDeadline+1, 0))
	require.ErrorIs(t, err, governance.ErrProposalCancelled)

	got, err := f.store.Get(nil, p1.ProposalId)
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalStatusCancelled, proposal.Status(got, testStart))
}

func TestStatus(t *testing.T) {
	base := models.Proposal{
		VotingDeadline:    100,
		ExecutionDeadline: 200,
	}
	passing := base
	passing.TotalVoters = 100
	passing.YesVotes = 60
	passing.NoVotes = 40
	executed := passing
	executed.Executed = true
	cancelledAndExecuted := executed
	cancelledAndExecuted.Cancelled = true

	testDefs := []struct {
		name     string
		proposal models.Proposal
		now      int64
		expected governance.ProposalStatus
	}{
		{"voting open at deadline", base, 100, governance.ProposalStatusVotingOpen},
		{"failed without quorum", base, 101, governance.ProposalStatusFailed},
		{"ready with quorum", passing, 200, governance.ProposalStatusReadyForExecution},
		{"expired", passing, 201, governance.ProposalStatusExpired},
		{"executed", executed, 50, governance.ProposalStatusExecuted},
		{"cancelled wins", cancelledAndExecuted, 50, governance.ProposalStatusCancelled},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(
				t,
				testDef.expected,
				proposal.Status(&testDef.proposal, time.Unix(testDef.now, 0)),
			)
		})
	}
}

func TestEligibility(t *testing.T) {
	f := newFixture(t)
	f.member(alice, governance.ProposalMinBalance)
	f.member("bob", governance.VotingMinBalance)

	e, err := f.store.Eligibility(context.Background(), nil, alice, testStart)
	require.NoError(t, err)
	assert.True(t, e.CanPropose)
	assert.True(t, e.CanVote)
	assert.Equal(t, governance.ProposalMinBalance, e.VotingPower)

	e, err = f.store.Eligibility(context.Background(), nil, "bob", testStart)
	require.NoError(t, err)
	assert.True(t, e.CanVote)
	assert.False(t, e.CanPropose)

	e, err = f.store.Eligibility(
		context.Background(), nil, "bob", testStart.Add(governance.AccessPassDuration),
	)
	require.NoError(t, err)
	assert.False(t, e.HasActiveAccess)
	assert.False(t, e.CanVote)
	assert.Zero(t, e.VotingPower)
}
