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

package governance_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuorumMet(t *testing.T) {
	testDefs := []struct {
		voters   uint64
		yes      uint64
		no       uint64
		expected bool
	}{
		{voters: 100, yes: 600, no: 400, expected: true},
		{voters: 99, yes: 600, no: 400, expected: false},
		{voters: 100, yes: 599, no: 401, expected: false},
		{voters: 150, yes: 0, no: 0, expected: false},
		{voters: 100, yes: 1, no: 0, expected: true},
		// Large balances must not overflow the percentage calculation
		{voters: 100, yes: math.MaxUint64, no: math.MaxUint64 / 2, expected: true},
		{voters: 100, yes: math.MaxUint64 / 2, no: math.MaxUint64, expected: false},
	}
	for _, testDef := range testDefs {
		t.Run(fmt.Sprintf("%d/%d/%d", testDef.voters, testDef.yes, testDef.no), func(t *testing.T) {
			assert.Equal(
				t,
				testDef.expected,
				governance.QuorumMet(testDef.voters, testDef.yes, testDef.no),
			)
		})
	}
}

func TestApprovalPercent(t *testing.T) {
	assert.Equal(t, uint64(60), governance.ApprovalPercent(600, 400))
	assert.Equal(t, uint64(66), governance.ApprovalPercent(2, 1))
	assert.Equal(t, uint64(0), governance.ApprovalPercent(0, 0))
	assert.Equal(t, uint64(100), governance.ApprovalPercent(math.MaxUint64, 0))
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, uint64(15), governance.PercentOf(100, 15))
	assert.Equal(t, uint64(3), governance.PercentOf(10, 35))
	assert.Equal(t, uint64(0), governance.PercentOf(0, 35))
	assert.Equal(
		t,
		uint64(math.MaxUint64/100*35+(math.MaxUint64%100)*35/100),
		governance.PercentOf(math.MaxUint64, 35),
	)
	assert.Equal(t, uint64(math.MaxUint64), governance.PercentOf(math.MaxUint64, 100))
}

func TestSafeAdd(t *testing.T) {
	sum, err := governance.SafeAdd(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)
	_, err = governance.SafeAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, governance.ErrAmountOverflow)
}

func TestErrorKinds(t *testing.T) {
	testDefs := []struct {
		err  error
		kind governance.ErrorKind
	}{
		{governance.ErrInvalidBurnAmount, governance.KindValidation},
		{governance.ErrAccessStillActive, governance.KindConflict},
		{governance.ErrAlreadyVoted, governance.KindConflict},
		{governance.ErrUnauthorized, governance.KindAuthorization},
		{governance.ErrInsufficientVaultBalance, governance.KindResource},
		{governance.ErrProposalNotFound, governance.KindNotFound},
		{errors.New("disk on fire"), governance.KindInternal},
	}
	for _, testDef := range testDefs {
		wrapped := fmt.Errorf("wrapped: %w", testDef.err)
		assert.Equal(t, testDef.kind, governance.KindOf(wrapped), testDef.err.Error())
	}
	assert.Equal(t, "AlreadyVoted", governance.CodeOf(fmt.Errorf("x: %w", governance.ErrAlreadyVoted)))
	assert.Equal(t, "Internal", governance.CodeOf(errors.New("x")))
}

func TestAuthorized(t *testing.T) {
	assert.True(t, governance.Authorized("alice", "bob", "alice"))
	assert.False(t, governance.Authorized("carol", "bob", "alice"))
	assert.False(t, governance.Authorized("", ""))
}

func TestParseFeeMode(t *testing.T) {
	mode, err := governance.ParseFeeMode("sponsor")
	require.NoError(t, err)
	assert.Equal(t, governance.FeeModeSponsorPays, mode)
	mode, err = governance.ParseFeeMode("0")
	require.NoError(t, err)
	assert.Equal(t, governance.FeeModeUserPays, mode)
	_, err = governance.ParseFeeMode("2")
	require.ErrorIs(t, err, governance.ErrInvalidFeeMode)
}

func TestProposalType(t *testing.T) {
	assert.True(t, governance.ProposalTypePrizeDistribution.Valid())
	assert.False(t, governance.ProposalType(4).Valid())
	assert.Equal(t, "fee_mode", governance.ProposalTypeFeeMode.String())
}
