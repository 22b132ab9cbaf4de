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

package governance

import (
	"fmt"
	"time"
)

// Identity is an authenticated caller or account. The engine only compares
// identities for equality
type Identity string

func (i Identity) String() string {
	return string(i)
}

func (i Identity) Valid() bool {
	return i != ""
}

// Authorized reports whether caller matches any of the allowed identities
func Authorized(caller Identity, allowed ...Identity) bool {
	if !caller.Valid() {
		return false
	}
	for _, id := range allowed {
		if id == caller {
			return true
		}
	}
	return false
}

type FeeMode uint8

const (
	FeeModeUserPays    FeeMode = 0
	FeeModeSponsorPays FeeMode = 1
)

func (m FeeMode) Valid() bool {
	return m == FeeModeUserPays || m == FeeModeSponsorPays
}

func (m FeeMode) String() string {
	switch m {
	case FeeModeUserPays:
		return "user_pays"
	case FeeModeSponsorPays:
		return "sponsor_pays"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ParseFeeMode accepts either the numeric or the named form
func ParseFeeMode(s string) (FeeMode, error) {
	switch s {
	case "0", "user", "user_pays":
		return FeeModeUserPays, nil
	case "1", "sponsor", "sponsor_pays":
		return FeeModeSponsorPays, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFeeMode, s)
	}
}

type ProposalType uint8

const (
	ProposalTypeAccessCost        ProposalType = 0
	ProposalTypeFeeMode           ProposalType = 1
	ProposalTypeEmergencyUnlock   ProposalType = 2
	ProposalTypePrizeDistribution ProposalType = 3
)

func (t ProposalType) Valid() bool {
	return t <= ProposalTypePrizeDistribution
}

func (t ProposalType) String() string {
	switch t {
	case ProposalTypeAccessCost:
		return "access_cost"
	case ProposalTypeFeeMode:
		return "fee_mode"
	case ProposalTypeEmergencyUnlock:
		return "emergency_unlock"
	case ProposalTypePrizeDistribution:
		return "prize_distribution"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

type ProposalStatus uint8

const (
	ProposalStatusVotingOpen ProposalStatus = iota
	ProposalStatusReadyForExecution
	ProposalStatusFailed
	ProposalStatusExecuted
	ProposalStatusCancelled
	ProposalStatusExpired
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusVotingOpen:
		return "voting_open"
	case ProposalStatusReadyForExecution:
		return "ready_for_execution"
	case ProposalStatusFailed:
		return "failed"
	case ProposalStatusExecuted:
		return "executed"
	case ProposalStatusCancelled:
		return "cancelled"
	case ProposalStatusExpired:
		return "expired"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Clock supplies the current time. It must never go backwards
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by the wall clock
func SystemClock() Clock {
	return systemClock{}
}
