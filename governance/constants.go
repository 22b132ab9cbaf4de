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

import "time"

const Day = 24 * time.Hour

// Access pass policy
const (
	MinAccessCost      uint64 = 500_000_000
	MaxAccessCost      uint64 = 1_000_000_000
	DefaultAccessCost         = MinAccessCost
	AccessPassDuration        = 30 * Day
)

// Proposal policy
const (
	ProposalMinBalance   uint64 = 10_000_000_000
	VotingMinBalance     uint64 = 1_000_000_000
	QuorumMinVoters      uint64 = 100
	QuorumMinYesPercent  uint64 = 60
	FirstProposalId      uint64 = 1
	VotingPeriod                = 7 * Day
	ExecutionPeriod             = 14 * Day
	MaxDescriptionLength        = 200
)

// Emergency unlock policy
const (
	EmergencySignerMinBalance uint64 = 10_000_000_000
	EmergencyTimeLock                = 2 * 365 * Day
	EmergencyCooldown                = 30 * Day
	EmergencySignaturePeriod         = 7 * Day
	EmergencyMinPercentage           = 15
	EmergencyMaxPercentage           = 35
	EmergencyMinSigners              = 5
	MaxReasonLength                  = 200
)

// Prize distribution policy
const (
	MaxPrizeRecipients = 50
	FirstSeason        = 1
)

// DisplayDecimals is the number of decimal places between raw token units
// and display units
const DisplayDecimals = 6

// Seconds converts a policy duration into the whole seconds used by stored
// timestamps
func Seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
