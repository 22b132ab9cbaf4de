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

package event

// Event types published by the governance engine after a call commits
const (
	InitializedEventType           = EventType("governance.initialized")
	ConfigChangedEventType         = EventType("governance.config_changed")
	AccessGrantedEventType         = EventType("access.granted")
	ProposalCreatedEventType       = EventType("proposal.created")
	VoteCastEventType              = EventType("proposal.vote_cast")
	ProposalExecutedEventType      = EventType("proposal.executed")
	ProposalCancelledEventType     = EventType("proposal.cancelled")
	UnlockInitiatedEventType       = EventType("emergency.initiated")
	UnlockSignedEventType          = EventType("emergency.signed")
	UnlockExecutedEventType        = EventType("emergency.executed")
	UnlockCancelledEventType       = EventType("emergency.cancelled")
	DistributionSubmittedEventType = EventType("prize.submitted")
	DistributionExecutedEventType  = EventType("prize.executed")
	DistributionCancelledEventType = EventType("prize.cancelled")
	SeasonStartedEventType         = EventType("prize.season_started")
)

// AllEventTypes lists every governance event type, in the order above
var AllEventTypes = []EventType{
	InitializedEventType,
	ConfigChangedEventType,
	AccessGrantedEventType,
	ProposalCreatedEventType,
	VoteCastEventType,
	ProposalExecutedEventType,
	ProposalCancelledEventType,
	UnlockInitiatedEventType,
	UnlockSignedEventType,
	UnlockExecutedEventType,
	UnlockCancelledEventType,
	DistributionSubmittedEventType,
	DistributionExecutedEventType,
	DistributionCancelledEventType,
	SeasonStartedEventType,
}

// GovernanceEvent is the payload of every governance event. RecordId is the
// proposal, unlock or distribution id where one applies
type GovernanceEvent struct {
	Caller   string `json:"caller"`
	RecordId uint64 `json:"record_id,omitempty"`
	Amount   uint64 `json:"amount,omitempty"`
	Detail   string `json:"detail,omitempty"`
}
