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

package metadata

import (
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
)

// MetadataStore holds the relational governance state. Every method accepts
// an optional transaction; a nil txn runs against the store directly
type MetadataStore interface {
	// Database
	Close() error
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Global config
	GetGlobalConfig(types.Txn) (*models.GlobalConfig, error)
	SetGlobalConfig(*models.GlobalConfig, types.Txn) error

	// Access passes
	GetAccessPass(string, types.Txn) (*models.AccessPass, error)
	SetAccessPass(*models.AccessPass, types.Txn) error
	CountActiveAccessPasses(int64, types.Txn) (uint64, error)

	// Proposals
	GetProposal(uint64, types.Txn) (*models.Proposal, error)
	CreateProposal(*models.Proposal, types.Txn) error
	SetProposal(*models.Proposal, types.Txn) error
	GetVote(uint64, string, types.Txn) (*models.Vote, error)
	GetVotes(uint64, types.Txn) ([]models.Vote, error)
	CreateVote(*models.Vote, types.Txn) error

	// Emergency unlock
	GetEmergencyConfig(types.Txn) (*models.EmergencyConfig, error)
	SetEmergencyConfig(*models.EmergencyConfig, types.Txn) error
	GetUnlockRequest(uint64, types.Txn) (*models.EmergencyUnlockRequest, error)
	CreateUnlockRequest(*models.EmergencyUnlockRequest, types.Txn) error
	SetUnlockRequest(*models.EmergencyUnlockRequest, types.Txn) error
	GetEmergencySignature(uint64, string, types.Txn) (*models.EmergencySignature, error)
	GetEmergencySignatures(uint64, types.Txn) ([]models.EmergencySignature, error)
	CreateEmergencySignature(*models.EmergencySignature, types.Txn) error

	// Prize distributions
	GetPrizeConfig(types.Txn) (*models.PrizeConfig, error)
	SetPrizeConfig(*models.PrizeConfig, types.Txn) error
	GetPrizeDistribution(uint64, types.Txn) (*models.PrizeDistribution, error)
	CreatePrizeDistribution(*models.PrizeDistribution, types.Txn) error
	SetPrizeDistribution(*models.PrizeDistribution, types.Txn) error
}
