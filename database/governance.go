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

package database

import (
	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
)

func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}

// GetGlobalConfig returns the global config singleton
func (d *Database) GetGlobalConfig(txn *Txn) (*models.GlobalConfig, error) {
	return d.metadata.GetGlobalConfig(metadataTxn(txn))
}

// SetGlobalConfig creates or replaces the global config singleton
func (d *Database) SetGlobalConfig(cfg *models.GlobalConfig, txn *Txn) error {
	return d.metadata.SetGlobalConfig(cfg, metadataTxn(txn))
}

func (d *Database) GetEmergencyConfig(txn *Txn) (*models.EmergencyConfig, error) {
	return d.metadata.GetEmergencyConfig(metadataTxn(txn))
}

func (d *Database) SetEmergencyConfig(cfg *models.EmergencyConfig, txn *Txn) error {
	return d.metadata.SetEmergencyConfig(cfg, metadataTxn(txn))
}

func (d *Database) GetPrizeConfig(txn *Txn) (*models.PrizeConfig, error) {
	return d.metadata.GetPrizeConfig(metadataTxn(txn))
}

func (d *Database) SetPrizeConfig(cfg *models.PrizeConfig, txn *Txn) error {
	return d.metadata.SetPrizeConfig(cfg, metadataTxn(txn))
}

// GetAccessPass returns the access pass for a user, or nil
func (d *Database) GetAccessPass(user string, txn *Txn) (*models.AccessPass, error) {
	return d.metadata.GetAccessPass(user, metadataTxn(txn))
}

func (d *Database) SetAccessPass(pass *models.AccessPass, txn *Txn) error {
	return d.metadata.SetAccessPass(pass, metadataTxn(txn))
}

func (d *Database) CountActiveAccessPasses(now int64, txn *Txn) (uint64, error) {
	return d.metadata.CountActiveAccessPasses(now, metadataTxn(txn))
}

// GetProposal returns a proposal by id, or nil
func (d *Database) GetProposal(proposalId uint64, txn *Txn) (*models.Proposal, error) {
	return d.metadata.GetProposal(proposalId, metadataTxn(txn))
}

func (d *Database) CreateProposal(proposal *models.Proposal, txn *Txn) error {
	return d.metadata.CreateProposal(proposal, metadataTxn(txn))
}

func (d *Database) SetProposal(proposal *models.Proposal, txn *Txn) error {
	return d.metadata.SetProposal(proposal, metadataTxn(txn))
}

// GetVote returns the vote of voter on a proposal, or nil
func (d *Database) GetVote(proposalId uint64, voter string, txn *Txn) (*models.Vote, error) {
	return d.metadata.GetVote(proposalId, voter, metadataTxn(txn))
}

func (d *Database) GetVotes(proposalId uint64, txn *Txn) ([]models.Vote, error) {
	return d.metadata.GetVotes(proposalId, metadataTxn(txn))
}

func (d *Database) CreateVote(vote *models.Vote, txn *Txn) error {
	return d.metadata.CreateVote(vote, metadataTxn(txn))
}

// GetUnlockRequest returns an emergency unlock request by id, or nil
func (d *Database) GetUnlockRequest(
	unlockId uint64,
	txn *Txn,
) (*models.EmergencyUnlockRequest, error) {
	return d.metadata.GetUnlockRequest(unlockId, metadataTxn(txn))
}

func (d *Database) CreateUnlockRequest(req *models.EmergencyUnlockRequest, txn *Txn) error {
	return d.metadata.CreateUnlockRequest(req, metadataTxn(txn))
}

func (d *Database) SetUnlockRequest(req *models.EmergencyUnlockRequest, txn *Txn) error {
	return d.metadata.SetUnlockRequest(req, metadataTxn(txn))
}

func (d *Database) GetEmergencySignature(
	unlockId uint64,
	signer string,
	txn *Txn,
) (*models.EmergencySignature, error) {
	return d.metadata.GetEmergencySignature(unlockId, signer, metadataTxn(txn))
}

func (d *Database) GetEmergencySignatures(
	unlockId uint64,
	txn *Txn,
) ([]models.EmergencySignature, error) {
	return d.metadata.GetEmergencySignatures(unlockId, metadataTxn(txn))
}

func (d *Database) CreateEmergencySignature(sig *models.EmergencySignature, txn *Txn) error {
	return d.metadata.CreateEmergencySignature(sig, metadataTxn(txn))
}

// GetPrizeDistribution returns a distribution with its recipients, or nil
func (d *Database) GetPrizeDistribution(
	distributionId uint64,
	txn *Txn,
) (*models.PrizeDistribution, error) {
	return d.metadata.GetPrizeDistribution(distributionId, metadataTxn(txn))
}

func (d *Database) CreatePrizeDistribution(dist *models.PrizeDistribution, txn *Txn) error {
	return d.metadata.CreatePrizeDistribution(dist, metadataTxn(txn))
}

func (d *Database) SetPrizeDistribution(dist *models.PrizeDistribution, txn *Txn) error {
	return d.metadata.SetPrizeDistribution(dist, metadataTxn(txn))
}
