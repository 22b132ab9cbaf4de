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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/vaultgov/database/models"
	"github.com/blinklabs-io/vaultgov/database/types"
	"gorm.io/gorm"
)

// GetProposal retrieves a proposal by id. Returns nil if it does not exist
func (d *MetadataStoreSqlite) GetProposal(
	proposalId uint64,
	txn types.Txn,
) (*models.Proposal, error) {
	var ret models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalId).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// CreateProposal inserts a new proposal. Returns types.ErrDuplicateKey if
// the proposal id is already taken
func (d *MetadataStoreSqlite) CreateProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return createUnique(db, proposal)
}

// SetProposal saves all fields of an existing proposal
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if proposal.ID == 0 {
		return errors.New("proposal has not been created")
	}
	if result := db.Save(proposal); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetVote returns the vote cast by voter on a proposal, or nil
func (d *MetadataStoreSqlite) GetVote(
	proposalId uint64,
	voter string,
	txn types.Txn,
) (*models.Vote, error) {
	var ret models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ? AND voter = ?",
		proposalId,
		voter,
	).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetVotes returns all votes on a proposal in cast order
func (d *MetadataStoreSqlite) GetVotes(
	proposalId uint64,
	txn types.Txn,
) ([]models.Vote, error) {
	var ret []models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalId).
		Order("id").
		Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CreateVote records a vote. Returns types.ErrDuplicateKey if the voter has
// already voted on the proposal
func (d *MetadataStoreSqlite) CreateVote(
	vote *models.Vote,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return createUnique(db, vote)
}
