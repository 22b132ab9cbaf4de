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

package testutil

import (
	"testing"

	"github.com/blinklabs-io/vaultgov/database"
	"github.com/stretchr/testify/require"
)

// NewTestDatabase returns a private in-memory database that is closed when
// the test finishes
func NewTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

// InTxn runs fn in a read-write transaction, committing on success and
// rolling back on error. The error from fn is returned unchanged
func InTxn(db *database.Database, fn func(*database.Txn) error) error {
	return db.Transaction(true).Do(fn)
}
