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

package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/blinklabs-io/vaultgov/governance"
	"github.com/blinklabs-io/vaultgov/internal/test/testutil"
	"github.com/blinklabs-io/vaultgov/ledger"
)

func BenchmarkBurnForPass(b *testing.B) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()
	clock := testutil.NewFakeClock(genesis)
	engine := openEngine(b, b.TempDir(), l, clock)
	defer engine.Close()
	if err := engine.Initialize(ctx, "admin", "sponsor"); err != nil {
		b.Fatal(err)
	}
	users := make([]governance.Identity, b.N)
	for i := range users {
		users[i] = governance.Identity(fmt.Sprintf("user-%d", i))
		if err := l.Credit(users[i], governance.MinAccessCost); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.BurnForPass(ctx, users[i], governance.MinAccessCost); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVote(b *testing.B) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger()
	clock := testutil.NewFakeClock(genesis)
	engine := openEngine(b, "", l, clock)
	defer engine.Close()
	if err := engine.Initialize(ctx, "admin", "sponsor"); err != nil {
		b.Fatal(err)
	}
	voters := make([]governance.Identity, b.N)
	for i := range voters {
		voters[i] = governance.Identity(fmt.Sprintf("voter-%d", i))
		if err := l.Credit(voters[i], governance.ProposalMinBalance+governance.MinAccessCost); err != nil {
			b.Fatal(err)
		}
		if _, err := engine.BurnForPass(ctx, voters[i], governance.MinAccessCost); err != nil {
			b.Fatal(err)
		}
	}
	p, err := engine.CreateProposal(ctx, voters[0], governance.ProposalTypeAccessCost, "bench", governance.MaxAccessCost)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Vote(ctx, voters[i], p.ProposalId, i%2 == 0); err != nil {
			b.Fatal(err)
		}
	}
}
