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
	"math"
	"math/big"
	"math/bits"
)

// ApprovalPercent returns floor(yes*100/(yes+no)), or 0 when nobody voted
func ApprovalPercent(yes, no uint64) uint64 {
	total := new(big.Int).Add(
		new(big.Int).SetUint64(yes),
		new(big.Int).SetUint64(no),
	)
	if total.Sign() == 0 {
		return 0
	}
	pct := new(big.Int).Mul(new(big.Int).SetUint64(yes), big.NewInt(100))
	pct.Quo(pct, total)
	return pct.Uint64()
}

// QuorumMet reports whether a tally passes: enough unique voters and an
// approval percentage of at least QuorumMinYesPercent
func QuorumMet(totalVoters, yes, no uint64) bool {
	if totalVoters < QuorumMinVoters {
		return false
	}
	return ApprovalPercent(yes, no) >= QuorumMinYesPercent
}

// PercentOf returns floor(amount*pct/100) using a 128-bit intermediate. The
// result saturates at math.MaxUint64 for pct above 100
func PercentOf(amount uint64, pct uint64) uint64 {
	hi, lo := bits.Mul64(amount, pct)
	if hi >= 100 {
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, 100)
	return quo
}

// SafeAdd returns a+b, or ErrAmountOverflow if the sum does not fit
func SafeAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}
