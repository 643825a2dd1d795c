// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accrual

import (
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// Stats is a snapshot of the pool wide ledger.
type Stats struct {
	RewardRate    *big.Int // asset units per second
	EmissionStart uint64
	EmissionEnd   uint64
	LastUpdate    uint64

	TotalStaked *big.Int // principal of all accounts
	TotalActive *big.Int // principal of accounts still accruing
	Accumulator *big.Int // scaled reward per unit of active stake
	Carry       *big.Int // scaled reward not yet attributed to any stake
	FeesAccrued *big.Int
}

// Step is the outcome of advancing the accumulator over a time span.
type Step struct {
	Effective uint64   // clamped time the ledger is advanced to
	Delta     *big.Int // added to the accumulator
	Remainder *big.Int // added to the carry
}

// Emitted returns the scaled reward the step accounts for.
func (s *Step) Emitted(totalActive *big.Int) *big.Int {
	out := new(big.Int).Mul(s.Delta, totalActive)
	return out.Add(out, s.Remainder)
}

// Accrue computes how the reward emitted between lastUpdate and now splits
// between the accumulator and the carry.
// now is clamped into [lastUpdate, end]. The returned step has zero delta and
// remainder if no time elapsed.
func Accrue(rate, totalActive *big.Int, lastUpdate, end, now uint64) *Step {
	effective := min(now, end)
	step := &Step{
		Effective: lastUpdate,
		Delta:     new(big.Int),
		Remainder: new(big.Int),
	}
	if effective <= lastUpdate {
		return step
	}
	step.Effective = effective

	gross := new(big.Int).SetUint64(effective - lastUpdate)
	gross.Mul(gross, rate)
	gross.Mul(gross, thor.Scale)

	if totalActive.Sign() == 0 {
		step.Remainder = gross
		return step
	}
	step.Delta.DivMod(gross, totalActive, step.Remainder)
	return step
}

// Earned returns the reward a principal earned while the accumulator moved from debt to acc.
func Earned(principal, acc, debt *big.Int) *big.Int {
	out := new(big.Int).Sub(acc, debt)
	out.Mul(out, principal)
	return out.Quo(out, thor.Scale)
}
