// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package account

import (
	"math/big"

	"github.com/vechain/stakepool/staker/accrual"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

type Status uint8

const (
	StatusIdle Status = iota
	StatusStaked
	StatusUnstakePending
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusStaked:
		return "staked"
	case StatusUnstakePending:
		return "unstake-pending"
	}
	return "unknown"
}

// Account is the staking record of a participant.
type Account struct {
	Principal       *big.Int
	RewardDebt      *big.Int // accumulator value at the last settlement
	AccruedReward   *big.Int // settled but unclaimed reward
	StakeStartTime  uint64   // first deposit of the current episode, 0 when idle
	UnstakeInitTime uint64   // 0 unless an exit is pending
}

// newAccount returns the default record of an address that never staked.
func newAccount() *Account {
	return &Account{
		Principal:     new(big.Int),
		RewardDebt:    new(big.Int),
		AccruedReward: new(big.Int),
	}
}

// normalize replaces nil amounts of a decoded record.
func (a *Account) normalize() {
	if a.Principal == nil {
		a.Principal = new(big.Int)
	}
	if a.RewardDebt == nil {
		a.RewardDebt = new(big.Int)
	}
	if a.AccruedReward == nil {
		a.AccruedReward = new(big.Int)
	}
}

func (a *Account) Status() Status {
	if a.Principal.Sign() == 0 {
		return StatusIdle
	}
	if a.UnstakeInitTime == 0 {
		return StatusStaked
	}
	return StatusUnstakePending
}

// Settle moves the reward earned since the last settlement into AccruedReward.
// Reward of a pending exit is frozen, so it is skipped.
func (a *Account) Settle(accumulator *big.Int) {
	if a.Status() == StatusUnstakePending {
		return
	}
	if a.Principal.Sign() > 0 {
		a.AccruedReward.Add(a.AccruedReward, accrual.Earned(a.Principal, accumulator, a.RewardDebt))
	}
	a.RewardDebt = new(big.Int).Set(accumulator)
}

// Earned returns the reward owed as of the accumulator, without settling.
func (a *Account) Earned(accumulator *big.Int) *big.Int {
	earned := new(big.Int).Set(a.AccruedReward)
	if a.Status() != StatusStaked {
		return earned
	}
	return earned.Add(earned, accrual.Earned(a.Principal, accumulator, a.RewardDebt))
}

// Deposit adds principal. Top-ups keep the start of the episode.
func (a *Account) Deposit(amount *big.Int, now uint64) error {
	if a.Status() == StatusUnstakePending {
		return reverts.ErrAlreadyExiting
	}
	a.Principal = new(big.Int).Add(a.Principal, amount)
	if a.StakeStartTime == 0 {
		a.StakeStartTime = now
	}
	return nil
}

// InitiateExit starts the timelock. The caller removes the principal from the active total.
func (a *Account) InitiateExit(now, minimumHold uint64) error {
	switch a.Status() {
	case StatusIdle:
		return reverts.ErrNoStake
	case StatusUnstakePending:
		return reverts.ErrAlreadyExiting
	}
	if now < a.StakeStartTime+minimumHold {
		return reverts.ErrMinimumHoldNotElapsed
	}
	a.UnstakeInitTime = now
	return nil
}

// Exit is the principal split of a completed exit.
type Exit struct {
	Principal *big.Int
	Fee       *big.Int
	Payout    *big.Int
}

// CompleteExit returns the account to idle. AccruedReward is left untouched.
func (a *Account) CompleteExit(now, timelock, feeBasisPoints uint64) (*Exit, error) {
	switch a.Status() {
	case StatusIdle:
		return nil, reverts.ErrNoStake
	case StatusStaked:
		return nil, reverts.ErrExitNotInitiated
	}
	if now < a.UnstakeInitTime+timelock {
		return nil, reverts.ErrTimelockNotElapsed
	}

	fee := new(big.Int).Mul(a.Principal, new(big.Int).SetUint64(feeBasisPoints))
	fee.Quo(fee, new(big.Int).SetUint64(thor.BasisPoints))
	exit := &Exit{
		Principal: a.Principal,
		Fee:       fee,
		Payout:    new(big.Int).Sub(a.Principal, fee),
	}

	a.Principal = new(big.Int)
	a.RewardDebt = new(big.Int)
	a.StakeStartTime = 0
	a.UnstakeInitTime = 0
	return exit, nil
}

// ClaimableReward returns the reward a claim would pay.
func (a *Account) ClaimableReward() (*big.Int, error) {
	if a.Status() == StatusUnstakePending {
		return nil, reverts.ErrAlreadyExiting
	}
	if a.AccruedReward.Sign() == 0 {
		return nil, reverts.ErrNoRewardOwed
	}
	return new(big.Int).Set(a.AccruedReward), nil
}

// ClearReward marks the accrued reward as paid.
func (a *Account) ClearReward() {
	a.AccruedReward = new(big.Int)
}

// TimeUntilExitUnlocked returns the seconds left before a pending exit can complete.
func (a *Account) TimeUntilExitUnlocked(now, timelock uint64) uint64 {
	if a.Status() != StatusUnstakePending {
		return 0
	}
	return remaining(a.UnstakeInitTime+timelock, now)
}

// TimeUntilMinimumHoldSatisfied returns the seconds left before an exit can be initiated.
func (a *Account) TimeUntilMinimumHoldSatisfied(now, minimumHold uint64) uint64 {
	if a.Status() == StatusIdle {
		return 0
	}
	return remaining(a.StakeStartTime+minimumHold, now)
}

func remaining(deadline, now uint64) uint64 {
	if now >= deadline {
		return 0
	}
	return deadline - now
}
