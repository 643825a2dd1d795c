// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"

	"github.com/vechain/stakepool/staker/accrual"
	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/staker/policy"
	"github.com/vechain/stakepool/thor"
)

//
// Getters - no state change
//

// Earned returns the reward owed to addr as of now.
func (s *Staker) Earned(ctx context.Context, addr thor.Address) (*big.Int, error) {
	defer s.guard.view(ctx)()

	svc := s.open()
	stats, err := svc.accrual.Preview(s.clock())
	if err != nil {
		return nil, err
	}
	acc, err := svc.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	return acc.Earned(stats.Accumulator), nil
}

// TimeUntilExitUnlocked returns the seconds before addr can complete its pending exit.
func (s *Staker) TimeUntilExitUnlocked(ctx context.Context, addr thor.Address) (uint64, error) {
	defer s.guard.view(ctx)()

	svc := s.open()
	acc, err := svc.accounts.Get(addr)
	if err != nil {
		return 0, err
	}
	params, err := svc.policy.Params()
	if err != nil {
		return 0, err
	}
	return acc.TimeUntilExitUnlocked(s.clock(), params.UnstakeTimelock), nil
}

// TimeUntilMinimumHoldSatisfied returns the seconds before addr can initiate an exit.
func (s *Staker) TimeUntilMinimumHoldSatisfied(ctx context.Context, addr thor.Address) (uint64, error) {
	defer s.guard.view(ctx)()

	svc := s.open()
	acc, err := svc.accounts.Get(addr)
	if err != nil {
		return 0, err
	}
	minimumHold, err := svc.policy.MinimumHold()
	if err != nil {
		return 0, err
	}
	return acc.TimeUntilMinimumHoldSatisfied(s.clock(), minimumHold), nil
}

// GetAccount returns the stored record of addr, as of its last settlement.
func (s *Staker) GetAccount(ctx context.Context, addr thor.Address) (*account.Account, error) {
	defer s.guard.view(ctx)()
	return s.open().accounts.Get(addr)
}

// Stats returns the pool totals as of now.
func (s *Staker) Stats(ctx context.Context) (*accrual.Stats, error) {
	defer s.guard.view(ctx)()
	return s.open().accrual.Preview(s.clock())
}

// Policy returns the administrator and exit parameters.
func (s *Staker) Policy(ctx context.Context) (*policy.Params, error) {
	defer s.guard.view(ctx)()
	return s.open().policy.Params()
}

// AvailableReserve returns the pool balance not earmarked as principal or fees.
func (s *Staker) AvailableReserve(ctx context.Context) (*big.Int, error) {
	defer s.guard.view(ctx)()

	stats, err := s.open().accrual.Stats()
	if err != nil {
		return nil, err
	}
	return s.availableReserve(ctx, stats)
}
