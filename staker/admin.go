// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"

	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

// SetFee sets the exit fee in basis points, capped at thor.MaxFeeBasisPoints.
func (s *Staker) SetFee(ctx context.Context, caller thor.Address, bp uint64) error {
	logger.Debug("setting fee", "caller", caller, "bp", bp)

	err := s.execute(ctx, "set_fee", caller, func(_ context.Context, svc *services, _ *big.Int, em *emitter) error {
		if err := svc.policy.Authorize(caller); err != nil {
			return err
		}
		if err := svc.policy.SetFee(bp); err != nil {
			return err
		}
		em.emit(EventFeeUpdated, caller, new(big.Int).SetUint64(bp))
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("fee updated", "bp", bp)
	return nil
}

// SetTimelock sets the exit timelock in seconds, capped at thor.MaxUnstakeTimelock.
func (s *Staker) SetTimelock(ctx context.Context, caller thor.Address, seconds uint64) error {
	logger.Debug("setting timelock", "caller", caller, "seconds", seconds)

	err := s.execute(ctx, "set_timelock", caller, func(_ context.Context, svc *services, _ *big.Int, em *emitter) error {
		if err := svc.policy.Authorize(caller); err != nil {
			return err
		}
		if err := svc.policy.SetTimelock(seconds); err != nil {
			return err
		}
		em.emit(EventTimelockUpdated, caller, new(big.Int).SetUint64(seconds))
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("timelock updated", "seconds", seconds)
	return nil
}

// WithdrawFees pays amount of the accrued exit fees to the administrator.
func (s *Staker) WithdrawFees(ctx context.Context, caller thor.Address, amount *big.Int) error {
	logger.Debug("withdrawing fees", "caller", caller, "amount", amount)

	err := s.execute(ctx, "withdraw_fees", caller, func(ctx context.Context, svc *services, _ *big.Int, em *emitter) error {
		if err := svc.policy.Authorize(caller); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		stats, err := svc.accrual.Stats()
		if err != nil {
			return err
		}
		if amount.Cmp(stats.FeesAccrued) > 0 {
			return reverts.ErrInsufficientFeesAccrued
		}
		if err := svc.accrual.SubFees(amount); err != nil {
			return err
		}
		if err := s.push(ctx, caller, amount); err != nil {
			return err
		}
		em.emit(EventFeesWithdrawn, caller, amount)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("fees withdrawn", "amount", amount)
	return nil
}

// WithdrawSurplus sweeps the reserve no staker can claim anymore, once emission ended.
// The unattributed carry is kept back.
func (s *Staker) WithdrawSurplus(ctx context.Context, caller thor.Address) error {
	logger.Debug("withdrawing surplus", "caller", caller)

	var surplus *big.Int
	err := s.execute(ctx, "withdraw_surplus", caller, func(ctx context.Context, svc *services, _ *big.Int, em *emitter) error {
		if err := svc.policy.Authorize(caller); err != nil {
			return err
		}
		stats, err := svc.accrual.Stats()
		if err != nil {
			return err
		}
		if em.now <= stats.EmissionEnd {
			return reverts.ErrEmissionNotEnded
		}
		reserve, err := s.availableReserve(ctx, stats)
		if err != nil {
			return err
		}
		surplus = reserve.Sub(reserve, new(big.Int).Quo(stats.Carry, thor.Scale))
		if surplus.Sign() <= 0 {
			return reverts.ErrNoSurplus
		}
		if err := s.push(ctx, caller, surplus); err != nil {
			return err
		}
		em.emit(EventSurplusWithdrawn, caller, surplus)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("surplus withdrawn", "amount", surplus)
	return nil
}
