// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/asset"
	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/staker/accrual"
	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/staker/policy"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var logger = log.WithContext("pkg", "staker")

// Clock returns the current unix time in seconds.
type Clock func() uint64

// Staker is the staking pool: the operations participants and the
// administrator call, each committed as a whole or not at all.
type Staker struct {
	addr   thor.Address
	db     kv.Store
	cache  *cache.LRU
	ledger asset.Ledger
	clock  Clock
	guard  guard

	sinksLock sync.RWMutex
	sinks     []EventSink
}

// services are bound to the state of a single operation.
type services struct {
	state    *state.State
	accrual  *accrual.Service
	accounts *account.Service
	policy   *policy.Service
}

// New opens the pool stored at addr in db. The pool must have been initialized by genesis.
func New(addr thor.Address, db kv.Store, ledger asset.Ledger, clock Clock) (*Staker, error) {
	c, err := cache.NewLRU(4096)
	if err != nil {
		return nil, err
	}
	s := &Staker{
		addr:   addr,
		db:     db,
		cache:  c,
		ledger: ledger,
		clock:  clock,
	}
	_, end, err := s.open().accrual.Schedule()
	if err != nil {
		return nil, errors.Wrap(err, "read emission schedule")
	}
	if end == 0 {
		return nil, errors.New("staking pool not initialized")
	}
	return s, nil
}

// Address returns the address the pool storage is bound to.
func (s *Staker) Address() thor.Address {
	return s.addr
}

// AddSink registers a receiver of committed events.
func (s *Staker) AddSink(sink EventSink) {
	s.sinksLock.Lock()
	defer s.sinksLock.Unlock()
	s.sinks = append(s.sinks, sink)
}

func (s *Staker) open() *services {
	st := state.New(s.db, s.cache)
	sctx := slot.NewContext(s.addr, st)
	return &services{
		state:    st,
		accrual:  accrual.New(sctx),
		accounts: account.New(sctx),
		policy:   policy.New(sctx),
	}
}

type operation func(ctx context.Context, svc *services, accumulator *big.Int, em *emitter) error

// execute runs op under the guard, advancing the accumulator first. The changes
// are committed only if op succeeds, then the events are published.
func (s *Staker) execute(ctx context.Context, name string, caller thor.Address, op operation) (err error) {
	ctx, release, err := s.guard.enter(ctx)
	if err != nil {
		logger.Info(name+" rejected", "caller", caller, "error", err)
		recordOperation(name, err)
		return err
	}
	defer release()
	defer func() { recordOperation(name, err) }()

	now := s.clock()
	svc := s.open()
	checkpoint := svc.state.NewCheckpoint()

	accumulator, err := svc.accrual.Advance(now)
	if err != nil {
		return errors.Wrap(err, "advance accumulator")
	}

	em := &emitter{now: now}
	if err := op(ctx, svc, accumulator, em); err != nil {
		// drop everything the operation wrote
		svc.state.RevertTo(checkpoint)
		if reverts.IsRevertErr(err) {
			logger.Info(name+" failed", "caller", caller, "error", err)
		} else {
			logger.Error(name+" failed", "caller", caller, "error", err)
		}
		return err
	}

	stats, err := svc.accrual.Stats()
	if err != nil {
		return err
	}
	stage := svc.state.Stage()
	if err := stage.Commit(); err != nil {
		// the asset transfer already happened
		logger.Error(name+" commit failed after transfer", "caller", caller, "error", err)
		return errors.Wrap(err, "commit")
	}
	logger.Debug(name+" committed", "caller", caller, "slots", stage.Len(), "hash", stage.Hash())
	recordTotals(stats)
	s.publish(ctx, em.events)
	return nil
}

func (s *Staker) publish(ctx context.Context, events []*Event) {
	if len(events) == 0 {
		return
	}
	s.sinksLock.RLock()
	sinks := s.sinks
	s.sinksLock.RUnlock()

	for _, sink := range sinks {
		if err := sink.Publish(ctx, events); err != nil {
			logger.Warn("failed to publish events", "error", err)
		}
	}
}

func (s *Staker) pull(ctx context.Context, from thor.Address, amount *big.Int) error {
	ok, err := s.ledger.Pull(ctx, from, amount)
	if err != nil {
		return errors.Wrap(err, "pull")
	}
	if !ok {
		return reverts.ErrAssetPullFailed
	}
	return nil
}

func (s *Staker) push(ctx context.Context, to thor.Address, amount *big.Int) error {
	ok, err := s.ledger.Push(ctx, to, amount)
	if err != nil {
		return errors.Wrap(err, "push")
	}
	if !ok {
		return reverts.ErrAssetPushFailed
	}
	return nil
}

// availableReserve is the pool balance not earmarked as principal or fees.
func (s *Staker) availableReserve(ctx context.Context, stats *accrual.Stats) (*big.Int, error) {
	balance, err := s.ledger.Balance(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pool balance")
	}
	reserve := new(big.Int).Sub(balance, stats.TotalStaked)
	return reserve.Sub(reserve, stats.FeesAccrued), nil
}

// Deposit stakes amount for caller, pulling it from the caller's balance.
func (s *Staker) Deposit(ctx context.Context, caller thor.Address, amount *big.Int) error {
	logger.Debug("depositing", "caller", caller, "amount", amount)

	err := s.execute(ctx, "deposit", caller, func(ctx context.Context, svc *services, accumulator *big.Int, em *emitter) error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrZeroAmount
		}
		start, end, err := svc.accrual.Schedule()
		if err != nil {
			return err
		}
		minimumHold, err := svc.policy.MinimumHold()
		if err != nil {
			return err
		}
		if em.now < start {
			return reverts.ErrEmissionNotStarted
		}
		if em.now+minimumHold > end {
			return reverts.ErrTooLateToStake
		}

		acc, err := svc.accounts.Settle(caller, accumulator)
		if err != nil {
			return err
		}
		if err := acc.Deposit(amount, em.now); err != nil {
			return err
		}
		if err := svc.accrual.AddStake(amount); err != nil {
			return err
		}
		if err := svc.accounts.Set(caller, acc); err != nil {
			return err
		}
		if err := s.pull(ctx, caller, amount); err != nil {
			return err
		}
		em.emit(EventDeposited, caller, amount)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("deposited", "caller", caller, "amount", amount)
	return nil
}

// InitiateExit stops the caller's stake from accruing and starts the timelock.
func (s *Staker) InitiateExit(ctx context.Context, caller thor.Address) error {
	logger.Debug("initiating exit", "caller", caller)

	err := s.execute(ctx, "initiate_exit", caller, func(_ context.Context, svc *services, accumulator *big.Int, em *emitter) error {
		acc, err := svc.accounts.Settle(caller, accumulator)
		if err != nil {
			return err
		}
		minimumHold, err := svc.policy.MinimumHold()
		if err != nil {
			return err
		}
		if err := acc.InitiateExit(em.now, minimumHold); err != nil {
			return err
		}
		if err := svc.accrual.Deactivate(acc.Principal); err != nil {
			return err
		}
		if err := svc.accounts.Set(caller, acc); err != nil {
			return err
		}
		em.emit(EventExitInitiated, caller, acc.Principal)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("exit initiated", "caller", caller)
	return nil
}

// CompleteExit returns the principal minus the exit fee, plus the accrued reward
// when the reserve covers it. An uncovered reward stays claimable.
func (s *Staker) CompleteExit(ctx context.Context, caller thor.Address) error {
	logger.Debug("completing exit", "caller", caller)

	err := s.execute(ctx, "complete_exit", caller, func(ctx context.Context, svc *services, accumulator *big.Int, em *emitter) error {
		acc, err := svc.accounts.Settle(caller, accumulator)
		if err != nil {
			return err
		}
		params, err := svc.policy.Params()
		if err != nil {
			return err
		}
		exit, err := acc.CompleteExit(em.now, params.UnstakeTimelock, params.FeeBasisPoints)
		if err != nil {
			return err
		}

		stats, err := svc.accrual.Stats()
		if err != nil {
			return err
		}
		reserve, err := s.availableReserve(ctx, stats)
		if err != nil {
			return err
		}

		payout := new(big.Int).Set(exit.Payout)
		reward := acc.AccruedReward
		var deferred bool
		if reward.Sign() > 0 {
			if reserve.Cmp(reward) >= 0 {
				payout.Add(payout, reward)
				if err := svc.accrual.ConsumeCarry(reward); err != nil {
					return err
				}
				acc.ClearReward()
			} else {
				deferred = true
			}
		}

		if err := svc.accrual.RemoveStake(exit.Principal); err != nil {
			return err
		}
		if err := svc.accrual.AddFees(exit.Fee); err != nil {
			return err
		}
		if err := svc.accounts.Set(caller, acc); err != nil {
			return err
		}
		if err := s.push(ctx, caller, payout); err != nil {
			return err
		}

		em.emit(EventExited, caller, exit.Principal).Fee = exit.Fee
		if reward.Sign() > 0 {
			if deferred {
				em.emit(EventRewardDeferred, caller, reward)
			} else {
				em.emit(EventRewardPaid, caller, reward)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("exit completed", "caller", caller)
	return nil
}

// Claim pays the caller's accrued reward out of the reserve.
func (s *Staker) Claim(ctx context.Context, caller thor.Address) error {
	logger.Debug("claiming", "caller", caller)

	err := s.execute(ctx, "claim", caller, func(ctx context.Context, svc *services, accumulator *big.Int, em *emitter) error {
		acc, err := svc.accounts.Settle(caller, accumulator)
		if err != nil {
			return err
		}
		reward, err := acc.ClaimableReward()
		if err != nil {
			return err
		}
		stats, err := svc.accrual.Stats()
		if err != nil {
			return err
		}
		reserve, err := s.availableReserve(ctx, stats)
		if err != nil {
			return err
		}
		if reserve.Cmp(reward) < 0 {
			return reverts.ErrInsufficientReserve
		}

		if err := svc.accrual.ConsumeCarry(reward); err != nil {
			return err
		}
		acc.ClearReward()
		if err := svc.accounts.Set(caller, acc); err != nil {
			return err
		}
		if err := s.push(ctx, caller, reward); err != nil {
			return err
		}
		em.emit(EventRewardPaid, caller, reward)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("claimed", "caller", caller)
	return nil
}
