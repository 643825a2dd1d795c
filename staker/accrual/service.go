// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accrual

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/thor"
)

var (
	slotRewardRate    = thor.BytesToBytes32([]byte("reward-rate"))
	slotEmissionStart = thor.BytesToBytes32([]byte("emission-start"))
	slotEmissionEnd   = thor.BytesToBytes32([]byte("emission-end"))
	slotLastUpdate    = thor.BytesToBytes32([]byte("last-update"))
	slotTotalStaked   = thor.BytesToBytes32([]byte("total-staked"))
	slotTotalActive   = thor.BytesToBytes32([]byte("total-active"))
	slotAccumulator   = thor.BytesToBytes32([]byte("reward-per-token"))
	slotCarry         = thor.BytesToBytes32([]byte("pending-rewards"))
	slotFeesAccrued   = thor.BytesToBytes32([]byte("fees-accrued"))

	logger = log.WithContext("pkg", "accrual")
)

// Service maintains the reward accumulator and the pool wide totals.
type Service struct {
	rewardRate    *slot.Uint256
	emissionStart *slot.Uint64
	emissionEnd   *slot.Uint64
	lastUpdate    *slot.Uint64

	totalStaked *slot.Uint256
	totalActive *slot.Uint256
	accumulator *slot.Uint256
	carry       *slot.Uint256
	feesAccrued *slot.Uint256
}

func New(sctx *slot.Context) *Service {
	return &Service{
		rewardRate:    slot.NewUint256(sctx, slotRewardRate),
		emissionStart: slot.NewUint64(sctx, slotEmissionStart),
		emissionEnd:   slot.NewUint64(sctx, slotEmissionEnd),
		lastUpdate:    slot.NewUint64(sctx, slotLastUpdate),
		totalStaked:   slot.NewUint256(sctx, slotTotalStaked),
		totalActive:   slot.NewUint256(sctx, slotTotalActive),
		accumulator:   slot.NewUint256(sctx, slotAccumulator),
		carry:         slot.NewUint256(sctx, slotCarry),
		feesAccrued:   slot.NewUint256(sctx, slotFeesAccrued),
	}
}

// Initialize sets the immutable emission schedule. It must be called once on an empty ledger.
func (s *Service) Initialize(rate *big.Int, start, duration uint64) error {
	end, err := s.emissionEnd.Get()
	if err != nil {
		return err
	}
	if end != 0 {
		return errors.New("emission schedule already initialized")
	}
	if rate.Sign() < 0 {
		return errors.New("negative reward rate")
	}
	if duration == 0 {
		return errors.New("zero emission duration")
	}
	if err := s.rewardRate.Set(rate); err != nil {
		return errors.WithMessage(err, "reward rate")
	}
	s.emissionStart.Set(start)
	s.emissionEnd.Set(start + duration)
	s.lastUpdate.Set(start)
	return nil
}

// Schedule returns the emission window.
func (s *Service) Schedule() (start uint64, end uint64, err error) {
	if start, err = s.emissionStart.Get(); err != nil {
		return
	}
	end, err = s.emissionEnd.Get()
	return
}

// Stats returns a snapshot of the ledger as persisted, without advancing it.
func (s *Service) Stats() (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.RewardRate, err = s.rewardRate.Get(); err != nil {
		return nil, err
	}
	if st.EmissionStart, err = s.emissionStart.Get(); err != nil {
		return nil, err
	}
	if st.EmissionEnd, err = s.emissionEnd.Get(); err != nil {
		return nil, err
	}
	if st.LastUpdate, err = s.lastUpdate.Get(); err != nil {
		return nil, err
	}
	if st.TotalStaked, err = s.totalStaked.Get(); err != nil {
		return nil, err
	}
	if st.TotalActive, err = s.totalActive.Get(); err != nil {
		return nil, err
	}
	if st.Accumulator, err = s.accumulator.Get(); err != nil {
		return nil, err
	}
	if st.Carry, err = s.carry.Get(); err != nil {
		return nil, err
	}
	if st.FeesAccrued, err = s.feesAccrued.Get(); err != nil {
		return nil, err
	}
	return &st, nil
}

// Preview returns the ledger as it would be after advancing to now, nothing is written.
func (s *Service) Preview(now uint64) (*Stats, error) {
	st, err := s.Stats()
	if err != nil {
		return nil, err
	}
	step := Accrue(st.RewardRate, st.TotalActive, st.LastUpdate, st.EmissionEnd, now)
	st.Accumulator.Add(st.Accumulator, step.Delta)
	st.Carry.Add(st.Carry, step.Remainder)
	st.LastUpdate = step.Effective
	return st, nil
}

// Advance moves the accumulator and the carry forward to min(now, emission end).
// It returns the accumulator after advancing.
func (s *Service) Advance(now uint64) (*big.Int, error) {
	st, err := s.Stats()
	if err != nil {
		return nil, err
	}
	step := Accrue(st.RewardRate, st.TotalActive, st.LastUpdate, st.EmissionEnd, now)
	if step.Effective == st.LastUpdate {
		return st.Accumulator, nil
	}

	if step.Delta.Sign() > 0 {
		st.Accumulator.Add(st.Accumulator, step.Delta)
		if err := s.accumulator.Set(st.Accumulator); err != nil {
			return nil, errors.WithMessage(err, "advance accumulator")
		}
	}
	if step.Remainder.Sign() > 0 {
		if err := s.carry.Set(st.Carry.Add(st.Carry, step.Remainder)); err != nil {
			return nil, errors.WithMessage(err, "advance carry")
		}
	}
	s.lastUpdate.Set(step.Effective)

	logger.Trace("advanced",
		"from", st.LastUpdate,
		"to", step.Effective,
		"active", st.TotalActive,
		"delta", step.Delta,
		"remainder", step.Remainder,
	)
	return st.Accumulator, nil
}

// AddStake adds a deposit to both the staked and the active totals.
func (s *Service) AddStake(amount *big.Int) error {
	if err := s.totalStaked.Add(amount); err != nil {
		return err
	}
	return s.totalActive.Add(amount)
}

// Deactivate removes principal from the active total, it stays staked.
func (s *Service) Deactivate(amount *big.Int) error {
	return errors.WithMessage(s.totalActive.Sub(amount), "deactivate")
}

// RemoveStake removes principal that was already deactivated from the staked total.
func (s *Service) RemoveStake(amount *big.Int) error {
	return errors.WithMessage(s.totalStaked.Sub(amount), "remove stake")
}

func (s *Service) AddFees(amount *big.Int) error {
	return s.feesAccrued.Add(amount)
}

func (s *Service) SubFees(amount *big.Int) error {
	return errors.WithMessage(s.feesAccrued.Sub(amount), "sub fees")
}

// ConsumeCarry decrements the carry by the scaled equivalent of a paid reward, floored at zero.
func (s *Service) ConsumeCarry(reward *big.Int) error {
	carry, err := s.carry.Get()
	if err != nil {
		return err
	}
	scaled := new(big.Int).Mul(reward, thor.Scale)
	if carry.Cmp(scaled) <= 0 {
		carry.SetUint64(0)
	} else {
		carry.Sub(carry, scaled)
	}
	return s.carry.Set(carry)
}
