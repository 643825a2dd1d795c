// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package policy

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/thor"
)

var (
	slotAdmin       = thor.BytesToBytes32([]byte("admin"))
	slotFee         = thor.BytesToBytes32([]byte("fee-basis-points"))
	slotTimelock    = thor.BytesToBytes32([]byte("unstake-timelock"))
	slotMinimumHold = thor.BytesToBytes32([]byte("minimum-stake-duration"))
)

// Params is a snapshot of the policy.
type Params struct {
	Admin           thor.Address
	FeeBasisPoints  uint64
	UnstakeTimelock uint64 // seconds
	MinimumHold     uint64 // seconds, fixed at genesis
}

// Service holds the administrator and the bounded exit parameters.
type Service struct {
	admin       *slot.Raw[thor.Address]
	fee         *slot.Uint64
	timelock    *slot.Uint64
	minimumHold *slot.Uint64
}

func New(sctx *slot.Context) *Service {
	return &Service{
		admin:       slot.NewRaw[thor.Address](sctx, slotAdmin),
		fee:         slot.NewUint64(sctx, slotFee),
		timelock:    slot.NewUint64(sctx, slotTimelock),
		minimumHold: slot.NewUint64(sctx, slotMinimumHold),
	}
}

// Initialize writes the genesis policy.
func (s *Service) Initialize(params *Params) error {
	if params.Admin.IsZero() {
		return errors.New("zero admin address")
	}
	if err := CheckFee(params.FeeBasisPoints); err != nil {
		return err
	}
	if err := CheckTimelock(params.UnstakeTimelock); err != nil {
		return err
	}
	if err := s.admin.Upsert(params.Admin); err != nil {
		return err
	}
	s.fee.Set(params.FeeBasisPoints)
	s.timelock.Set(params.UnstakeTimelock)
	s.minimumHold.Set(params.MinimumHold)
	return nil
}

// CheckFee validates a fee in basis points.
func CheckFee(bp uint64) error {
	if bp > thor.MaxFeeBasisPoints {
		return reverts.ErrFeeTooHigh
	}
	return nil
}

// CheckTimelock validates an unstake timelock in seconds.
func CheckTimelock(seconds uint64) error {
	if seconds > thor.MaxUnstakeTimelock {
		return reverts.ErrTimelockTooLong
	}
	return nil
}

// Authorize fails unless caller is the administrator.
func (s *Service) Authorize(caller thor.Address) error {
	admin, err := s.admin.Get()
	if err != nil {
		return err
	}
	if admin.IsZero() || caller != admin {
		return reverts.ErrNotAuthorized
	}
	return nil
}

func (s *Service) Params() (*Params, error) {
	var (
		p   Params
		err error
	)
	if p.Admin, err = s.admin.Get(); err != nil {
		return nil, err
	}
	if p.FeeBasisPoints, err = s.fee.Get(); err != nil {
		return nil, err
	}
	if p.UnstakeTimelock, err = s.timelock.Get(); err != nil {
		return nil, err
	}
	if p.MinimumHold, err = s.minimumHold.Get(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) MinimumHold() (uint64, error) {
	return s.minimumHold.Get()
}

// SetFee applies to every exit completed afterwards.
func (s *Service) SetFee(bp uint64) error {
	if err := CheckFee(bp); err != nil {
		return err
	}
	s.fee.Set(bp)
	return nil
}

// SetTimelock applies to every exit completed afterwards, including pending ones.
func (s *Service) SetTimelock(seconds uint64) error {
	if err := CheckTimelock(seconds); err != nil {
		return err
	}
	s.timelock.Set(seconds)
	return nil
}
