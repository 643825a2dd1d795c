// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/thor"
)

var (
	// ErrUnderflow is returned when a subtraction would leave a slot negative.
	ErrUnderflow = errors.New("slot: uint256 underflow")
	// ErrOverflow is returned when a value does not fit into 256 bits.
	ErrOverflow = errors.New("slot: uint256 overflow")
)

// Uint256 is a wrapper for storage and retrieval of an uint256.
// Values that are negative or exceed 256 bits are rejected and nothing is written.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, pos thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.Wrapf(ErrUnderflow, "set %v", value)
	}
	if value.BitLen() > 256 {
		return errors.Wrapf(ErrOverflow, "set %d bits", value.BitLen())
	}
	u.context.state.SetStorage(u.context.address, u.pos, thor.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(storage.Add(storage, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return errors.Wrapf(ErrUnderflow, "%v - %v", storage, value)
	}
	return u.Set(storage.Sub(storage, value))
}
