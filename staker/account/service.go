// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package account

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/thor"
)

var slotAccounts = thor.BytesToBytes32([]byte("accounts"))

// Service persists accounts keyed by address.
type Service struct {
	accounts *slot.Mapping[thor.Address, *Account]
}

func New(sctx *slot.Context) *Service {
	return &Service{
		accounts: slot.NewMapping[thor.Address, *Account](sctx, slotAccounts),
	}
}

// Get looks up the account of addr, creating the default record if it never staked.
// The record is not written until Set.
func (s *Service) Get(addr thor.Address) (*Account, error) {
	acc, err := s.accounts.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get account")
	}
	if acc == nil {
		return newAccount(), nil
	}
	acc.normalize()
	return acc, nil
}

func (s *Service) Set(addr thor.Address, acc *Account) error {
	if err := s.accounts.Set(addr, acc); err != nil {
		return errors.Wrap(err, "failed to set account")
	}
	return nil
}

// Settle loads the account, settles it against the accumulator and writes it back.
func (s *Service) Settle(addr thor.Address, accumulator *big.Int) (*Account, error) {
	acc, err := s.Get(addr)
	if err != nil {
		return nil, err
	}
	acc.Settle(accumulator)
	if err := s.Set(addr, acc); err != nil {
		return nil, err
	}
	return acc, nil
}
