// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"context"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var (
	slotBalances = thor.BytesToBytes32([]byte("balances"))
	slotSupply   = thor.BytesToBytes32([]byte("supply"))

	logger = log.WithContext("pkg", "asset")

	_ Ledger = (*Store)(nil)
)

// Store is a ledger persisted in a kv store. Each transfer is committed on its own.
type Store struct {
	lock sync.Mutex
	db   kv.Store
	pool thor.Address
	hook Hook
}

func NewStore(db kv.Store, pool thor.Address) *Store {
	return &Store{db: db, pool: pool}
}

func (s *Store) SetHook(hook Hook) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.hook = hook
}

type book struct {
	st       *state.State
	balances *slot.Mapping[thor.Address, *big.Int]
	supply   *slot.Uint256
}

func (s *Store) open() *book {
	st := state.New(s.db, nil)
	sctx := slot.NewContext(s.pool, st)
	return &book{
		st:       st,
		balances: slot.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		supply:   slot.NewUint256(sctx, slotSupply),
	}
}

// Mint credits addr and grows the supply.
func (s *Store) Mint(addr thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative amount")
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	b := s.open()
	bal, err := b.balances.Get(addr)
	if err != nil {
		return err
	}
	if err := b.balances.Set(addr, bal.Add(bal, amount)); err != nil {
		return err
	}
	if err := b.supply.Add(amount); err != nil {
		return err
	}
	return b.st.Stage().Commit()
}

// Supply returns the total minted amount.
func (s *Store) Supply() (*big.Int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.open().supply.Get()
}

func (s *Store) BalanceOf(addr thor.Address) (*big.Int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.open().balances.Get(addr)
}

func (s *Store) Balance(context.Context) (*big.Int, error) {
	return s.BalanceOf(s.pool)
}

func (s *Store) Pull(ctx context.Context, from thor.Address, amount *big.Int) (bool, error) {
	return s.transfer(ctx, from, s.pool, amount)
}

func (s *Store) Push(ctx context.Context, to thor.Address, amount *big.Int) (bool, error) {
	return s.transfer(ctx, s.pool, to, amount)
}

func (s *Store) transfer(ctx context.Context, from, to thor.Address, amount *big.Int) (bool, error) {
	ok, hook, err := s.move(from, to, amount)
	if err != nil || !ok {
		return ok, err
	}
	if hook != nil {
		hook(ctx, &Transfer{From: from, To: to, Amount: new(big.Int).Set(amount)})
	}
	return true, nil
}

func (s *Store) move(from, to thor.Address, amount *big.Int) (bool, Hook, error) {
	if amount.Sign() < 0 {
		return false, nil, nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	b := s.open()
	fromBal, err := b.balances.Get(from)
	if err != nil {
		return false, nil, err
	}
	if fromBal.Cmp(amount) < 0 {
		logger.Debug("transfer refused", "from", from, "to", to, "amount", amount, "balance", fromBal)
		return false, nil, nil
	}
	if err := b.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return false, nil, err
	}
	toBal, err := b.balances.Get(to)
	if err != nil {
		return false, nil, err
	}
	if err := b.balances.Set(to, toBal.Add(toBal, amount)); err != nil {
		return false, nil, err
	}
	if err := b.st.Stage().Commit(); err != nil {
		return false, nil, errors.Wrap(err, "commit transfer")
	}
	return true, s.hook, nil
}
