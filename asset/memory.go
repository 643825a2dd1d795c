// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"context"
	"math/big"
	"sync"

	"github.com/vechain/stakepool/thor"
)

var _ Ledger = (*Memory)(nil)

// Memory is an in-process ledger. Transfers can be refused on demand.
type Memory struct {
	lock       sync.Mutex
	pool       thor.Address
	balances   map[thor.Address]*big.Int
	failPulls  bool
	failPushes bool
	hook       Hook
}

func NewMemory(pool thor.Address) *Memory {
	return &Memory{
		pool:     pool,
		balances: make(map[thor.Address]*big.Int),
	}
}

// Mint credits addr out of thin air.
func (m *Memory) Mint(addr thor.Address, amount *big.Int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.add(addr, amount)
}

// Burn debits addr, returns false if the balance is insufficient.
func (m *Memory) Burn(addr thor.Address, amount *big.Int) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.sub(addr, amount)
}

func (m *Memory) BalanceOf(addr thor.Address) *big.Int {
	m.lock.Lock()
	defer m.lock.Unlock()
	if bal, ok := m.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// FailPulls makes subsequent pulls return false.
func (m *Memory) FailPulls(fail bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.failPulls = fail
}

// FailPushes makes subsequent pushes return false.
func (m *Memory) FailPushes(fail bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.failPushes = fail
}

func (m *Memory) SetHook(hook Hook) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.hook = hook
}

func (m *Memory) Pull(ctx context.Context, from thor.Address, amount *big.Int) (bool, error) {
	return m.transfer(ctx, from, m.pool, amount, true)
}

func (m *Memory) Push(ctx context.Context, to thor.Address, amount *big.Int) (bool, error) {
	return m.transfer(ctx, m.pool, to, amount, false)
}

func (m *Memory) Balance(context.Context) (*big.Int, error) {
	return m.BalanceOf(m.pool), nil
}

func (m *Memory) transfer(ctx context.Context, from, to thor.Address, amount *big.Int, pull bool) (bool, error) {
	m.lock.Lock()
	if (pull && m.failPulls) || (!pull && m.failPushes) || !m.sub(from, amount) {
		m.lock.Unlock()
		return false, nil
	}
	m.add(to, amount)
	hook := m.hook
	m.lock.Unlock()

	if hook != nil {
		hook(ctx, &Transfer{From: from, To: to, Amount: new(big.Int).Set(amount)})
	}
	return true, nil
}

func (m *Memory) add(addr thor.Address, amount *big.Int) {
	bal, ok := m.balances[addr]
	if !ok {
		bal = new(big.Int)
		m.balances[addr] = bal
	}
	bal.Add(bal, amount)
}

func (m *Memory) sub(addr thor.Address, amount *big.Int) bool {
	bal, ok := m.balances[addr]
	if !ok {
		bal = new(big.Int)
	}
	if bal.Cmp(amount) < 0 {
		return false
	}
	if ok {
		bal.Sub(bal, amount)
	}
	return true
}
