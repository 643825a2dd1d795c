// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/asset"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/staker/account"
	"github.com/vechain/stakepool/thor"
)

const t0 uint64 = 1_000_000

var (
	poolAddr  = thor.BytesToAddress([]byte("pool"))
	adminAddr = thor.BytesToAddress([]byte("admin"))
	alice     = thor.BytesToAddress([]byte("alice"))
	bob       = thor.BytesToAddress([]byte("bob"))
)

// testPool is a staker over an in-memory ledger with a clock the test moves by hand.
type testPool struct {
	*Staker
	db     kv.Store
	ledger *asset.Memory
	now    uint64
	cfg    *genesis.Config

	eventsLock sync.Mutex
	events     []*Event
}

func defaultConfig() *genesis.Config {
	return &genesis.Config{
		Pool:             poolAddr,
		Admin:            adminAddr,
		RewardRate:       thor.NewHexOrDecimal256(big.NewInt(100)),
		EmissionStart:    t0,
		EmissionDuration: 1000,
	}
}

func newTestPool(t *testing.T, modify func(cfg *genesis.Config)) *testPool {
	cfg := defaultConfig()
	if modify != nil {
		modify(cfg)
	}

	db := kv.NewMemLevelDB()
	t.Cleanup(func() { db.Close() })
	require.NoError(t, cfg.Build(db))

	p := &testPool{
		db:     db,
		ledger: asset.NewMemory(cfg.Pool),
		now:    cfg.EmissionStart,
		cfg:    cfg,
	}
	if cfg.Reserve != nil {
		p.ledger.Mint(cfg.Pool, cfg.Reserve.Int())
	}

	s, err := New(cfg.Pool, db, p.ledger, func() uint64 { return p.now })
	require.NoError(t, err)
	s.AddSink(EventSinkFunc(func(_ context.Context, events []*Event) error {
		p.eventsLock.Lock()
		defer p.eventsLock.Unlock()
		p.events = append(p.events, events...)
		return nil
	}))
	p.Staker = s
	return p
}

func (p *testPool) eventKinds() []EventKind {
	p.eventsLock.Lock()
	defer p.eventsLock.Unlock()
	kinds := make([]EventKind, 0, len(p.events))
	for _, ev := range p.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// assertConservation checks the totals against the sum over the given accounts,
// which must be every account that ever staked.
func (p *testPool) assertConservation(t *testing.T, addrs ...thor.Address) {
	ctx := context.Background()
	staked, active := new(big.Int), new(big.Int)
	for _, addr := range addrs {
		acc, err := p.GetAccount(ctx, addr)
		require.NoError(t, err)
		staked.Add(staked, acc.Principal)
		if acc.Status() == account.StatusStaked {
			active.Add(active, acc.Principal)
		}
	}
	stats, err := p.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, staked.Cmp(stats.TotalStaked), "total staked %v, sum of principal %v", stats.TotalStaked, staked)
	assert.Zero(t, active.Cmp(stats.TotalActive), "total active %v, sum of active principal %v", stats.TotalActive, active)

	held := new(big.Int).Add(stats.TotalStaked, stats.FeesAccrued)
	assert.True(t, p.ledger.BalanceOf(p.cfg.Pool).Cmp(held) >= 0, "pool balance below staked plus fees")
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	pool *testPool

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(pool *testPool) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), pool: pool}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) At(now uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.pool.now = now
		t.Logf("time is %d", now)
	})
}

func (st *TestSequence) Fund(addr thor.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.pool.ledger.Mint(addr, big.NewInt(amount))
		t.Logf("funded %s with %d", addr, amount)
	})
}

func (st *TestSequence) Deposit(addr thor.Address, amount int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.Deposit(context.Background(), addr, big.NewInt(amount)); err != nil {
			t.Fatalf("failed to deposit %d for %s: %v", amount, addr, err)
		}
		t.Logf("deposited %d for %s", amount, addr)
	})
}

func (st *TestSequence) InitiateExit(addr thor.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.InitiateExit(context.Background(), addr); err != nil {
			t.Fatalf("failed to initiate exit for %s: %v", addr, err)
		}
		t.Logf("exit initiated for %s", addr)
	})
}

func (st *TestSequence) CompleteExit(addr thor.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.CompleteExit(context.Background(), addr); err != nil {
			t.Fatalf("failed to complete exit for %s: %v", addr, err)
		}
		t.Logf("exit completed for %s", addr)
	})
}

func (st *TestSequence) Claim(addr thor.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.pool.Claim(context.Background(), addr); err != nil {
			t.Fatalf("failed to claim for %s: %v", addr, err)
		}
		t.Logf("claimed for %s", addr)
	})
}

// Fails expects op to be rejected with want.
func (st *TestSequence) Fails(want error, op func(ctx context.Context, s *Staker) error) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := op(context.Background(), st.pool.Staker)
		assert.ErrorIs(t, err, want)
	})
}

func (st *TestSequence) Earned(addr thor.Address, expected int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		earned, err := st.pool.Earned(context.Background(), addr)
		require.NoError(t, err)
		assert.Zero(t, earned.Cmp(big.NewInt(expected)), "%s earned %v, expected %d", addr, earned, expected)
	})
}

func (st *TestSequence) Balance(addr thor.Address, expected int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		bal := st.pool.ledger.BalanceOf(addr)
		assert.Zero(t, bal.Cmp(big.NewInt(expected)), "%s balance %v, expected %d", addr, bal, expected)
	})
}

func (st *TestSequence) Assert(aa *AccountAssertions) *TestSequence {
	return st.AddFunc(aa.Assert)
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type AccountAssertions struct {
	pool *testPool
	addr thor.Address

	status        *account.Status
	principal     *big.Int
	accruedReward *big.Int
}

func AssertAccount(pool *testPool, addr thor.Address) *AccountAssertions {
	return &AccountAssertions{pool: pool, addr: addr}
}

func (aa *AccountAssertions) Status(expected account.Status) *AccountAssertions {
	aa.status = &expected
	return aa
}

func (aa *AccountAssertions) Principal(expected int64) *AccountAssertions {
	aa.principal = big.NewInt(expected)
	return aa
}

func (aa *AccountAssertions) AccruedReward(expected int64) *AccountAssertions {
	aa.accruedReward = big.NewInt(expected)
	return aa
}

func (aa *AccountAssertions) Assert(t *testing.T) {
	acc, err := aa.pool.GetAccount(context.Background(), aa.addr)
	assert.NoError(t, err, "failed to get account %s", aa.addr.String())

	if aa.status != nil {
		assert.Equal(t, *aa.status, acc.Status(), "account %s status mismatch", aa.addr.String())
	}
	if aa.principal != nil {
		assert.Zero(t, aa.principal.Cmp(acc.Principal), "account %s principal %v, expected %v", aa.addr.String(), acc.Principal, aa.principal)
	}
	if aa.accruedReward != nil {
		assert.Zero(t, aa.accruedReward.Cmp(acc.AccruedReward), "account %s accrued reward %v, expected %v", aa.addr.String(), acc.AccruedReward, aa.accruedReward)
	}
}
