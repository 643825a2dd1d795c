// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accrual

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func newService(t *testing.T, rate int64, start, duration uint64) *Service {
	db := kv.NewMemLevelDB()
	t.Cleanup(func() { db.Close() })
	svc := New(slot.NewContext(thor.BytesToAddress([]byte("pool")), state.New(db, nil)))
	require.NoError(t, svc.Initialize(big.NewInt(rate), start, duration))
	return svc
}

func TestAccrue(t *testing.T) {
	rate := big.NewInt(100)

	tests := []struct {
		name      string
		active    int64
		last      uint64
		now       uint64
		effective uint64
		delta     *big.Int
		remainder *big.Int
	}{
		{"no elapsed time", 100, 500, 500, 500, big.NewInt(0), big.NewInt(0)},
		{"clock behind last update", 100, 500, 400, 500, big.NewInt(0), big.NewInt(0)},
		{"no active stake goes to carry", 0, 0, 10, 10, big.NewInt(0), new(big.Int).Mul(big.NewInt(1000), thor.Scale)},
		{"exact division", 100, 0, 500, 500, new(big.Int).Mul(big.NewInt(500), thor.Scale), big.NewInt(0)},
		{"clamped to emission end", 400, 500, 5000, 1000, new(big.Int).Mul(big.NewInt(125), thor.Scale), big.NewInt(0)},
		{"remainder carried", 3, 0, 1, 1, new(big.Int).Div(new(big.Int).Mul(big.NewInt(100), thor.Scale), big.NewInt(3)), big.NewInt(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := Accrue(rate, big.NewInt(tt.active), tt.last, 1000, tt.now)
			assert.Equal(t, tt.effective, step.Effective)
			assert.Equal(t, 0, tt.delta.Cmp(step.Delta), "delta %v", step.Delta)
			assert.Equal(t, 0, tt.remainder.Cmp(step.Remainder), "remainder %v", step.Remainder)
		})
	}
}

func TestAccrueRoundingConservation(t *testing.T) {
	f := fuzz.New().NilChance(0)
	rate := big.NewInt(7)

	var last uint64
	emitted := new(big.Int)
	for range 200 {
		var active uint32
		var elapsed uint8
		f.Fuzz(&active)
		f.Fuzz(&elapsed)

		totalActive := new(big.Int).SetUint64(uint64(active))
		step := Accrue(rate, totalActive, last, 1_000_000, last+uint64(elapsed))

		// delta * active + remainder is exactly the scaled emission of the span
		want := new(big.Int).SetUint64(uint64(elapsed))
		want.Mul(want, rate)
		want.Mul(want, thor.Scale)
		assert.Equal(t, 0, want.Cmp(step.Emitted(totalActive)))
		if active > 0 {
			assert.True(t, step.Remainder.Cmp(totalActive) < 0)
		}

		emitted.Add(emitted, step.Emitted(totalActive))
		last = step.Effective
	}
	total := new(big.Int).SetUint64(last)
	total.Mul(total, rate)
	total.Mul(total, thor.Scale)
	assert.Equal(t, 0, total.Cmp(emitted))
}

func TestEarned(t *testing.T) {
	acc := new(big.Int).Mul(big.NewInt(500), thor.Scale)
	assert.Equal(t, big.NewInt(50000), Earned(big.NewInt(100), acc, new(big.Int)))
	assert.Equal(t, 0, Earned(big.NewInt(100), acc, acc).Sign())
}

func TestServiceInitialize(t *testing.T) {
	svc := newService(t, 100, 1000, 1000)

	start, end, err := svc.Schedule()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), start)
	assert.Equal(t, uint64(2000), end)

	assert.Error(t, svc.Initialize(big.NewInt(1), 0, 1))

	st, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), st.LastUpdate)
	assert.Equal(t, big.NewInt(100), st.RewardRate)
}

func TestServiceAdvance(t *testing.T) {
	svc := newService(t, 100, 0, 1000)

	// nobody staked yet, reward goes to the carry
	acc, err := svc.Advance(10)
	require.NoError(t, err)
	assert.Equal(t, 0, acc.Sign())

	require.NoError(t, svc.AddStake(big.NewInt(100)))
	acc, err = svc.Advance(510)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(500), thor.Scale), acc)

	// preview does not write
	preview, err := svc.Preview(1500)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), preview.LastUpdate)
	st, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(510), st.LastUpdate)

	acc, err = svc.Advance(1500)
	require.NoError(t, err)
	assert.Equal(t, preview.Accumulator, acc)

	st, err = svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), st.LastUpdate)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(1000), thor.Scale), st.Carry)

	// past the end nothing moves
	again, err := svc.Advance(2000)
	require.NoError(t, err)
	assert.Equal(t, acc, again)
}

func TestServiceAccumulatorMonotonic(t *testing.T) {
	svc := newService(t, 3, 0, 100_000)
	f := fuzz.New().NilChance(0)

	prev := new(big.Int)
	now := uint64(0)
	for range 100 {
		var step uint16
		var amount uint16
		var deactivate bool
		f.Fuzz(&step)
		f.Fuzz(&amount)
		f.Fuzz(&deactivate)

		now += uint64(step % 500)
		acc, err := svc.Advance(now)
		require.NoError(t, err)
		assert.True(t, acc.Cmp(prev) >= 0)
		prev = acc

		st, err := svc.Stats()
		require.NoError(t, err)
		if deactivate && st.TotalActive.Sign() > 0 {
			require.NoError(t, svc.Deactivate(st.TotalActive))
		} else {
			require.NoError(t, svc.AddStake(big.NewInt(int64(amount)+1)))
		}
		st, err = svc.Stats()
		require.NoError(t, err)
		assert.True(t, st.TotalActive.Cmp(st.TotalStaked) <= 0)
	}
}

func TestServiceTotals(t *testing.T) {
	svc := newService(t, 1, 0, 10)

	require.NoError(t, svc.AddStake(big.NewInt(50)))
	require.NoError(t, svc.Deactivate(big.NewInt(20)))
	assert.Error(t, svc.Deactivate(big.NewInt(31)))
	require.NoError(t, svc.RemoveStake(big.NewInt(20)))

	require.NoError(t, svc.AddFees(big.NewInt(5)))
	assert.Error(t, svc.SubFees(big.NewInt(6)))
	require.NoError(t, svc.SubFees(big.NewInt(2)))

	st, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(30), st.TotalStaked)
	assert.Equal(t, big.NewInt(30), st.TotalActive)
	assert.Equal(t, big.NewInt(3), st.FeesAccrued)
}

func TestServiceConsumeCarry(t *testing.T) {
	svc := newService(t, 2, 0, 10)

	// 10s * 2/s with no stake
	_, err := svc.Advance(10)
	require.NoError(t, err)

	require.NoError(t, svc.ConsumeCarry(big.NewInt(5)))
	st, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(15), thor.Scale), st.Carry)

	// floored at zero
	require.NoError(t, svc.ConsumeCarry(big.NewInt(100)))
	st, err = svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Carry.Sign())
}

func TestServiceAdvanceOverflow(t *testing.T) {
	db := kv.NewMemLevelDB()
	t.Cleanup(func() { db.Close() })
	svc := New(slot.NewContext(thor.BytesToAddress([]byte("pool")), state.New(db, nil)))

	// 1000s at 2^250 per second scaled by 1e18 needs about 320 bits
	rate := new(big.Int).Lsh(big.NewInt(1), 250)
	require.NoError(t, svc.Initialize(rate, 1, 1000))

	_, err := svc.Advance(1001)
	assert.ErrorIs(t, err, slot.ErrOverflow)

	st, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, st.Carry.Sign())
	assert.Equal(t, uint64(1), st.LastUpdate, "a failed advance must not move the clock")

	// the same overflow through the accumulator
	require.NoError(t, svc.AddStake(big.NewInt(1)))
	_, err = svc.Advance(1001)
	assert.ErrorIs(t, err, slot.ErrOverflow)
}
