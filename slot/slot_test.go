// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

type TestStruct struct {
	Field1 uint64
	Field2 *big.Int
	Addr1  thor.Address
}

func newTestContext(t *testing.T) *Context {
	db := kv.NewMemLevelDB()
	t.Cleanup(func() { db.Close() })
	return NewContext(thor.Address{1}, state.New(db, nil))
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.Bytes32{1})

	value, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, value.Sign())

	require.NoError(t, u.Set(big.NewInt(1000)))
	require.NoError(t, u.Add(big.NewInt(500)))
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), value)

	require.NoError(t, u.Sub(big.NewInt(200)))
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value)

	err = u.Sub(big.NewInt(1301))
	assert.ErrorIs(t, err, ErrUnderflow)
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value, "failed sub must not write")

	limit := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.NoError(t, u.Set(limit))
	err = u.Add(big.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorIs(t, u.Set(new(big.Int).Lsh(big.NewInt(1), 300)), ErrOverflow)
	assert.ErrorIs(t, u.Set(big.NewInt(-1)), ErrUnderflow)
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, limit, value, "rejected values must not write")
}

func TestUint64(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint64(ctx, thor.Bytes32{2})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v)

	u.Set(1_700_000_000)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), v)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[thor.Address, *TestStruct](ctx, thor.Bytes32{3})

	key := thor.BytesToAddress([]byte("staker"))

	empty, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Zero(t, empty.Field1)

	want := &TestStruct{Field1: 7, Field2: big.NewInt(99), Addr1: key}
	require.NoError(t, m.Set(key, want))

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// distinct keys map to distinct slots
	other, err := m.Get(thor.BytesToAddress([]byte("other")))
	require.NoError(t, err)
	assert.Zero(t, other.Field1)

	m.Delete(key)
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Zero(t, got.Field1)
}

func TestRaw(t *testing.T) {
	ctx := newTestContext(t)
	r := NewRaw[*TestStruct](ctx, thor.Bytes32{4})

	v, err := r.Get()
	require.NoError(t, err)
	assert.Nil(t, v)

	want := &TestStruct{Field1: 1, Field2: big.NewInt(2)}
	require.NoError(t, r.Upsert(want))
	v, err = r.Get()
	require.NoError(t, err)
	assert.Equal(t, want, v)
}
