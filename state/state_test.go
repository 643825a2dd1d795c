// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/thor"
)

func newTestState(t *testing.T) (*State, kv.Store, *cache.LRU) {
	db := kv.NewMemLevelDB()
	t.Cleanup(func() { db.Close() })
	c, err := cache.NewLRU(64)
	require.NoError(t, err)
	return New(db, c), db, c
}

func TestStateReadWrite(t *testing.T) {
	st, _, _ := newTestState(t)

	addr := thor.BytesToAddress([]byte("service"))
	key := thor.BytesToBytes32([]byte("key"))
	value := thor.BytesToBytes32([]byte("value"))

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	st.SetStorage(addr, key, value)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, value, v)

	st.SetStorage(addr, key, thor.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStateRevert(t *testing.T) {
	st, _, _ := newTestState(t)

	addr := thor.BytesToAddress([]byte("service"))
	key := thor.BytesToBytes32([]byte("key"))

	st.SetStorage(addr, key, thor.BytesToBytes32([]byte{1}))
	chk := st.NewCheckpoint()
	st.SetStorage(addr, key, thor.BytesToBytes32([]byte{2}))
	st.NewCheckpoint()
	st.SetStorage(addr, key, thor.BytesToBytes32([]byte{3}))

	st.RevertTo(chk)
	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, thor.BytesToBytes32([]byte{1}), v)

	// reverting below the base level keeps the base changes
	st.RevertTo(0)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, thor.BytesToBytes32([]byte{1}), v)
}

func TestStageCommit(t *testing.T) {
	st, db, c := newTestState(t)

	addr := thor.BytesToAddress([]byte("service"))
	k1 := thor.BytesToBytes32([]byte("k1"))
	k2 := thor.BytesToBytes32([]byte("k2"))

	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{1}))
	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{9}))
	require.NoError(t, st.EncodeStorage(addr, k2, func() ([]byte, error) {
		return rlp.EncodeToBytes(big.NewInt(42))
	}))

	stage := st.Stage()
	assert.Equal(t, 2, stage.Len())
	assert.False(t, stage.Hash().IsZero())
	require.NoError(t, stage.Commit())

	// a fresh state without cache sees committed values
	fresh := New(db, nil)
	v, err := fresh.GetStorage(addr, k1)
	require.NoError(t, err)
	assert.Equal(t, thor.BytesToBytes32([]byte{9}), v)

	var n big.Int
	require.NoError(t, fresh.DecodeStorage(addr, k2, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &n)
	}))
	assert.Equal(t, int64(42), n.Int64())

	// cache refreshed on commit
	cached, ok := c.Get(storageKey{addr, k1})
	assert.True(t, ok)
	assert.NotEmpty(t, cached)

	// clearing a slot deletes the db key
	cleared := New(db, c)
	cleared.SetStorage(addr, k1, thor.Bytes32{})
	require.NoError(t, cleared.Stage().Commit())
	has, err := db.Has(storageKey{addr, k1}.dbKey())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDroppedStateLeavesNoTrace(t *testing.T) {
	st, db, c := newTestState(t)

	addr := thor.BytesToAddress([]byte("service"))
	key := thor.BytesToBytes32([]byte("key"))
	st.SetStorage(addr, key, thor.BytesToBytes32([]byte{1}))

	// never staged
	v, err := New(db, c).GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestDecodeStorageError(t *testing.T) {
	st, _, _ := newTestState(t)

	addr := thor.BytesToAddress([]byte("service"))
	key := thor.BytesToBytes32([]byte("key"))
	st.SetRawStorage(addr, key, rlp.RawValue{0xc1, 0x01})

	var n uint64
	err := st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &n)
	})
	var serr *Error
	assert.ErrorAs(t, err, &serr)
}

func TestStageHash(t *testing.T) {
	addr := thor.BytesToAddress([]byte("service"))
	k1 := thor.BytesToBytes32([]byte("k1"))
	k2 := thor.BytesToBytes32([]byte("k2"))

	build := func(v1, v2 byte) thor.Bytes32 {
		st, _, _ := newTestState(t)
		st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{v1}))
		st.SetStorage(addr, k2, thor.BytesToBytes32([]byte{v2}))
		return st.Stage().Hash()
	}

	assert.Equal(t, build(1, 2), build(1, 2))
	assert.NotEqual(t, build(1, 2), build(1, 3))

	empty, _, _ := newTestState(t)
	assert.Equal(t, 0, empty.Stage().Len())
	assert.NotEqual(t, build(1, 2), empty.Stage().Hash())
}
