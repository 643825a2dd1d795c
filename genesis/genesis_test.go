// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/asset"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/staker/accrual"
	"github.com/vechain/stakepool/staker/policy"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func TestDevAccounts(t *testing.T) {
	accs := genesis.DevAccounts()
	assert.Len(t, accs, 5)
	seen := make(map[thor.Address]bool)
	for _, a := range accs {
		assert.False(t, a.IsZero())
		seen[a] = true
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, accs, genesis.DevAccounts())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *genesis.Config)
		errMsg string
	}{
		{"ok", func(*genesis.Config) {}, ""},
		{"zero pool", func(c *genesis.Config) { c.Pool = thor.Address{} }, "pool address must be set"},
		{"zero admin", func(c *genesis.Config) { c.Admin = thor.Address{} }, "admin address must be set"},
		{"nil rate", func(c *genesis.Config) { c.RewardRate = nil }, "rewardRate must be a non-negative integer"},
		{"negative rate", func(c *genesis.Config) { c.RewardRate = thor.NewHexOrDecimal256(big.NewInt(-1)) }, "rewardRate must be a non-negative integer"},
		{"zero start", func(c *genesis.Config) { c.EmissionStart = 0 }, "emissionStart must not be 0"},
		{"zero duration", func(c *genesis.Config) { c.EmissionDuration = 0 }, "emissionDuration must not be 0"},
		{"rate overflows", func(c *genesis.Config) {
			c.RewardRate = thor.NewHexOrDecimal256(new(big.Int).Lsh(big.NewInt(1), 250))
		}, "overflows 256 bits"},
		{"hold too long", func(c *genesis.Config) { c.MinimumHold = c.EmissionDuration }, "minimumHold must be shorter than emissionDuration"},
		{"fee too high", func(c *genesis.Config) { c.FeeBasisPoints = 201 }, "feeBasisPoints 201"},
		{"timelock too long", func(c *genesis.Config) { c.UnstakeTimelock = 15*thor.Day + 1 }, "unstakeTimelock 1296001"},
		{"nil balance", func(c *genesis.Config) { c.Accounts[0].Balance = nil }, "balance must be set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := genesis.DevConfig(1000)
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "genesis.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"pool": "0x0000000000000000000000000000000000007777",
		"admin": "0xf077b491b355E64048cE21E3A6Fc4751eEeA77fa",
		"rewardRate": "0xde0b6b3a7640000",
		"emissionStart": 100,
		"emissionDuration": 31536000,
		"minimumHold": 2592000,
		"feeBasisPoints": 100,
		"unstakeTimelock": 604800,
		"reserve": 1000
	}`), 0o600))

	yamlPath := filepath.Join(dir, "genesis.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
pool: "0x0000000000000000000000000000000000007777"
admin: "0xf077b491b355E64048cE21E3A6Fc4751eEeA77fa"
rewardRate: "1000000000000000000"
emissionStart: 100
emissionDuration: 31536000
minimumHold: 2592000
feeBasisPoints: 100
unstakeTimelock: 604800
reserve: "1000"
`), 0o600))

	fromJSON, err := genesis.Load(jsonPath)
	require.NoError(t, err)
	fromYAML, err := genesis.Load(yamlPath)
	require.NoError(t, err)

	for _, cfg := range []*genesis.Config{fromJSON, fromYAML} {
		require.NoError(t, cfg.Validate())
		assert.Equal(t, thor.BytesToAddress([]byte{0x77, 0x77}), cfg.Pool)
		assert.Equal(t, 0, cfg.RewardRate.Int().Cmp(big.NewInt(1e18)))
		assert.Equal(t, uint64(100), cfg.EmissionStart)
		assert.Equal(t, int64(1000), cfg.Reserve.Int().Int64())
	}

	idJSON, err := fromJSON.ID()
	require.NoError(t, err)
	idYAML, err := fromYAML.ID()
	require.NoError(t, err)
	assert.Equal(t, idJSON, idYAML)

	_, err = genesis.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	db := kv.NewMemLevelDB()
	defer db.Close()

	cfg := genesis.DevConfig(1000)
	ledger := asset.NewStore(kv.Bucket("asset").NewStore(db), cfg.Pool)

	id, err := cfg.Setup(db, ledger)
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	sctx := slot.NewContext(cfg.Pool, state.New(db, nil))
	start, end, err := accrual.New(sctx).Schedule()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), start)
	assert.Equal(t, 1000+cfg.EmissionDuration, end)

	params, err := policy.New(sctx).Params()
	require.NoError(t, err)
	assert.Equal(t, &policy.Params{
		Admin:           cfg.Admin,
		FeeBasisPoints:  cfg.FeeBasisPoints,
		UnstakeTimelock: cfg.UnstakeTimelock,
		MinimumHold:     cfg.MinimumHold,
	}, params)

	reserve, err := ledger.BalanceOf(cfg.Pool)
	require.NoError(t, err)
	assert.Equal(t, 0, reserve.Cmp(cfg.Reserve.Int()))
	bal, err := ledger.BalanceOf(cfg.Accounts[1].Address)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(cfg.Accounts[1].Balance.Int()))

	// second run is a no-op
	again, err := cfg.Setup(db, ledger)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	bal, err = ledger.BalanceOf(cfg.Accounts[1].Address)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(cfg.Accounts[1].Balance.Int()))

	// a different config is rejected
	other := genesis.DevConfig(2000)
	_, err = other.Setup(db, ledger)
	assert.ErrorContains(t, err, "genesis mismatch")
}
