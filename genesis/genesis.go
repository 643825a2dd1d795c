// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/slot"
	"github.com/vechain/stakepool/staker/accrual"
	"github.com/vechain/stakepool/staker/policy"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var (
	genesisIDKey = []byte("genesis-id")

	logger = log.WithContext("pkg", "genesis")
)

// Minter credits the asset ledger.
type Minter interface {
	Mint(addr thor.Address, amount *big.Int) error
}

// Build writes the pool schedule and policy into an empty db.
func (c *Config) Build(db kv.Store) error {
	if err := c.Validate(); err != nil {
		return err
	}
	st := state.New(db, nil)
	sctx := slot.NewContext(c.Pool, st)

	if err := accrual.New(sctx).Initialize(c.RewardRate.Int(), c.EmissionStart, c.EmissionDuration); err != nil {
		return errors.WithMessage(err, "initialize accrual")
	}
	if err := policy.New(sctx).Initialize(&policy.Params{
		Admin:           c.Admin,
		FeeBasisPoints:  c.FeeBasisPoints,
		UnstakeTimelock: c.UnstakeTimelock,
		MinimumHold:     c.MinimumHold,
	}); err != nil {
		return errors.WithMessage(err, "initialize policy")
	}
	stage := st.Stage()
	if err := stage.Commit(); err != nil {
		return err
	}
	logger.Info("genesis built", "pool", c.Pool, "slots", stage.Len(), "hash", stage.Hash())
	return nil
}

// Fund mints the reserve to the pool and the initial balances to their accounts.
func (c *Config) Fund(m Minter) error {
	if c.Reserve != nil && c.Reserve.Int().Sign() > 0 {
		if err := m.Mint(c.Pool, c.Reserve.Int()); err != nil {
			return errors.WithMessage(err, "mint reserve")
		}
	}
	for _, a := range c.Accounts {
		if err := m.Mint(a.Address, a.Balance.Int()); err != nil {
			return errors.WithMessagef(err, "mint %s", a.Address)
		}
	}
	return nil
}

// Setup builds and funds the pool on first run. Later runs check the stored
// genesis id matches the config.
func (c *Config) Setup(db kv.Store, m Minter) (thor.Bytes32, error) {
	id, err := c.ID()
	if err != nil {
		return thor.Bytes32{}, err
	}
	stored, err := db.Get(genesisIDKey)
	if err != nil && !db.IsNotFound(err) {
		return thor.Bytes32{}, errors.Wrap(err, "read genesis id")
	}
	if err == nil {
		if thor.BytesToBytes32(stored) != id {
			return thor.Bytes32{}, errors.Errorf("genesis mismatch: stored %v, config %v", thor.BytesToBytes32(stored), id)
		}
		return id, nil
	}

	if err := c.Build(db); err != nil {
		return thor.Bytes32{}, err
	}
	if err := c.Fund(m); err != nil {
		return thor.Bytes32{}, err
	}
	if err := db.Put(genesisIDKey, id.Bytes()); err != nil {
		return thor.Bytes32{}, errors.Wrap(err, "write genesis id")
	}
	logger.Info("pool initialized", "id", id, "pool", c.Pool, "admin", c.Admin)
	return id, nil
}
