// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/staker/policy"
	"github.com/vechain/stakepool/thor"
)

// Config is user customized genesis of a staking pool.
type Config struct {
	Pool             thor.Address          `json:"pool" yaml:"pool"`
	Admin            thor.Address          `json:"admin" yaml:"admin"`
	RewardRate       *thor.HexOrDecimal256 `json:"rewardRate" yaml:"rewardRate"`
	EmissionStart    uint64                `json:"emissionStart" yaml:"emissionStart"`
	EmissionDuration uint64                `json:"emissionDuration" yaml:"emissionDuration"`
	MinimumHold      uint64                `json:"minimumHold" yaml:"minimumHold"`
	FeeBasisPoints   uint64                `json:"feeBasisPoints" yaml:"feeBasisPoints"`
	UnstakeTimelock  uint64                `json:"unstakeTimelock" yaml:"unstakeTimelock"`
	Reserve          *thor.HexOrDecimal256 `json:"reserve,omitempty" yaml:"reserve"`
	Accounts         []Account             `json:"accounts,omitempty" yaml:"accounts"`
}

// Account is an initial balance on the asset ledger.
type Account struct {
	Address thor.Address          `json:"address" yaml:"address"`
	Balance *thor.HexOrDecimal256 `json:"balance" yaml:"balance"`
}

// Load reads a config file, JSON if the extension is .json, YAML otherwise.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	return &cfg, nil
}

// Validate checks the config can build a usable pool.
func (c *Config) Validate() error {
	if c.Pool.IsZero() {
		return errors.New("pool address must be set")
	}
	if c.Admin.IsZero() {
		return errors.New("admin address must be set")
	}
	if c.RewardRate == nil || c.RewardRate.Int().Sign() < 0 {
		return errors.New("rewardRate must be a non-negative integer")
	}
	if c.EmissionStart == 0 {
		return errors.New("emissionStart must not be 0")
	}
	if c.EmissionDuration == 0 {
		return errors.New("emissionDuration must not be 0")
	}
	// the accumulator and the carry each grow by at most rate * duration * scale
	gross := new(big.Int).Mul(c.RewardRate.Int(), new(big.Int).SetUint64(c.EmissionDuration))
	if gross.Mul(gross, thor.Scale).BitLen() > 256 {
		return errors.New("rewardRate * emissionDuration overflows 256 bits")
	}
	if c.MinimumHold >= c.EmissionDuration {
		return errors.New("minimumHold must be shorter than emissionDuration")
	}
	if err := policy.CheckFee(c.FeeBasisPoints); err != nil {
		return errors.WithMessagef(err, "feeBasisPoints %d", c.FeeBasisPoints)
	}
	if err := policy.CheckTimelock(c.UnstakeTimelock); err != nil {
		return errors.WithMessagef(err, "unstakeTimelock %d", c.UnstakeTimelock)
	}
	if c.Reserve != nil && c.Reserve.Int().Sign() < 0 {
		return errors.New("reserve must be a non-negative integer")
	}
	for _, a := range c.Accounts {
		if a.Balance == nil {
			return fmt.Errorf("%s: balance must be set", a.Address)
		}
		if a.Balance.Int().Sign() < 1 {
			return fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
	}
	return nil
}

// ID identifies the config, it's the hash of its JSON encoding.
func (c *Config) ID() (thor.Bytes32, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return thor.Bytes32{}, err
	}
	return thor.Blake2b(data), nil
}

// DevConfig returns the config of a pool for solo mode, with emission starting at launchTime.
func DevConfig(launchTime uint64) *Config {
	accs := DevAccounts()
	unit := big.NewInt(1e18)

	cfg := &Config{
		Pool:             thor.BytesToAddress([]byte("stakepool")),
		Admin:            accs[0],
		RewardRate:       thor.NewHexOrDecimal256(unit),
		EmissionStart:    launchTime,
		EmissionDuration: 365 * thor.Day,
		MinimumHold:      30 * thor.Day,
		FeeBasisPoints:   100,
		UnstakeTimelock:  7 * thor.Day,
		Reserve:          thor.NewHexOrDecimal256(new(big.Int).Mul(unit, big.NewInt(365*86400))),
	}
	balance := new(big.Int).Mul(unit, big.NewInt(1_000_000))
	for _, a := range accs {
		cfg.Accounts = append(cfg.Accounts, Account{Address: a, Balance: thor.NewHexOrDecimal256(balance)})
	}
	return cfg
}
