// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// HexOrDecimal256 marshals big.Int as hex or decimal.
type HexOrDecimal256 math.HexOrDecimal256

// NewHexOrDecimal256 wraps a copy of v.
func NewHexOrDecimal256(v *big.Int) *HexOrDecimal256 {
	return (*HexOrDecimal256)(new(big.Int).Set(v))
}

// Int returns the value as big.Int, nil stays nil.
func (i *HexOrDecimal256) Int() *big.Int {
	if i == nil {
		return nil
	}
	return (*big.Int)(i)
}

func (i *HexOrDecimal256) parse(s string) error {
	bigint, ok := math.ParseBig256(s)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", s)
	}
	*i = HexOrDecimal256(*bigint)
	return nil
}

// UnmarshalJSON accepts a quoted hex/decimal string or a bare number.
func (i *HexOrDecimal256) UnmarshalJSON(input []byte) error {
	var s string
	if err := json.Unmarshal(input, &s); err != nil {
		return (*big.Int)(i).UnmarshalJSON(input)
	}
	return i.parse(s)
}

// MarshalJSON implements the json.Marshaler interface.
func (i HexOrDecimal256) MarshalJSON() ([]byte, error) {
	decimal256 := math.HexOrDecimal256(i)
	text, err := decimal256.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalYAML implements the obsolete yaml.Unmarshaler interface, still honored by yaml.v3.
func (i *HexOrDecimal256) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return i.parse(s)
}
