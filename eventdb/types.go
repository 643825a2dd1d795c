// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is a closed interval of event time. To of 0 leaves it open.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Empty fields match everything.
type Filter struct {
	Account *thor.Address      `json:"account"`
	Kinds   []staker.EventKind `json:"kinds"`
	Range   *Range             `json:"range"`
	Order   Order              `json:"order"` // default asc
	Options *Options           `json:"options"`
}

// Event is a stored staking event.
type Event struct {
	Seq uint64
	*staker.Event
}
