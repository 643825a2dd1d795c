// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"slices"

	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	Account *thor.Address      `json:"account"`
	Kinds   []staker.EventKind `json:"kinds"`
	Range   *Range             `json:"range"`
	Options *Options           `json:"options"`
	Order   eventdb.Order      `json:"order"`
}

type FilteredEvent struct {
	Seq     uint64                `json:"seq"`
	Kind    staker.EventKind      `json:"kind"`
	Account thor.Address          `json:"account"`
	Amount  *thor.HexOrDecimal256 `json:"amount"`
	Fee     *thor.HexOrDecimal256 `json:"fee,omitempty"`
	Time    uint64                `json:"time"`
}

func convertEventFilter(ef *EventFilter) (*eventdb.Filter, error) {
	for _, kind := range ef.Kinds {
		if !slices.Contains(staker.EventKinds, kind) {
			return nil, fmt.Errorf("unknown event kind %q", kind)
		}
	}
	switch ef.Order {
	case "", eventdb.ASC, eventdb.DESC:
	default:
		return nil, fmt.Errorf("unknown order %q", ef.Order)
	}

	filter := &eventdb.Filter{
		Account: ef.Account,
		Kinds:   ef.Kinds,
		Order:   ef.Order,
	}
	if ef.Range != nil {
		filter.Range = &eventdb.Range{}
		if ef.Range.From != nil {
			filter.Range.From = *ef.Range.From
		}
		if ef.Range.To != nil {
			filter.Range.To = *ef.Range.To
		}
	}
	if ef.Options != nil {
		filter.Options = &eventdb.Options{
			Offset: ef.Options.Offset,
			Limit:  ef.Options.Limit,
		}
	}
	return filter, nil
}

func ConvertEvent(seq uint64, ev *staker.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Seq:     seq,
		Kind:    ev.Kind,
		Account: ev.Account,
		Amount:  thor.NewHexOrDecimal256(ev.Amount),
		Time:    ev.Time,
	}
	if ev.Fee != nil {
		fe.Fee = thor.NewHexOrDecimal256(ev.Fee)
	}
	return fe
}
