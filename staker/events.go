// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// EventKind names a staking event.
type EventKind string

const (
	EventDeposited        EventKind = "Deposited"
	EventExitInitiated    EventKind = "ExitInitiated"
	EventExited           EventKind = "Exited"
	EventRewardPaid       EventKind = "RewardPaid"
	EventRewardDeferred   EventKind = "RewardDeferred"
	EventFeeUpdated       EventKind = "FeeUpdated"
	EventTimelockUpdated  EventKind = "TimelockUpdated"
	EventFeesWithdrawn    EventKind = "FeesWithdrawn"
	EventSurplusWithdrawn EventKind = "SurplusWithdrawn"
)

// EventKinds lists all kinds.
var EventKinds = []EventKind{
	EventDeposited,
	EventExitInitiated,
	EventExited,
	EventRewardPaid,
	EventRewardDeferred,
	EventFeeUpdated,
	EventTimelockUpdated,
	EventFeesWithdrawn,
	EventSurplusWithdrawn,
}

// Event is emitted by a committed operation.
//
// Amount is the principal for Deposited, ExitInitiated and Exited, the reward for
// RewardPaid and RewardDeferred, basis points for FeeUpdated and seconds for
// TimelockUpdated. Fee is only set on Exited.
type Event struct {
	Kind    EventKind
	Account thor.Address
	Amount  *big.Int
	Fee     *big.Int
	Time    uint64
}

// EventSink receives the events of every committed operation, in order.
type EventSink interface {
	Publish(ctx context.Context, events []*Event) error
}

// EventSinkFunc adapts a func to EventSink.
type EventSinkFunc func(ctx context.Context, events []*Event) error

func (f EventSinkFunc) Publish(ctx context.Context, events []*Event) error {
	return f(ctx, events)
}

type emitter struct {
	now    uint64
	events []*Event
}

func (e *emitter) emit(kind EventKind, account thor.Address, amount *big.Int) *Event {
	ev := &Event{
		Kind:    kind,
		Account: account,
		Amount:  new(big.Int).Set(amount),
		Time:    e.now,
	}
	e.events = append(e.events, ev)
	return ev
}
