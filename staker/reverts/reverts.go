// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a revert.
type Kind uint8

const (
	Validation Kind = iota + 1
	Precondition
	Resource
	Transfer
	Authorization
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Precondition:
		return "precondition"
	case Resource:
		return "resource"
	case Transfer:
		return "transfer"
	case Authorization:
		return "authorization"
	}
	return "unknown"
}

// ErrRevert is an error caused by the caller, it never leaves state changes behind.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

var (
	ErrZeroAmount      = New(Validation, "amount must be greater than zero")
	ErrFeeTooHigh      = New(Validation, "fee exceeds the maximum basis points")
	ErrTimelockTooLong = New(Validation, "timelock exceeds the maximum duration")

	ErrAlreadyExiting        = New(Precondition, "exit already initiated")
	ErrExitNotInitiated      = New(Precondition, "exit not initiated")
	ErrNoStake               = New(Precondition, "no stake")
	ErrTimelockNotElapsed    = New(Precondition, "timelock not elapsed")
	ErrMinimumHoldNotElapsed = New(Precondition, "minimum holding period not elapsed")
	ErrEmissionNotStarted    = New(Precondition, "emission not started")
	ErrTooLateToStake        = New(Precondition, "too late to stake")
	ErrEmissionNotEnded      = New(Precondition, "emission not ended")
	ErrReentrantCall         = New(Precondition, "reentrant call")

	ErrNoRewardOwed            = New(Resource, "no reward owed")
	ErrInsufficientReserve     = New(Resource, "insufficient reward reserve")
	ErrInsufficientFeesAccrued = New(Resource, "insufficient fees accrued")
	ErrNoSurplus               = New(Resource, "no surplus")

	ErrAssetPullFailed = New(Transfer, "asset pull failed")
	ErrAssetPushFailed = New(Transfer, "asset push failed")

	ErrNotAuthorized = New(Authorization, "not authorized")
)

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert wrapped in err, or zero if err is not a revert.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
