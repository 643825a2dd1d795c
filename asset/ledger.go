// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package asset provides the fungible asset ledger the pool holds its funds on.
package asset

import (
	"context"
	"math/big"

	"github.com/vechain/stakepool/thor"
)

// Ledger moves the staked asset between participants and the pool.
// A false result with nil error means the transfer was refused, nothing moved.
type Ledger interface {
	// Pull moves amount from an account into the pool.
	Pull(ctx context.Context, from thor.Address, amount *big.Int) (bool, error)
	// Push moves amount from the pool to an account.
	Push(ctx context.Context, to thor.Address, amount *big.Int) (bool, error)
	// Balance returns the amount held by the pool.
	Balance(ctx context.Context) (*big.Int, error)
}

// Transfer describes a completed movement of funds.
type Transfer struct {
	From   thor.Address
	To     thor.Address
	Amount *big.Int
}

// Hook is called after each completed transfer, with the context of the caller.
type Hook func(ctx context.Context, tr *Transfer)
