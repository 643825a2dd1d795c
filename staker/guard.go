// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"sync"

	"github.com/vechain/stakepool/staker/reverts"
)

// guard serializes operations and rejects reentrant ones.
//
// enter acquires the lock and returns a context marked with the guard. The
// marked context is the one handed to the asset ledger, so a transfer calling
// back into the same staker is detected by the mark instead of deadlocking.
// The returned release func must be deferred right after a successful enter.
type guard struct {
	lock sync.Mutex
}

func (g *guard) entered(ctx context.Context) bool {
	return ctx.Value(g) != nil
}

func (g *guard) enter(ctx context.Context) (context.Context, func(), error) {
	if g.entered(ctx) {
		return nil, nil, reverts.ErrReentrantCall
	}
	g.lock.Lock()
	return context.WithValue(ctx, g, struct{}{}), g.lock.Unlock, nil
}

// view takes the lock for a read, unless called back from inside an operation,
// which reads the last committed state without locking.
func (g *guard) view(ctx context.Context) func() {
	if g.entered(ctx) {
		return func() {}
	}
	g.lock.Lock()
	return g.lock.Unlock
}
