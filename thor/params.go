// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "math/big"

// Constants of the staking pool.
const (
	// BasisPoints is the denominator of fee ratios.
	BasisPoints uint64 = 10000
	// MaxFeeBasisPoints caps the exit fee at 2%.
	MaxFeeBasisPoints uint64 = 200

	Day uint64 = 24 * 60 * 60
	// MaxUnstakeTimelock caps the waiting period between exit initiation and completion.
	MaxUnstakeTimelock uint64 = 15 * Day
)

// Scale is the fixed-point factor of the reward accumulator and the reward carry.
// Treat as read-only.
var Scale = big.NewInt(1e18)
