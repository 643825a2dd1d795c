// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"github.com/vechain/stakepool/thor"
)

// Staker is an account with its views as of the request time.
type Staker struct {
	Address                       thor.Address          `json:"address"`
	Status                        string                `json:"status"`
	Principal                     *thor.HexOrDecimal256 `json:"principal"`
	RewardDebt                    *thor.HexOrDecimal256 `json:"rewardDebt"`
	AccruedReward                 *thor.HexOrDecimal256 `json:"accruedReward"`
	Earned                        *thor.HexOrDecimal256 `json:"earned"`
	StakeStartTime                uint64                `json:"stakeStartTime"`
	UnstakeInitTime               uint64                `json:"unstakeInitTime"`
	TimeUntilExitUnlocked         uint64                `json:"timeUntilExitUnlocked"`
	TimeUntilMinimumHoldSatisfied uint64                `json:"timeUntilMinimumHoldSatisfied"`
}

type DepositRequest struct {
	Amount *thor.HexOrDecimal256 `json:"amount"`
}
