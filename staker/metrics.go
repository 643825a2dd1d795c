// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/staker/accrual"
	"github.com/vechain/stakepool/staker/reverts"
)

var (
	metricOperations = metrics.LazyLoadCounterVec("staker_operations_count", []string{"op", "result"})
	metricTotals     = metrics.LazyLoadGaugeVec("staker_totals", []string{"kind"})
)

func recordOperation(op string, err error) {
	result := "success"
	if err != nil {
		if kind := reverts.KindOf(err); kind != 0 {
			result = kind.String()
		} else {
			result = "error"
		}
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
}

func recordTotals(st *accrual.Stats) {
	totals := metricTotals()
	totals.SetWithLabel(metrics.Clamp(st.TotalStaked), map[string]string{"kind": "staked"})
	totals.SetWithLabel(metrics.Clamp(st.TotalActive), map[string]string{"kind": "active"})
	totals.SetWithLabel(metrics.Clamp(st.FeesAccrued), map[string]string{"kind": "fees"})
}
