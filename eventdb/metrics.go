// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"strings"

	"github.com/vechain/stakepool/metrics"
)

var (
	metricQueryParameters = metrics.LazyLoadCounterVec("eventdb_query_parameters", []string{"parameters"})
	metricQueryOrder      = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
	metricLimitBucket     = metrics.LazyLoadHistogramVec("eventdb_query_limit_bucket", []string{"type"}, []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleFilter(filter *Filter) {
	paramsUsed := make([]string, 0, 3)
	if filter.Account != nil {
		paramsUsed = append(paramsUsed, "account")
	}
	if len(filter.Kinds) > 0 {
		paramsUsed = append(paramsUsed, "kinds")
	}
	if filter.Range != nil {
		paramsUsed = append(paramsUsed, "range")
	}
	metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})

	order := "asc"
	if filter.Order == DESC {
		order = "desc"
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": order})

	if filter.Options != nil {
		metricLimitBucket().ObserveWithLabels(int64(min(filter.Options.Limit, 1001)), map[string]string{"type": "event"})
	}
}
