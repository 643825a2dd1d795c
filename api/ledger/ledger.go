// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type Ledger struct {
	staker *staker.Staker
}

func New(staker *staker.Staker) *Ledger {
	return &Ledger{staker}
}

// Stats is the pool ledger as of the request time.
type Stats struct {
	Pool             thor.Address          `json:"pool"`
	RewardRate       *thor.HexOrDecimal256 `json:"rewardRate"`
	EmissionStart    uint64                `json:"emissionStart"`
	EmissionEnd      uint64                `json:"emissionEnd"`
	LastUpdate       uint64                `json:"lastUpdate"`
	TotalStaked      *thor.HexOrDecimal256 `json:"totalStaked"`
	TotalActive      *thor.HexOrDecimal256 `json:"totalActive"`
	Accumulator      *thor.HexOrDecimal256 `json:"rewardPerToken"`
	Carry            *thor.HexOrDecimal256 `json:"pendingRewards"`
	FeesAccrued      *thor.HexOrDecimal256 `json:"feesAccrued"`
	AvailableReserve *thor.HexOrDecimal256 `json:"availableReserve"`
	Policy           *Policy               `json:"policy"`
}

type Policy struct {
	Admin           thor.Address `json:"admin"`
	FeeBasisPoints  uint64       `json:"feeBasisPoints"`
	UnstakeTimelock uint64       `json:"unstakeTimelock"`
	MinimumHold     uint64       `json:"minimumHold"`
}

func (l *Ledger) handleGetStats(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()
	stats, err := l.staker.Stats(ctx)
	if err != nil {
		return err
	}
	params, err := l.staker.Policy(ctx)
	if err != nil {
		return err
	}
	reserve, err := l.staker.AvailableReserve(ctx)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Stats{
		Pool:             l.staker.Address(),
		RewardRate:       thor.NewHexOrDecimal256(stats.RewardRate),
		EmissionStart:    stats.EmissionStart,
		EmissionEnd:      stats.EmissionEnd,
		LastUpdate:       stats.LastUpdate,
		TotalStaked:      thor.NewHexOrDecimal256(stats.TotalStaked),
		TotalActive:      thor.NewHexOrDecimal256(stats.TotalActive),
		Accumulator:      thor.NewHexOrDecimal256(stats.Accumulator),
		Carry:            thor.NewHexOrDecimal256(stats.Carry),
		FeesAccrued:      thor.NewHexOrDecimal256(stats.FeesAccrued),
		AvailableReserve: thor.NewHexOrDecimal256(reserve),
		Policy: &Policy{
			Admin:           params.Admin,
			FeeBasisPoints:  params.FeeBasisPoints,
			UnstakeTimelock: params.UnstakeTimelock,
			MinimumHold:     params.MinimumHold,
		},
	})
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /ledger").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetStats))
}
