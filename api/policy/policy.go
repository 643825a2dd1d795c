// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package policy

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

// Policy serves the administrator operations.
// Writes trust the caller header, so they are only mounted when enabled.
type Policy struct {
	staker       *staker.Staker
	enableWrites bool
}

func New(staker *staker.Staker, enableWrites bool) *Policy {
	return &Policy{staker, enableWrites}
}

type FeeRequest struct {
	FeeBasisPoints *uint64 `json:"feeBasisPoints"`
}

type TimelockRequest struct {
	UnstakeTimelock *uint64 `json:"unstakeTimelock"`
}

type WithdrawRequest struct {
	Amount *thor.HexOrDecimal256 `json:"amount"`
}

type Params struct {
	Admin           thor.Address `json:"admin"`
	FeeBasisPoints  uint64       `json:"feeBasisPoints"`
	UnstakeTimelock uint64       `json:"unstakeTimelock"`
	MinimumHold     uint64       `json:"minimumHold"`
}

func (p *Policy) writeParams(ctx context.Context, w http.ResponseWriter) error {
	params, err := p.staker.Policy(ctx)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Params{
		Admin:           params.Admin,
		FeeBasisPoints:  params.FeeBasisPoints,
		UnstakeTimelock: params.UnstakeTimelock,
		MinimumHold:     params.MinimumHold,
	})
}

func (p *Policy) handleGetParams(w http.ResponseWriter, req *http.Request) error {
	return p.writeParams(req.Context(), w)
}

func (p *Policy) handleSetFee(w http.ResponseWriter, req *http.Request) error {
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	var body FeeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.FeeBasisPoints == nil {
		return restutil.BadRequest(errors.New("body: feeBasisPoints required"))
	}
	if err := p.staker.SetFee(req.Context(), caller, *body.FeeBasisPoints); err != nil {
		return restutil.Revert(err)
	}
	return p.writeParams(req.Context(), w)
}

func (p *Policy) handleSetTimelock(w http.ResponseWriter, req *http.Request) error {
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	var body TimelockRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.UnstakeTimelock == nil {
		return restutil.BadRequest(errors.New("body: unstakeTimelock required"))
	}
	if err := p.staker.SetTimelock(req.Context(), caller, *body.UnstakeTimelock); err != nil {
		return restutil.Revert(err)
	}
	return p.writeParams(req.Context(), w)
}

func (p *Policy) handleWithdrawFees(w http.ResponseWriter, req *http.Request) error {
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	var body WithdrawRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("body: amount required"))
	}
	if err := p.staker.WithdrawFees(req.Context(), caller, body.Amount.Int()); err != nil {
		return restutil.Revert(err)
	}
	return restutil.WriteJSON(w, restutil.M{"amount": body.Amount})
}

func (p *Policy) handleWithdrawSurplus(w http.ResponseWriter, req *http.Request) error {
	caller, err := restutil.Caller(req)
	if err != nil {
		return err
	}
	before, err := p.staker.AvailableReserve(req.Context())
	if err != nil {
		return err
	}
	if err := p.staker.WithdrawSurplus(req.Context(), caller); err != nil {
		return restutil.Revert(err)
	}
	after, err := p.staker.AvailableReserve(req.Context())
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"availableReserve": thor.NewHexOrDecimal256(after), "previousReserve": thor.NewHexOrDecimal256(before)})
}

func (p *Policy) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /policy").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetParams))

	if !p.enableWrites {
		return
	}
	sub.Path("/fee").
		Methods(http.MethodPost).
		Name("POST /policy/fee").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleSetFee))
	sub.Path("/timelock").
		Methods(http.MethodPost).
		Name("POST /policy/timelock").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleSetTimelock))
	sub.Path("/fees/withdraw").
		Methods(http.MethodPost).
		Name("POST /policy/fees/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleWithdrawFees))
	sub.Path("/surplus/withdraw").
		Methods(http.MethodPost).
		Name("POST /policy/surplus/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleWithdrawSurplus))
}
