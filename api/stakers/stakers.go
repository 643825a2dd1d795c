// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

type Stakers struct {
	staker *staker.Staker
}

func New(staker *staker.Staker) *Stakers {
	return &Stakers{staker}
}

func (s *Stakers) getStaker(ctx context.Context, addr thor.Address) (*Staker, error) {
	acc, err := s.staker.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	earned, err := s.staker.Earned(ctx, addr)
	if err != nil {
		return nil, err
	}
	exitIn, err := s.staker.TimeUntilExitUnlocked(ctx, addr)
	if err != nil {
		return nil, err
	}
	holdIn, err := s.staker.TimeUntilMinimumHoldSatisfied(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &Staker{
		Address:                       addr,
		Status:                        acc.Status().String(),
		Principal:                     thor.NewHexOrDecimal256(acc.Principal),
		RewardDebt:                    thor.NewHexOrDecimal256(acc.RewardDebt),
		AccruedReward:                 thor.NewHexOrDecimal256(acc.AccruedReward),
		Earned:                        thor.NewHexOrDecimal256(earned),
		StakeStartTime:                acc.StakeStartTime,
		UnstakeInitTime:               acc.UnstakeInitTime,
		TimeUntilExitUnlocked:         exitIn,
		TimeUntilMinimumHoldSatisfied: holdIn,
	}, nil
}

func (s *Stakers) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress(req, "address")
	if err != nil {
		return err
	}
	st, err := s.getStaker(req.Context(), addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, st)
}

// caller returns the path address, which must be the caller.
func caller(req *http.Request) (thor.Address, error) {
	addr, err := restutil.ParseAddress(req, "address")
	if err != nil {
		return thor.Address{}, err
	}
	from, err := restutil.Caller(req)
	if err != nil {
		return thor.Address{}, err
	}
	if from != addr {
		return thor.Address{}, restutil.Forbidden(errors.New("caller does not own the account"))
	}
	return addr, nil
}

// operation wraps a staker operation on the caller account, responding with the account after it.
func (s *Stakers) operation(op func(ctx context.Context, addr thor.Address, req *http.Request) error) restutil.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		addr, err := caller(req)
		if err != nil {
			return err
		}
		if err := op(req.Context(), addr, req); err != nil {
			return restutil.Revert(err)
		}
		st, err := s.getStaker(req.Context(), addr)
		if err != nil {
			return err
		}
		return restutil.WriteJSON(w, st)
	}
}

func (s *Stakers) deposit(ctx context.Context, addr thor.Address, req *http.Request) error {
	var body DepositRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("body: amount required"))
	}
	return s.staker.Deposit(ctx, addr, body.Amount.Int())
}

func (s *Stakers) initiateExit(ctx context.Context, addr thor.Address, _ *http.Request) error {
	return s.staker.InitiateExit(ctx, addr)
}

func (s *Stakers) completeExit(ctx context.Context, addr thor.Address, _ *http.Request) error {
	return s.staker.CompleteExit(ctx, addr)
}

func (s *Stakers) claim(ctx context.Context, addr thor.Address, _ *http.Request) error {
	return s.staker.Claim(ctx, addr)
}

func (s *Stakers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /stakers/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStaker))
	sub.Path("/{address}/deposit").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/deposit").
		HandlerFunc(restutil.WrapHandlerFunc(s.operation(s.deposit)))
	sub.Path("/{address}/initiate-exit").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/initiate-exit").
		HandlerFunc(restutil.WrapHandlerFunc(s.operation(s.initiateExit)))
	sub.Path("/{address}/complete-exit").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/complete-exit").
		HandlerFunc(restutil.WrapHandlerFunc(s.operation(s.completeExit)))
	sub.Path("/{address}/claim").
		Methods(http.MethodPost).
		Name("POST /stakers/{address}/claim").
		HandlerFunc(restutil.WrapHandlerFunc(s.operation(s.claim)))
}
