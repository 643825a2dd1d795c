// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/ledger"
	"github.com/vechain/stakepool/api/middleware"
	"github.com/vechain/stakepool/api/policy"
	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/api/stakers"
	"github.com/vechain/stakepool/api/subscriptions"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staker"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EventsLimit          uint64
	SubscriptionBacklog  int
	PprofOn              bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	EnablePolicyWrites   bool
}

// ParseOrigins splits a comma separated origin list.
func ParseOrigins(s string) []string {
	origins := strings.Split(strings.TrimSpace(s), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	return origins
}

// New returns the api router. Committed events of the staker are streamed to
// websocket subscribers; the returned func closes those hijacked connections.
func New(stk *staker.Staker, eventDB *eventdb.EventDB, opts Options) (http.HandlerFunc, func()) {
	origins := ParseOrigins(opts.AllowedOrigins)

	router := mux.NewRouter()

	ledger.New(stk).
		Mount(router, "/ledger")
	stakers.New(stk).
		Mount(router, "/stakers")
	policy.New(stk, opts.EnablePolicyWrites).
		Mount(router, "/policy")
	if eventDB != nil {
		events.New(eventDB, opts.EventsLimit).
			Mount(router, "/events")
	}

	subs := subscriptions.New(origins, opts.SubscriptionBacklog)
	subs.Mount(router, "/subscriptions")
	stk.AddSink(subs)

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", restutil.CallerHeader}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold)(handler)
	}

	return handler.ServeHTTP, subs.Close
}
