// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/api/restutil"
	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
	writeWait  = 10 * time.Second
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveSubscriptions = metrics.LazyLoadGauge("api_active_websocket_count")

	_ staker.EventSink = (*Subscriptions)(nil)
)

type item struct {
	seq uint64
	ev  *staker.Event
}

// Subscriptions streams committed events to websocket clients. It keeps the
// most recent events so a client can resume from a position.
type Subscriptions struct {
	upgrader *websocket.Upgrader
	backlog  int

	lock   sync.RWMutex
	seq    uint64
	recent []item
	signal co.Signal

	done  chan struct{}
	goes  co.Goes
	close sync.Once
}

func New(allowedOrigins []string, backlog int) *Subscriptions {
	return &Subscriptions{
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.ContainsFunc(allowedOrigins, func(allowed string) bool {
					return allowed == "*" || allowed == strings.ToLower(origin)
				})
			},
		},
		backlog: max(backlog, 1),
		done:    make(chan struct{}),
	}
}

// Publish implements staker.EventSink.
func (s *Subscriptions) Publish(_ context.Context, events []*staker.Event) error {
	s.lock.Lock()
	for _, ev := range events {
		s.seq++
		s.recent = append(s.recent, item{s.seq, ev})
	}
	if over := len(s.recent) - s.backlog; over > 0 {
		s.recent = slices.Delete(s.recent, 0, over)
	}
	s.lock.Unlock()

	s.signal.Broadcast()
	return nil
}

// Position returns the sequence of the latest published event.
func (s *Subscriptions) Position() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.seq
}

// since returns the kept events after pos. The returned position is where the next call continues.
func (s *Subscriptions) since(pos uint64) ([]item, uint64) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	i, _ := slices.BinarySearchFunc(s.recent, pos+1, func(it item, seq uint64) int {
		return int(it.seq) - int(seq)
	})
	return slices.Clone(s.recent[i:]), s.seq
}

type eventFilter struct {
	account *thor.Address
	kinds   []staker.EventKind
}

func (f *eventFilter) match(ev *staker.Event) bool {
	if f.account != nil && *f.account != ev.Account {
		return false
	}
	return len(f.kinds) == 0 || slices.Contains(f.kinds, ev.Kind)
}

func parseFilter(req *http.Request) (*eventFilter, uint64, error) {
	query := req.URL.Query()
	var f eventFilter
	if account := query.Get("account"); account != "" {
		addr, err := thor.ParseAddress(account)
		if err != nil {
			return nil, 0, errors.WithMessage(err, "account")
		}
		f.account = &addr
	}
	for _, kind := range query["kind"] {
		if !slices.Contains(staker.EventKinds, staker.EventKind(kind)) {
			return nil, 0, errors.Errorf("unknown event kind %q", kind)
		}
		f.kinds = append(f.kinds, staker.EventKind(kind))
	}
	var pos uint64
	if p := query.Get("pos"); p != "" {
		var err error
		if pos, err = strconv.ParseUint(p, 10, 64); err != nil {
			return nil, 0, errors.WithMessage(err, "pos")
		}
	}
	return &f, pos, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, pos, err := parseFilter(req)
	if err != nil {
		return restutil.BadRequest(err)
	}
	if req.URL.Query().Get("pos") == "" {
		pos = s.Position()
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	s.goes.Go(func() {
		defer conn.Close()
		metricActiveSubscriptions().Add(1)
		defer metricActiveSubscriptions().Add(-1)

		if err := s.pipe(conn, filter, pos); err != nil {
			logger.Debug("subscription closed", "err", err)
		}
	})
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, filter *eventFilter, pos uint64) error {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	waiter := s.signal.NewWaiter()
	for {
		items, next := s.since(pos)
		for _, it := range items {
			if !filter.match(it.ev) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(events.ConvertEvent(it.seq, it.ev)); err != nil {
				return err
			}
		}
		pos = next

		select {
		case <-waiter.C():
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		}
	}
}

// Close disconnects every client. Hijacked connections are not closed by the http server.
func (s *Subscriptions) Close() {
	s.close.Do(func() { close(s.done) })
	s.goes.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
