// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/log"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) attrs(i int) map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]string)
	h.records[i].Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func (h *recordingHandler) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	rec := &recordingHandler{}
	logger := log.NewLogger(rec)
	enabled := &atomic.Bool{}

	var body string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	})
	handler := RequestLoggerMiddleware(logger, enabled, 0)(next)

	req := httptest.NewRequest(http.MethodPost, "/stakers/0x01/deposit", strings.NewReader(`{"amount":"1"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 0, rec.len())
	assert.Equal(t, `{"amount":"1"}`, body)

	enabled.Store(true)
	req = httptest.NewRequest(http.MethodPost, "/stakers/0x01/deposit", strings.NewReader(`{"amount":"2"}`))
	req.Header.Set("x-caller", "0x01")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, 1, rec.len())
	assert.Equal(t, `{"amount":"2"}`, body, "body must reach the handler")

	attrs := rec.attrs(0)
	assert.Equal(t, "/stakers/0x01/deposit", attrs["URI"])
	assert.Equal(t, http.MethodPost, attrs["Method"])
	assert.Equal(t, "0x01", attrs["Caller"])
	assert.Equal(t, `{"amount":"2"}`, attrs["Body"])
}

func TestRequestLoggerSlowQueries(t *testing.T) {
	rec := &recordingHandler{}
	enabled := &atomic.Bool{}

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
	})
	handler := RequestLoggerMiddleware(log.NewLogger(rec), enabled, time.Millisecond)(slow)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ledger", nil))
	assert.Equal(t, 1, rec.len())
}
