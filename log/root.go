// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(NewLogger(DiscardHandler()))
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// New returns a new logger with the given context, bound to the current root logger.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

// WithContext returns a logger carrying ctx that resolves the root logger on every call.
// Package level loggers are created before main installs its handler, so they must not bind early.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) attrs(extra []any) []any {
	out := make([]any, 0, len(l.ctx)+len(extra))
	out = append(out, l.ctx...)
	return append(out, extra...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: l.attrs(ctx)}
}

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) {
	Root().Write(level, msg, l.attrs(ctx)...)
}

func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	Root().Write(level, msg, l.attrs(attrs)...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { Root().Write(LevelTrace, msg, l.attrs(ctx)...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { Root().Write(LevelDebug, msg, l.attrs(ctx)...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { Root().Write(LevelInfo, msg, l.attrs(ctx)...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { Root().Write(LevelWarn, msg, l.attrs(ctx)...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { Root().Write(LevelError, msg, l.attrs(ctx)...) }

func (l *lazyLogger) Crit(msg string, ctx ...any) {
	Root().Write(LevelCrit, msg, l.attrs(ctx)...)
	os.Exit(1)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler {
	return Root().Handler()
}

// The following functions bypass the exported logger methods (logger.Debug,
// etc.) to keep the call depth the same for all paths to logger.Write so
// runtime.Caller(2) always refers to the call site in client code.

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().Write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().Write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().Write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().Write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().Write(slog.LevelError, msg, ctx...)
}

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...any) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}
