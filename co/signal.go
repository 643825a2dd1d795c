// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter observes a Signal.
type Waiter interface {
	// C returns a channel that yields once the signal fired after the previous call.
	C() <-chan bool
}

// Signal wakes waiters. The zero value is ready to use.
type Signal struct {
	lock sync.Mutex
	ch   chan bool
}

func (s *Signal) chLocked() chan bool {
	if s.ch == nil {
		s.ch = make(chan bool, 1)
	}
	return s.ch
}

// Broadcast wakes every waiter.
func (s *Signal) Broadcast() {
	s.lock.Lock()
	defer s.lock.Unlock()

	close(s.chLocked())
	s.ch = make(chan bool, 1)
}

// NewWaiter returns a waiter that misses no broadcast made after this call.
func (s *Signal) NewWaiter() Waiter {
	s.lock.Lock()
	ref := s.chLocked()
	s.lock.Unlock()

	return waiterFunc(func() <-chan bool {
		ch := ref

		s.lock.Lock()
		ref = s.chLocked()
		s.lock.Unlock()

		return ch
	})
}

type waiterFunc func() <-chan bool

func (w waiterFunc) C() <-chan bool {
	return w()
}
