// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/thor"
)

// Stage abstracts changes on the storage.
type Stage struct {
	db      kv.Store
	cache   *cache.LRU
	changes map[storageKey]rlp.RawValue
	order   []storageKey
}

// Len returns count of changed slots.
func (s *Stage) Len() int {
	return len(s.order)
}

// Hash computes a digest over all staged changes, in write order.
func (s *Stage) Hash() thor.Bytes32 {
	hasher := thor.NewBlake2b()
	for _, key := range s.order {
		hasher.Write(key.dbKey())
		hasher.Write(s.changes[key])
	}
	var h thor.Bytes32
	hasher.Sum(h[:0])
	return h
}

// Commit commits all changes into the kv store in a single bulk write.
func (s *Stage) Commit() error {
	if len(s.order) == 0 {
		return nil
	}
	bulk := s.db.Bulk()
	for _, key := range s.order {
		raw := s.changes[key]
		var err error
		if len(raw) == 0 {
			err = bulk.Delete(key.dbKey())
		} else {
			err = bulk.Put(key.dbKey(), raw)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	if s.cache != nil {
		for _, key := range s.order {
			s.cache.Add(key, s.changes[key])
		}
	}
	return nil
}
