// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	writeOpt = &opt.WriteOptions{}
	readOpt  = &opt.ReadOptions{}

	_ StoreCloser = (*LevelDB)(nil)
)

// Options options for creating level db instance.
type Options struct {
	CacheSize              int // MB
	OpenFilesCacheCapacity int
}

// LevelDB wraps goleveldb as a Store.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens a persistent level db instance.
// Create an empty one if not exists, or open if already there.
func OpenLevelDB(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, opts)
}

// NewMemLevelDB creates a level db in memory.
func NewMemLevelDB() *LevelDB {
	db, err := openLevelDB(storage.NewMemStorage(), Options{})
	if err != nil {
		// mem storage never fails to open
		panic(err)
	}
	return db
}

func openLevelDB(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, 16)
	openFilesCacheCapacity := max(opts.OpenFilesCacheCapacity, 16)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get retrieve value for given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, readOpt)
}

// Has returns whether a key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, readOpt)
}

// Put save value for given key.
func (ldb *LevelDB) Put(key, val []byte) error {
	return ldb.db.Put(key, val, writeOpt)
}

// Delete deletes the given key and its value.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, writeOpt)
}

// Bulk creates an atomic write batch.
func (ldb *LevelDB) Bulk() Bulk {
	return &levelBulk{ldb.db, &leveldb.Batch{}}
}

// Iterate creates an iterator over the given range.
func (ldb *LevelDB) Iterate(r Range) Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, readOpt)
}

// Close close the level db.
// Later operations will all fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

type levelBulk struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBulk) Put(key, val []byte) error {
	b.batch.Put(key, val)
	return nil
}

func (b *levelBulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *levelBulk) Len() int {
	return b.batch.Len()
}

func (b *levelBulk) Write() error {
	return b.db.Write(b.batch, writeOpt)
}
