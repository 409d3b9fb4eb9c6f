package kv

import (
	"context"
	"errors"

	"ctoken/core"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDB persistent store on goleveldb
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB creates or opens a LevelDB database at path
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDB{db: db}, nil
}

// NewLevelDBMemory LevelDB backed by memory storage
func NewLevelDBMemory() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}

	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(_ context.Context, key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, core.ErrKeyNotFound
	}

	return value, err
}

// Write applies the batch atomically
func (l *LevelDB) Write(_ context.Context, batch *core.KVBatch) error {
	b := new(leveldb.Batch)
	for _, op := range batch.Ops {
		if op.Delete {
			b.Delete(op.Key)
		} else {
			b.Put(op.Key, op.Value)
		}
	}

	return l.db.Write(b, nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
