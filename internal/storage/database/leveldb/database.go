// Package leveldb is a database backend over goleveldb.
package leveldb

import (
	"context"
	"errors"

	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	pkgerrors "github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var syncWrite = &opt.WriteOptions{Sync: true}

type DB struct {
	db *leveldb.DB
}

func NewDB(db *leveldb.DB) *DB {
	return &DB{db: db}
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if l.db == nil {
		return nil, database.ErrDBClosed
	}

	// goleveldb returns a fresh slice, no copy needed.
	val, err := l.db.Get(key, nil)
	if err != nil {
		return nil, translate(err, "leveldb get")
	}
	return val, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	if l.db == nil {
		return database.ErrDBClosed
	}
	return translate(l.db.Put(key, value, syncWrite), "leveldb put")
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	if l.db == nil {
		return database.ErrDBClosed
	}
	return translate(l.db.Delete(key, syncWrite), "leveldb delete")
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if l.db == nil {
		return database.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return pkgerrors.Wrapf(database.ErrBatchOperationFailed, "unknown batch operation type: %d", op.Type)
		}
	}
	return translate(l.db.Write(batch, syncWrite), "leveldb batch write")
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	return l.newIterator(start, end, false)
}

func (l *DB) ReverseIterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	return l.newIterator(start, end, true)
}

func (l *DB) newIterator(start, end []byte, reverse bool) (database.Iterator, error) {
	if l.db == nil {
		return nil, database.ErrDBClosed
	}
	iter := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &Iterator{iter: iter, reverse: reverse}, nil
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return database.ErrKeyNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return database.ErrDBClosed
	}
	return pkgerrors.Wrap(err, op)
}

type Iterator struct {
	iter    iterator.Iterator
	reverse bool
	started bool

	key, value []byte
}

func (it *Iterator) Next() bool {
	var valid bool
	switch {
	case !it.started && it.reverse:
		valid = it.iter.Last()
	case !it.started:
		valid = it.iter.First()
	case it.reverse:
		valid = it.iter.Prev()
	default:
		valid = it.iter.Next()
	}
	it.started = true

	if !valid {
		it.key, it.value = nil, nil
		return false
	}
	it.key = copyBytes(it.iter.Key())
	it.value = copyBytes(it.iter.Value())
	return true
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() []byte {
	return it.value
}

func (it *Iterator) Error() error {
	return translate(it.iter.Error(), "leveldb iterate")
}

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
