package pebble

import (
	"context"
	"errors"

	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	"github.com/cockroachdb/pebble"
	pkgerrors "github.com/pkg/errors"
)

type DB struct {
	db *pebble.DB
}

func NewDB(db *pebble.DB) *DB {
	return &DB{db: db}
}

func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if p.db == nil {
		return nil, database.ErrDBClosed
	}

	val, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, database.ErrKeyNotFound
		}
		return nil, pkgerrors.Wrap(err, "pebble get")
	}
	defer closer.Close()

	return copyBytes(val), nil
}

func (p *DB) Write(ctx context.Context, key, value []byte) error {
	if p.db == nil {
		return database.ErrDBClosed
	}
	return pkgerrors.Wrap(p.db.Set(key, value, pebble.Sync), "pebble set")
}

func (p *DB) Delete(ctx context.Context, key []byte) error {
	if p.db == nil {
		return database.ErrDBClosed
	}
	return pkgerrors.Wrap(p.db.Delete(key, pebble.Sync), "pebble delete")
}

func (p *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if p.db == nil {
		return database.ErrDBClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			if err := batch.Set(op.Key, op.Value, nil); err != nil {
				return pkgerrors.Wrap(err, "pebble batch set")
			}
		case database.BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return pkgerrors.Wrap(err, "pebble batch delete")
			}
		default:
			return pkgerrors.Wrapf(database.ErrBatchOperationFailed, "unknown batch operation type: %d", op.Type)
		}
	}

	return pkgerrors.Wrap(batch.Commit(pebble.Sync), "pebble batch commit")
}

func (p *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	return p.newIterator(start, end, false)
}

func (p *DB) ReverseIterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	return p.newIterator(start, end, true)
}

func (p *DB) newIterator(start, end []byte, reverse bool) (database.Iterator, error) {
	if p.db == nil {
		return nil, database.ErrDBClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "pebble new iterator")
	}
	return &Iterator{iter: iter, reverse: reverse}, nil
}

type Iterator struct {
	iter    *pebble.Iterator
	reverse bool
	started bool

	current struct {
		key, value []byte
	}
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
		it.current.key, it.current.value = nil, nil
		return false
	}
	it.current.key = copyBytes(it.iter.Key())
	it.current.value = copyBytes(it.iter.Value())
	return true
}

func (it *Iterator) Key() []byte {
	return it.current.key
}

func (it *Iterator) Value() []byte {
	return it.current.value
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	return it.iter.Close()
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
