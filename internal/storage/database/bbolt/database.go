// Package bbolt is a database backend over a single bbolt bucket.
package bbolt

import (
	"bytes"
	"context"
	"errors"

	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	pkgerrors "github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

type DB struct {
	db     *bbolt.DB
	bucket []byte
}

func NewDB(db *bbolt.DB, bucket []byte) *DB {
	return &DB{
		db:     db,
		bucket: bucket,
	}
}

func (b *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if b.db == nil {
		return nil, database.ErrDBClosed
	}

	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket, err := b.bucketOf(tx)
		if err != nil {
			return err
		}
		v := bucket.Get(key)
		if v == nil {
			return database.ErrKeyNotFound
		}
		// v is only valid for the life of the transaction.
		value = copyBytes(v)
		return nil
	})
	if err != nil {
		return nil, translate(err, "bbolt get")
	}
	return value, nil
}

func (b *DB) Write(ctx context.Context, key, value []byte) error {
	if b.db == nil {
		return database.ErrDBClosed
	}
	return translate(b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := b.bucketOf(tx)
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	}), "bbolt put")
}

func (b *DB) Delete(ctx context.Context, key []byte) error {
	if b.db == nil {
		return database.ErrDBClosed
	}
	return translate(b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := b.bucketOf(tx)
		if err != nil {
			return err
		}
		return bucket.Delete(key)
	}), "bbolt delete")
}

func (b *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if b.db == nil {
		return database.ErrDBClosed
	}
	for _, op := range ops {
		if op.Type != database.BatchPut && op.Type != database.BatchDelete {
			return pkgerrors.Wrapf(database.ErrBatchOperationFailed, "unknown batch operation type: %d", op.Type)
		}
	}

	// bbolt may run fn more than once when coalescing, so it must stay idempotent.
	return translate(b.db.Batch(func(tx *bbolt.Tx) error {
		bucket, err := b.bucketOf(tx)
		if err != nil {
			return err
		}
		for _, op := range ops {
			if op.Type == database.BatchPut {
				err = bucket.Put(op.Key, op.Value)
			} else {
				err = bucket.Delete(op.Key)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}), "bbolt batch")
}

func (b *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	return b.newIterator(start, end, false)
}

func (b *DB) ReverseIterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	return b.newIterator(start, end, true)
}

func (b *DB) newIterator(start, end []byte, reverse bool) (database.Iterator, error) {
	if b.db == nil {
		return nil, database.ErrDBClosed
	}

	tx, err := b.db.Begin(false)
	if err != nil {
		return nil, translate(err, "bbolt begin")
	}
	bucket, err := b.bucketOf(tx)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	return &Iterator{
		tx:      tx,
		cursor:  bucket.Cursor(),
		start:   start,
		end:     end,
		reverse: reverse,
	}, nil
}

func (b *DB) bucketOf(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	bucket := tx.Bucket(b.bucket)
	if bucket == nil {
		return nil, pkgerrors.Errorf("bucket %s not found", b.bucket)
	}
	return bucket, nil
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrKeyNotFound):
		return database.ErrKeyNotFound
	case errors.Is(err, bbolt.ErrDatabaseNotOpen):
		return database.ErrDBClosed
	}
	return pkgerrors.Wrap(err, op)
}

// Iterator walks [start, end) inside a read-only transaction that is
// held until Close.
type Iterator struct {
	tx      *bbolt.Tx
	cursor  *bbolt.Cursor
	start   []byte
	end     []byte
	reverse bool
	started bool
	done    bool

	key, value []byte
}

func (it *Iterator) Next() bool {
	if it.done {
		return false
	}

	var k, v []byte
	switch {
	case !it.started && it.reverse:
		k, v = it.last()
	case !it.started:
		if it.start == nil {
			k, v = it.cursor.First()
		} else {
			k, v = it.cursor.Seek(it.start)
		}
	case it.reverse:
		k, v = it.cursor.Prev()
	default:
		k, v = it.cursor.Next()
	}
	it.started = true

	if k == nil || !it.inRange(k) {
		it.done = true
		it.key, it.value = nil, nil
		return false
	}
	it.key = copyBytes(k)
	it.value = copyBytes(v)
	return true
}

// last positions the cursor on the largest key below end.
func (it *Iterator) last() ([]byte, []byte) {
	if it.end == nil {
		return it.cursor.Last()
	}
	// Seek lands on the first key >= end, or past the last key.
	if k, _ := it.cursor.Seek(it.end); k == nil {
		return it.cursor.Last()
	}
	return it.cursor.Prev()
}

func (it *Iterator) inRange(k []byte) bool {
	if it.start != nil && bytes.Compare(k, it.start) < 0 {
		return false
	}
	return it.end == nil || bytes.Compare(k, it.end) < 0
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() []byte {
	return it.value
}

func (it *Iterator) Error() error {
	return nil
}

func (it *Iterator) Close() error {
	return translate(it.tx.Rollback(), "bbolt rollback")
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
