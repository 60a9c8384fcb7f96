// Package memory is an ordered in-memory database backend.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	"github.com/google/btree"
	"github.com/pkg/errors"
)

const degree = 32

type item struct {
	key, value []byte
}

func (i *item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*item).key) < 0
}

type DB struct {
	mu     sync.RWMutex
	tree   *btree.BTree
	closed bool
}

func NewDB() *DB {
	return &DB{tree: btree.New(degree)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrDBClosed
	}

	found := m.tree.Get(&item{key: key})
	if found == nil {
		return nil, database.ErrKeyNotFound
	}
	return copyBytes(found.(*item).value), nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	m.tree.ReplaceOrInsert(&item{key: copyBytes(key), value: copyBytes(value)})
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	m.tree.Delete(&item{key: key})
	return nil
}

// Batch applies every operation or none of them.
func (m *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	for _, op := range ops {
		if op.Type != database.BatchPut && op.Type != database.BatchDelete {
			return errors.Wrapf(database.ErrBatchOperationFailed, "unknown batch operation type: %d", op.Type)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	for _, op := range ops {
		if op.Type == database.BatchPut {
			m.tree.ReplaceOrInsert(&item{key: copyBytes(op.Key), value: copyBytes(op.Value)})
		} else {
			m.tree.Delete(&item{key: op.Key})
		}
	}
	return nil
}

func (m *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	items, err := m.snapshot(start, end)
	if err != nil {
		return nil, err
	}
	return &Iterator{items: items, pos: -1}, nil
}

func (m *DB) ReverseIterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	items, err := m.snapshot(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return &Iterator{items: items, pos: -1}, nil
}

// Close releases the tree. Further operations return ErrDBClosed.
func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.tree = btree.New(degree)
	return nil
}

// snapshot returns the items in [start, end) in ascending order.
func (m *DB) snapshot(start, end []byte) ([]*item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrDBClosed
	}

	var items []*item
	visit := func(i btree.Item) bool {
		items = append(items, i.(*item))
		return true
	}
	switch {
	case start != nil && end != nil:
		m.tree.AscendRange(&item{key: start}, &item{key: end}, visit)
	case start != nil:
		m.tree.AscendGreaterOrEqual(&item{key: start}, visit)
	case end != nil:
		m.tree.AscendLessThan(&item{key: end}, visit)
	default:
		m.tree.Ascend(visit)
	}
	return items, nil
}

// Iterator walks a snapshot taken when it was created.
type Iterator struct {
	items []*item
	pos   int
}

func (it *Iterator) Next() bool {
	if it.pos < len(it.items) {
		it.pos++
	}
	return it.pos < len(it.items)
}

func (it *Iterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.items) {
		return nil
	}
	return copyBytes(it.items[it.pos].key)
}

func (it *Iterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.items) {
		return nil
	}
	return copyBytes(it.items[it.pos].value)
}

func (it *Iterator) Error() error {
	return nil
}

func (it *Iterator) Close() error {
	it.items = nil
	return nil
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
