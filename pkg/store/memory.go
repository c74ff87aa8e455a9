package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/matzehuels/deskgrid/pkg/layout"
)

// MemoryStore is a RowStore held in process memory. It backs the "memory"
// driver and tests.
type MemoryStore struct {
	mu     sync.Mutex
	rows   []Row
	nextID int64
	desc   *layout.Descriptor
	closed bool

	// FailInsert, when set, makes Insert fail for rows it returns true for.
	FailInsert func(Row) bool
}

var _ RowStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (m *MemoryStore) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.rows = nil
	m.nextID = 1
	return nil
}

func (m *MemoryStore) Insert(ctx context.Context, r Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return InvalidID, ErrClosed
	}
	if m.FailInsert != nil && m.FailInsert(r) {
		return InvalidID, fmt.Errorf("insert %s: injected failure", r.KeyName)
	}
	r.ID = m.nextID
	m.nextID++
	m.rows = append(m.rows, r)
	return r.ID, nil
}

func (m *MemoryStore) QueryByContainer(ctx context.Context, container int64) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []Row
	for _, r := range m.rows {
		if r.Container == container {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) SaveDescriptor(ctx context.Context, d layout.Descriptor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.desc = &d
	return nil
}

func (m *MemoryStore) LoadDescriptor(ctx context.Context) (layout.Descriptor, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return layout.Descriptor{}, false, ErrClosed
	}
	if m.desc == nil {
		return layout.Descriptor{}, false, nil
	}
	return *m.desc, true, nil
}

// Rows returns a copy of every stored row in insertion order.
func (m *MemoryStore) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Row(nil), m.rows...)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
