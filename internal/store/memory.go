package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/config"

	"github.com/google/uuid"
)

type memDoc struct {
	data      map[string]any
	createdAt time.Time
	seq       int
}

// Memory is an in-process Store with the same semantics as Gorm. Used as a fake in tests.
type Memory struct {
	mu        sync.RWMutex
	projectID string
	opts      options
	seq       int
	docs      map[string]map[string]*memDoc
	failures  map[string]error
}

func NewMemory(projectID string, opts ...Option) (*Memory, error) {
	if projectID == "" {
		return nil, config.ErrMissingProjectID
	}
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{
		projectID: projectID,
		opts:      o,
		docs:      make(map[string]map[string]*memDoc),
		failures:  make(map[string]error),
	}, nil
}

func (m *Memory) ProjectID() string {
	return m.projectID
}

// FailCollection makes every operation on collection return err until cleared with nil.
func (m *Memory) FailCollection(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, collection)
		return
	}
	m.failures[collection] = err
}

func (m *Memory) failure(collection string) error {
	if err, ok := m.failures[collection]; ok {
		return fmt.Errorf("%s: %w", collection, err)
	}
	return nil
}

func (m *Memory) FetchAll(_ context.Context, collection string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(collection); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(m.docs[collection]))
	for id := range m.docs[collection] {
		ids = append(ids, id)
	}
	docs := m.docs[collection]
	sort.Slice(ids, func(i, j int) bool {
		a, b := docs[ids[i]], docs[ids[j]]
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.After(b.createdAt)
		}
		return a.seq > b.seq
	})

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec := Record(cloneMap(docs[id].data))
		rec["id"] = id
		records = append(records, rec)
	}
	return records, nil
}

func (m *Memory) FetchOne(_ context.Context, collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.failure(collection); err != nil {
		return nil, err
	}

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := Record(cloneMap(doc.data))
	rec["id"] = id
	return rec, nil
}

func (m *Memory) Add(_ context.Context, collection string, data Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(collection); err != nil {
		return "", err
	}

	now := m.opts.now()
	fields := fieldsOf(data)
	fields["createdAt"] = now
	fields["updatedAt"] = now

	id := m.opts.newID()
	m.put(collection, id, fields, now)
	return id, nil
}

func (m *Memory) Update(_ context.Context, collection, id string, partial Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(collection); err != nil {
		return err
	}

	doc, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fieldsOf(partial) {
		doc.data[k] = v
	}
	doc.data["updatedAt"] = m.opts.now()
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(collection); err != nil {
		return err
	}
	delete(m.docs[collection], id)
	return nil
}

func (m *Memory) Merge(_ context.Context, collection, id string, data Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(collection); err != nil {
		return err
	}

	doc, ok := m.docs[collection][id]
	if !ok {
		m.put(collection, id, fieldsOf(data), m.opts.now())
		return nil
	}
	MergeInto(doc.data, fieldsOf(data))
	return nil
}

// put must be called with mu held.
func (m *Memory) put(collection, id string, fields map[string]any, createdAt time.Time) {
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]*memDoc)
	}
	m.seq++
	m.docs[collection][id] = &memDoc{data: fields, createdAt: createdAt, seq: m.seq}
}
