// Package store is the tenant-scoped document store behind every admin collection.
//
// Records are free-form field maps addressed as projects/{project}/{collection}/{id}.
// Two implementations share the same semantics: Gorm (SQLite/PostgreSQL) and Memory.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is the absence signal for a single record.
var ErrNotFound = errors.New("document not found")

// Record is one document's fields. Reads include the identifier under "id".
type Record map[string]any

// ID returns the record identifier, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// String returns the field as a string, or "" when it is missing or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Store is the generic CRUD contract over named collections of one tenant.
type Store interface {
	// FetchAll returns every record of the collection, newest first.
	FetchAll(ctx context.Context, collection string) ([]Record, error)
	// FetchOne returns the record or ErrNotFound.
	FetchOne(ctx context.Context, collection, id string) (Record, error)
	// Add creates a record stamped with createdAt/updatedAt and returns its id.
	Add(ctx context.Context, collection string, data Record) (string, error)
	// Update assigns the given top-level fields and refreshes updatedAt.
	Update(ctx context.Context, collection, id string, partial Record) error
	Delete(ctx context.Context, collection, id string) error
	// Merge creates the record if absent, otherwise deep-merges data into it.
	Merge(ctx context.Context, collection, id string, data Record) error
	// ProjectID is the tenant every operation is scoped to.
	ProjectID() string
}

// Option configures a store implementation.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the server clock used for createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the identifier generator used by Add.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

// MergeInto deep-merges src into dst: nested objects merge key by key, any other value
// (scalars, arrays) replaces what dst holds.
func MergeInto(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := asMap(v); ok {
			if dm, ok := asMap(dst[k]); ok {
				merged := cloneMap(dm)
				MergeInto(merged, sm)
				dst[k] = merged
				continue
			}
		}
		dst[k] = cloneValue(v)
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Record:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(cloneMap(r))
}

// fieldsOf copies data without the identifier key.
func fieldsOf(data Record) map[string]any {
	out := cloneMap(data)
	delete(out, "id")
	return out
}
