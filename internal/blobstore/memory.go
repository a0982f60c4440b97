package blobstore

import (
	"context"
	"slices"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

type memoryEntry struct {
	blob    Blob
	expires time.Time
}

// Memory is an in-process Store.
type Memory struct {
	entries *xsync.Map[string, memoryEntry]
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
//
// Parameters:
//   - now: Time source, nil uses time.Now
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}

	return &Memory{
		entries: xsync.NewMap[string, memoryEntry](),
		now:     now,
	}
}

// Put stores a copy of blob.
func (m *Memory) Put(ctx context.Context, token, format string, blob Blob, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.entries.Store(Key(token, format), memoryEntry{
		blob:    Blob{Data: slices.Clone(blob.Data), Name: blob.Name},
		expires: m.now().Add(ttlOrDefault(ttl)),
	})

	return nil
}

// Get returns a copy of the stored blob. Expired entries are removed.
func (m *Memory) Get(ctx context.Context, token, format string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}

	key := Key(token, format)
	entry, ok := m.entries.Load(key)
	if !ok {
		return Blob{}, ErrNotFound
	}
	if !m.now().Before(entry.expires) {
		m.entries.Delete(key)
		return Blob{}, ErrNotFound
	}

	return Blob{Data: slices.Clone(entry.blob.Data), Name: entry.blob.Name}, nil
}

// Delete removes the blob.
func (m *Memory) Delete(ctx context.Context, token, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.entries.Delete(Key(token, format))

	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	removed := 0
	m.entries.Range(func(key string, entry memoryEntry) bool {
		if !now.Before(entry.expires) {
			m.entries.Delete(key)
			removed++
		}

		return true
	})

	return removed
}

// Len returns the number of entries, expired ones included until swept.
func (m *Memory) Len() int {
	return m.entries.Size()
}
