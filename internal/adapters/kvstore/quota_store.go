package kvstore

import (
	"context"
	"fmt"
	"sync"

	"package-organizer/internal/ports"
)

// DefaultQuotaBytes mirrors the per-origin budget browsers give local storage.
const DefaultQuotaBytes = 5 * 1024 * 1024

// QuotaStore caps the total size (keys plus values, in bytes) held by the wrapped store.
// A write that would exceed the cap fails with ports.ErrQuotaExceeded and changes nothing.
type QuotaStore struct {
	next  ports.KeyValueStore
	limit int

	mu     sync.Mutex
	sizes  map[string]int
	total  int
	loaded bool
}

func NewQuotaStore(next ports.KeyValueStore, limitBytes int) *QuotaStore {
	return &QuotaStore{next: next, limit: limitBytes}
}

func (q *QuotaStore) Get(ctx context.Context, key string) (string, bool, error) {
	return q.next.Get(ctx, key)
}

func (q *QuotaStore) Set(ctx context.Context, key, value string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.load(ctx); err != nil {
		return err
	}

	size := len(key) + len(value)
	projected := q.total - q.sizes[key] + size
	if projected > q.limit {
		return fmt.Errorf("set key=%q: %w (%d of %d bytes)", key, ports.ErrQuotaExceeded, projected, q.limit)
	}

	if err := q.next.Set(ctx, key, value); err != nil {
		return err
	}
	q.total = projected
	q.sizes[key] = size
	return nil
}

func (q *QuotaStore) Delete(ctx context.Context, key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.next.Delete(ctx, key); err != nil {
		return err
	}
	if q.loaded {
		q.total -= q.sizes[key]
		delete(q.sizes, key)
	}
	return nil
}

func (q *QuotaStore) Keys(ctx context.Context) ([]string, error) {
	return q.next.Keys(ctx)
}

// Usage returns the bytes currently accounted against the quota.
func (q *QuotaStore) Usage(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.load(ctx); err != nil {
		return 0, err
	}
	return q.total, nil
}

// load measures what the wrapped store already holds. Runs once.
func (q *QuotaStore) load(ctx context.Context) error {
	if q.loaded {
		return nil
	}

	keys, err := q.next.Keys(ctx)
	if err != nil {
		return fmt.Errorf("quota store: measure usage: %w", err)
	}

	sizes := make(map[string]int, len(keys))
	total := 0
	for _, k := range keys {
		v, ok, err := q.next.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("quota store: measure key=%q: %w", k, err)
		}
		if !ok {
			continue
		}
		sizes[k] = len(k) + len(v)
		total += sizes[k]
	}

	q.sizes = sizes
	q.total = total
	q.loaded = true
	return nil
}
