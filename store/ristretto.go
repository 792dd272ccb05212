package store

import (
	"context"

	"github.com/dgraph-io/ristretto"
)

// Ristretto is a Store backed by dgraph-io/ristretto. Its cost-based
// admission and eviction make it the size-aware alternative to the LRU
// default; entry cost equals the serialized size estimate.
type Ristretto struct {
	c            *ristretto.Cache
	maxEntrySize int64
}

// NewRistretto returns a ristretto-backed store with the given total byte
// budget and per-entry admission limit.
func NewRistretto(maxSize, maxEntrySize int64) (*Ristretto, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		// track roughly ten times more keys than fit in the budget
		NumCounters: 1e5,
		MaxCost:     maxSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c, maxEntrySize: maxEntrySize}, nil
}

func (r *Ristretto) Get(_ context.Context, key string) (Entry, bool, error) {
	value, ok := r.c.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	entry, ok := value.(Entry)
	return entry, ok, nil
}

func (r *Ristretto) Put(_ context.Context, entry Entry) error {
	size := entry.Size()
	if r.maxEntrySize > 0 && size > r.maxEntrySize {
		return nil
	}
	r.c.SetWithTTL(entry.Key, entry, size, entry.Lifetime)
	// make the write visible to subsequent gets
	r.c.Wait()
	return nil
}

func (r *Ristretto) Remove(_ context.Context, key string) error {
	r.c.Del(key)
	r.c.Wait()
	return nil
}

// Close releases resources held by the underlying cache.
func (r *Ristretto) Close() {
	r.c.Close()
}
