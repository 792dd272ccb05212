package store

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/vasistbhargav/respcache/metrics"
)

// MemoryConfig bounds the in-process store.
type MemoryConfig struct {
	// MaxSize is the total byte budget across all entries.
	// Non-positive means unbounded.
	MaxSize int64
	// MaxEntrySize is the per-entry admission limit in bytes.
	// Entries above it are silently rejected. Non-positive means no limit.
	MaxEntrySize int64
}

// Memory is the default in-process store: a mutex-guarded map with
// least-recently-used eviction once the byte budget is exceeded.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is most recently used
	size    int64
	config  MemoryConfig
}

// NewMemory returns an empty in-process store.
func NewMemory(config MemoryConfig) *Memory {
	return &Memory{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		config:  config,
	}
}

func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	elem, ok := m.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	entry := elem.Value.(Entry)
	if !entry.Fresh(time.Now()) {
		m.remove(elem)
		return Entry{}, false, nil
	}
	m.order.MoveToFront(elem)
	return entry, true, nil
}

func (m *Memory) Put(_ context.Context, entry Entry) error {
	size := entry.Size()
	if m.config.MaxEntrySize > 0 && size > m.config.MaxEntrySize {
		// admission rejection is not an error
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.entries[entry.Key]; ok {
		m.remove(elem)
	}
	m.entries[entry.Key] = m.order.PushFront(entry)
	m.size += size
	if m.config.MaxSize > 0 {
		m.evict()
	}
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if elem, ok := m.entries[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Size returns the current byte size of all stored entries.
func (m *Memory) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// evict drops least-recently-used entries until the store is under budget.
// Callers must hold the mutex.
func (m *Memory) evict() {
	for m.size > m.config.MaxSize {
		back := m.order.Back()
		if back == nil {
			return
		}
		m.remove(back)
		metrics.EvictionCounter.Inc()
	}
}

func (m *Memory) remove(elem *list.Element) {
	entry := elem.Value.(Entry)
	m.order.Remove(elem)
	delete(m.entries, entry.Key)
	m.size -= entry.Size()
}
