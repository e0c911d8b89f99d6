package session

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps sessions in process memory. Suitable for dev and
// single-node deployments; sessions do not survive a restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	once    sync.Once
}

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

func NewMemoryBackend() *MemoryBackend {
	b := &MemoryBackend{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}
	go b.sweep()
	return b
}

func (b *MemoryBackend) Save(_ context.Context, id string, data Data) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[id] = memoryEntry{data: data, expiresAt: time.Now().Add(TTL)}
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, id string) (Data, error) {
	b.mu.RLock()
	e, ok := b.entries[id]
	b.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return Data{}, ErrNoSession
	}
	return e.data, nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, id)
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }

// Close stops the background sweeper.
func (b *MemoryBackend) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *MemoryBackend) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case now := <-ticker.C:
			b.mu.Lock()
			for id, e := range b.entries {
				if now.After(e.expiresAt) {
					delete(b.entries, id)
				}
			}
			b.mu.Unlock()
		}
	}
}
