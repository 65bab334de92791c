// internal/cache/cache.go
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/batisource/sourcing-backend/internal/models"
)

// Store is the Result Cache backing store. The default is the in-process
// Memory store; deployments that share results between instances plug in
// the Redis store instead.
type Store interface {
	Get(ctx context.Context, key string) (*models.TermResult, bool)
	Set(ctx context.Context, key string, result *models.TermResult)
}

// TermKey normalizes a search term into its cache key.
func TermKey(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// ImageKey builds the cache key for an image-based lookup.
func ImageKey(imageURL string) string {
	return "img:" + imageURL
}

type memoryEntry struct {
	result    *models.TermResult
	expiresAt time.Time
}

// Memory is a map-backed store with optional expiry. A TTL of zero keeps
// entries for the life of the process.
type Memory struct {
	mtx     sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}

	if ttl > 0 {
		go m.janitor()
	}

	return m
}

func (m *Memory) janitor() {
	for {
		time.Sleep(m.ttl)
		now := time.Now()
		m.mtx.Lock()
		for key, entry := range m.entries {
			if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
				delete(m.entries, key)
			}
		}
		m.mtx.Unlock()
	}
}

func (m *Memory) Get(_ context.Context, key string) (*models.TermResult, bool) {
	m.mtx.RLock()
	entry, ok := m.entries[key]
	m.mtx.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

func (m *Memory) Set(_ context.Context, key string, result *models.TermResult) {
	entry := memoryEntry{result: result}
	if m.ttl > 0 {
		entry.expiresAt = time.Now().Add(m.ttl)
	}

	m.mtx.Lock()
	m.entries[key] = entry
	m.mtx.Unlock()
}
