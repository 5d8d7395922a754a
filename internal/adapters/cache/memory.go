package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/okian/lolhub/pkg/metrics"
)

type memEntry struct {
	raw     []byte
	expires time.Time
}

// Memory is an in-process Cache used when no redis server is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memEntry), now: time.Now}
}

// Get decodes the value at key into dst.
func (m *Memory) Get(_ context.Context, key string, dst any) error {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		metrics.RecordCacheMiss()
		return ErrMiss
	}
	if err := json.Unmarshal(e.raw, dst); err != nil {
		metrics.RecordCacheMiss()
		return fmt.Errorf("decode %s: %w", key, err)
	}
	metrics.RecordCacheHit()
	return nil
}

// Set stores v under key for ttl. A zero ttl never expires.
func (m *Memory) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	e := memEntry{raw: raw}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}
