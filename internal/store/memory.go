package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lumeva/reckon/pkg/models"
)

// MemoryCatalog holds the catalog in process. Used in tests and behind
// FileCatalog.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items []models.Item
	index map[string]int
}

func NewMemoryCatalog(items []models.Item) *MemoryCatalog {
	c := &MemoryCatalog{
		items: make([]models.Item, len(items)),
		index: make(map[string]int, len(items)),
	}
	copy(c.items, items)
	for i := range c.items {
		c.items[i].Position = i
		c.index[c.items[i].ID] = i
	}
	return c
}

func (c *MemoryCatalog) Items(ctx context.Context) ([]models.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]models.Item, len(c.items))
	copy(items, c.items)
	return items, nil
}

func (c *MemoryCatalog) Item(ctx context.Context, id string) (*models.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("catalog item %q: %w", id, ErrNotFound)
	}
	item := c.items[i]
	return &item, nil
}

// MemoryEventLog is the in-process event log used in tests.
type MemoryEventLog struct {
	mu     sync.RWMutex
	events []models.Event
}

func NewMemoryEventLog() *MemoryEventLog {
	return &MemoryEventLog{}
}

func (l *MemoryEventLog) Append(ctx context.Context, event models.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
	return nil
}

func (l *MemoryEventLog) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var events []models.Event
	for _, event := range l.events {
		if event.UserID == userID {
			events = append(events, event)
		}
	}
	return events, nil
}

func (l *MemoryEventLog) ListAll(ctx context.Context) ([]models.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events := make([]models.Event, len(l.events))
	copy(events, l.events)
	return events, nil
}

// MemoryProfiles is the in-process plan store used in tests.
type MemoryProfiles struct {
	mu    sync.RWMutex
	plans map[string]models.Plan
}

func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{plans: make(map[string]models.Plan)}
}

func (p *MemoryProfiles) LastPlan(ctx context.Context, userID string) (*models.Plan, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	plan, ok := p.plans[userID]
	if !ok {
		return nil, nil
	}
	return &plan, nil
}

func (p *MemoryProfiles) SetLastPlan(ctx context.Context, userID string, plan models.Plan) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.plans[userID] = plan
	return nil
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryKV is the in-process cache fallback. It honors the same TTL
// semantics as the Redis implementation: expired entries read as misses and
// are dropped lazily.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	hashes  map[string]map[string]int64
	now     func() time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string]memoryEntry),
		hashes:  make(map[string]map[string]int64),
		now:     time.Now,
	}
}

func (kv *MemoryKV) Get(ctx context.Context, key string, dest interface{}) error {
	kv.mu.RLock()
	entry, ok := kv.entries[key]
	kv.mu.RUnlock()
	if !ok {
		return ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && entry.expiresAt.Before(kv.now()) {
		kv.mu.Lock()
		delete(kv.entries, key)
		kv.mu.Unlock()
		return ErrCacheMiss
	}
	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return nil
}

func (kv *MemoryKV) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}

	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = kv.now().Add(ttl)
	}

	kv.mu.Lock()
	kv.entries[key] = entry
	kv.mu.Unlock()
	return nil
}

func (kv *MemoryKV) Delete(ctx context.Context, key string) error {
	kv.mu.Lock()
	delete(kv.entries, key)
	delete(kv.hashes, key)
	kv.mu.Unlock()
	return nil
}

func (kv *MemoryKV) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	hash, ok := kv.hashes[key]
	if !ok {
		hash = make(map[string]int64)
		kv.hashes[key] = hash
	}
	hash[field] += delta
	return hash[field], nil
}

func (kv *MemoryKV) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	result := make(map[string]string, len(kv.hashes[key]))
	for field, value := range kv.hashes[key] {
		result[field] = strconv.FormatInt(value, 10)
	}
	return result, nil
}

func (kv *MemoryKV) Ping(ctx context.Context) error {
	return nil
}
