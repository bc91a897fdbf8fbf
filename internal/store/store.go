package store

import (
	"context"
	"errors"
	"time"

	"github.com/lumeva/reckon/pkg/models"
)

var (
	// ErrNotFound reports a missing catalog item.
	ErrNotFound = errors.New("store: not found")
	// ErrCacheMiss reports an absent or expired cache entry.
	ErrCacheMiss = errors.New("store: cache miss")
)

// CatalogStore is the read-only product catalog.
type CatalogStore interface {
	// Items returns the full catalog in insertion order.
	Items(ctx context.Context) ([]models.Item, error)
	// Item returns one catalog entry or ErrNotFound.
	Item(ctx context.Context, id string) (*models.Item, error)
}

// EventStore is the append-only engagement log. This service appends shown
// and click events; quiz, lead, menu and plan events arrive from outside.
// Entries are never mutated.
type EventStore interface {
	Append(ctx context.Context, event models.Event) error
	// ListByUser returns the user's events, oldest first.
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
	// ListAll returns the whole log, oldest first.
	ListAll(ctx context.Context) ([]models.Event, error)
}

// ProfileStore keeps the most recent generated plan per user. LastPlan
// returns (nil, nil) for users without one; absence is the normal case.
type ProfileStore interface {
	LastPlan(ctx context.Context, userID string) (*models.Plan, error)
	SetLastPlan(ctx context.Context, userID string, plan models.Plan) error
}

// Stores bundles the concrete store implementations picked at startup.
type Stores struct {
	Catalog  CatalogStore
	Events   EventStore
	Profiles ProfileStore
	KV       KV
}

// KV is the cache shared by the item matrix, per-user recommendation entries
// and the engagement counters. Backed by Redis in production and by the
// in-process implementation when no cache is configured.
type KV interface {
	// Get unmarshals the JSON value at key into dest, or ErrCacheMiss when
	// the key is absent or expired.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores value as JSON. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// HIncrBy atomically adds delta to a hash field and returns the new
	// value.
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Ping(ctx context.Context) error
}
