package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/internal/ml"
	"github.com/lumeva/reckon/internal/store"
	"github.com/lumeva/reckon/pkg/models"
)

const itemMatrixKey = "reco:item_matrix"

// Popularity weights per event kind. A click is a stronger signal than an
// impression or a quiz match.
const (
	quizItemWeight  = 1
	clickWeight     = 3
	shownItemWeight = 1
	leadItemWeight  = 1
)

// ItemMatrix is a read-only snapshot of the catalog: one sparse TF-IDF vector
// per item, the IDF table user text is vectorized against, the popularity
// ranking for cold starts, and the catalog insertion order that fixes
// iteration and tie-breaking.
type ItemMatrix struct {
	Vectors map[string]ml.Vector `json:"vectors"`
	IDF     map[string]float64   `json:"idf"`
	Popular []string             `json:"popular"`
	Order   []string             `json:"order"`
	BuiltAt time.Time            `json:"built_at"`
}

// ItemMatrixService owns the shared matrix snapshot. Readers get the current
// pointer; rebuilds construct a new snapshot and swap it in, so an in-flight
// ranking never observes a half-built matrix.
type ItemMatrixService struct {
	catalog store.CatalogStore
	events  store.EventStore
	kv      store.KV
	config  *config.RecoConfig
	logger  *logrus.Logger
	metrics *Metrics

	mu      sync.RWMutex
	current *ItemMatrix

	rebuildGroup singleflight.Group
	now          func() time.Time
}

func NewItemMatrixService(
	catalog store.CatalogStore,
	events store.EventStore,
	kv store.KV,
	cfg *config.RecoConfig,
	logger *logrus.Logger,
	metrics *Metrics,
) *ItemMatrixService {
	return &ItemMatrixService{
		catalog: catalog,
		events:  events,
		kv:      kv,
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Load returns a usable matrix: the in-process snapshot if still fresh, then
// the KV copy, then a rebuild. Concurrent cold readers collapse onto one
// rebuild.
func (s *ItemMatrixService) Load(ctx context.Context) (*ItemMatrix, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current != nil && s.now().Sub(current.BuiltAt) < s.config.MatrixTTL {
		return current, nil
	}

	// The KV entry is written with the matrix TTL, so its presence means
	// another process rebuilt recently enough.
	var cached ItemMatrix
	if err := s.kv.Get(ctx, itemMatrixKey, &cached); err == nil {
		s.mu.Lock()
		s.current = &cached
		s.mu.Unlock()
		return &cached, nil
	} else if !errors.Is(err, store.ErrCacheMiss) {
		s.logger.WithError(err).Warn("Item matrix cache read failed")
	}

	return s.Rebuild(ctx)
}

// Rebuild recomputes the matrix from the catalog and the event log.
// Concurrent callers share a single in-flight rebuild. The shared work runs
// on a detached context bounded by the rebuild timeout, so one caller's
// cancellation never fails the others; an abandoning caller gets its own
// context error while the rebuild carries on to commit.
func (s *ItemMatrixService) Rebuild(ctx context.Context) (*ItemMatrix, error) {
	ch := s.rebuildGroup.DoChan("item-matrix", func() (interface{}, error) {
		rebuildCtx := context.WithoutCancel(ctx)
		if timeout := s.config.RebuildTimeout; timeout > 0 {
			var cancel context.CancelFunc
			rebuildCtx, cancel = context.WithTimeout(rebuildCtx, timeout)
			defer cancel()
		}
		return s.rebuild(rebuildCtx)
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*ItemMatrix), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *ItemMatrixService) rebuild(ctx context.Context) (*ItemMatrix, error) {
	start := time.Now()

	items, err := s.catalog.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	order := make([]string, len(items))
	for i, item := range items {
		order[i] = item.ID
	}

	vectors, idf := ml.BuildItemVectors(ml.BuildCorpus(items))

	events, err := s.events.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	matrix := &ItemMatrix{
		Vectors: vectors,
		IDF:     idf,
		Popular: s.rankPopular(order, events),
		Order:   order,
		BuiltAt: s.now(),
	}

	s.mu.Lock()
	s.current = matrix
	s.mu.Unlock()

	if err := s.kv.Set(ctx, itemMatrixKey, matrix, s.config.MatrixTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache item matrix")
	}

	s.metrics.MatrixRebuilds.Inc()
	s.metrics.MatrixRebuildDuration.Observe(time.Since(start).Seconds())

	s.logger.WithFields(logrus.Fields{
		"items":    len(order),
		"events":   len(events),
		"duration": time.Since(start),
	}).Info("Item matrix rebuilt")

	return matrix, nil
}

// rankPopular scores catalog items from the whole event log and returns item
// IDs ordered by score, ties and the no-events case falling back to catalog
// order. Events referencing items gone from the catalog contribute nothing.
func (s *ItemMatrixService) rankPopular(order []string, events []models.Event) []string {
	inCatalog := make(map[string]struct{}, len(order))
	for _, id := range order {
		inCatalog[id] = struct{}{}
	}

	scores := make(map[string]int, len(order))
	add := func(id string, points int) {
		if _, ok := inCatalog[id]; !ok {
			return
		}
		scores[id] += points
	}

	for i := range events {
		payload, err := events[i].DecodePayload()
		if err != nil {
			s.logger.WithError(err).WithField("event_id", events[i].ID).
				Debug("Skipping undecodable event in popularity scan")
			continue
		}

		switch p := payload.(type) {
		case models.QuizCompletedPayload:
			for _, id := range p.Items {
				add(id, quizItemWeight)
			}
		case models.RecoClickedPayload:
			add(p.Item, clickWeight)
		case models.RecoShownPayload:
			for _, id := range p.Items {
				add(id, shownItemWeight)
			}
		case models.LeadCompletedPayload:
			for _, id := range p.Items {
				add(id, leadItemWeight)
			}
		}
	}

	popular := make([]string, len(order))
	copy(popular, order)
	sort.SliceStable(popular, func(i, j int) bool {
		return scores[popular[i]] > scores[popular[j]]
	})

	return popular
}
