package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/internal/ml"
	"github.com/lumeva/reckon/internal/store"
	"github.com/lumeva/reckon/pkg/models"
)

const textSignalWeight = 1.0

// RecommendationService ranks catalog items for a user: text signal plus
// engaged-item vectors against the item matrix, popularity fallback when the
// signal yields nothing, per-user result cache in front of it all.
type RecommendationService struct {
	matrix  *ItemMatrixService
	signals *UserSignalService
	catalog store.CatalogStore
	kv      store.KV
	config  *config.RecoConfig
	logger  *logrus.Logger
	metrics *Metrics
}

func NewRecommendationService(
	matrix *ItemMatrixService,
	signals *UserSignalService,
	catalog store.CatalogStore,
	kv store.KV,
	cfg *config.RecoConfig,
	logger *logrus.Logger,
	metrics *Metrics,
) *RecommendationService {
	return &RecommendationService{
		matrix:  matrix,
		signals: signals,
		catalog: catalog,
		kv:      kv,
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

func userCacheKey(userID string) string {
	return "reco:user:" + userID
}

// Recommend returns up to limit recommendations for the user, serving from
// the per-user cache when possible. A non-positive limit means the configured
// default.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, limit int) (*models.RecommendationResponse, error) {
	s.metrics.RecommendationRequests.Inc()

	if limit <= 0 {
		limit = s.config.DefaultLimit
	}

	// A read never blocks past the store timeout, whatever the backing
	// cache or catalog is doing.
	if timeout := s.config.StoreTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cacheKey := userCacheKey(userID)

	var cached []models.Recommendation
	if err := s.kv.Get(ctx, cacheKey, &cached); err == nil {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &models.RecommendationResponse{
			UserID:          userID,
			Recommendations: truncate(cached, limit),
			CacheHit:        true,
		}, nil
	} else if !errors.Is(err, store.ErrCacheMiss) {
		// a broken cache degrades to recomputation
		s.logger.WithError(err).Warn("Recommendation cache read failed")
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	recommendations, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.kv.Set(ctx, cacheKey, recommendations, s.config.UserCacheTTL); err != nil {
		s.logger.WithError(err).Warn("Recommendation cache write failed")
	}

	return &models.RecommendationResponse{
		UserID:          userID,
		Recommendations: truncate(recommendations, limit),
		CacheHit:        false,
	}, nil
}

func (s *RecommendationService) compute(ctx context.Context, userID string) ([]models.Recommendation, error) {
	start := time.Now()

	matrix, err := s.matrix.Load(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Item matrix unavailable")
		return nil, ErrRecommendationUnavailable
	}

	signal, err := s.signals.Collect(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("User signal unavailable")
		return nil, ErrRecommendationUnavailable
	}

	userVector := s.userVector(signal, matrix)
	ranked := ml.RankItems(userVector, matrix.Vectors, matrix.Order, signal.Engaged, s.config.TopK)
	if len(ranked) == 0 {
		ranked = s.fallback(matrix, signal.Engaged)
	}

	recommendations, err := s.enrich(ctx, ranked)
	if err != nil {
		return nil, err
	}

	s.metrics.RankDuration.Observe(time.Since(start).Seconds())

	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"text_signals":  len(signal.Texts),
		"engaged_items": len(signal.Engaged),
		"results":       len(recommendations),
	}).Debug("Computed recommendations")

	return recommendations, nil
}

// userVector folds the user's text fragments (weight 1.0) and engaged item
// vectors (configured weight) into one unit vector. Engaged items are walked
// in catalog order so the accumulated sum is reproducible.
func (s *RecommendationService) userVector(signal *UserSignal, matrix *ItemMatrix) ml.Vector {
	parts := make([]ml.WeightedVector, 0, 1+len(signal.Engaged))

	if len(signal.Texts) > 0 {
		text := strings.Join(signal.Texts, " ")
		parts = append(parts, ml.WeightedVector{
			Vector: ml.VectorizeText(text, matrix.IDF),
			Weight: textSignalWeight,
		})
	}

	for _, id := range matrix.Order {
		if _, ok := signal.Engaged[id]; !ok {
			continue
		}
		if vector, ok := matrix.Vectors[id]; ok {
			parts = append(parts, ml.WeightedVector{Vector: vector, Weight: s.config.EngagedWeight})
		}
	}

	return ml.Normalize(ml.MergeVectors(parts))
}

// fallback returns the most popular items the user has not engaged with, all
// at score zero.
func (s *RecommendationService) fallback(matrix *ItemMatrix, engaged map[string]struct{}) []ml.ScoredItem {
	limit := s.config.FallbackLimit
	items := make([]ml.ScoredItem, 0, limit)

	for _, id := range matrix.Popular {
		if _, ok := engaged[id]; ok {
			continue
		}
		items = append(items, ml.ScoredItem{ID: id})
		if len(items) == limit {
			break
		}
	}

	return items
}

// enrich resolves ranked IDs against the catalog. Items that vanished since
// the matrix was built are dropped; a failing catalog is a hard outage.
func (s *RecommendationService) enrich(ctx context.Context, ranked []ml.ScoredItem) ([]models.Recommendation, error) {
	recommendations := make([]models.Recommendation, 0, len(ranked))

	for _, scored := range ranked {
		item, err := s.catalog.Item(ctx, scored.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			s.logger.WithError(err).WithField("item_id", scored.ID).Error("Catalog lookup failed")
			return nil, ErrRecommendationUnavailable
		}

		recommendations = append(recommendations, models.Recommendation{
			ItemID:      item.ID,
			Title:       item.Title,
			Description: firstBullet(item),
			ImageURL:    item.ImageURL,
			PurchaseURL: item.PurchaseURL,
			Score:       math.Round(scored.Score*10000) / 10000,
		})
	}

	return recommendations, nil
}

func firstBullet(item *models.Item) string {
	for _, bullet := range item.Bullets {
		if bullet != "" {
			return bullet
		}
	}
	return ""
}

func truncate(recommendations []models.Recommendation, limit int) []models.Recommendation {
	if limit > 0 && len(recommendations) > limit {
		return recommendations[:limit]
	}
	return recommendations
}
