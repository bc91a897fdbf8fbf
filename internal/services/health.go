package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/database"
	"github.com/lumeva/reckon/internal/store"
)

// HealthService checks the dependencies behind the recommendation path.
// PostgreSQL is critical; the cache is not, the service degrades without it.
type HealthService struct {
	db     *database.Database
	kv     store.KV
	logger *logrus.Logger
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    map[string]string `json:"services"`
	Critical    []string          `json:"critical_failures,omitempty"`
	NonCritical []string          `json:"non_critical_failures,omitempty"`
}

func NewHealthService(db *database.Database, kv store.KV, logger *logrus.Logger) *HealthService {
	return &HealthService{
		db:     db,
		kv:     kv,
		logger: logger,
	}
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	allCriticalHealthy := true
	if err := s.checkPostgreSQL(ctx); err != nil {
		status.Services["postgresql"] = "unhealthy"
		status.Critical = append(status.Critical, "postgresql")
		allCriticalHealthy = false
		s.logger.WithError(err).Error("Critical service postgresql is unhealthy")
	} else {
		status.Services["postgresql"] = "healthy"
	}

	if err := s.checkCache(ctx); err != nil {
		status.Services["cache"] = "unhealthy"
		status.NonCritical = append(status.NonCritical, "cache")
		s.logger.WithError(err).Warn("Non-critical service cache is unhealthy")
	} else {
		status.Services["cache"] = "healthy"
	}

	switch {
	case !allCriticalHealthy:
		status.Status = "unhealthy"
	case len(status.NonCritical) > 0:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}

	return status
}

func (s *HealthService) checkPostgreSQL(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.db.PG.Ping(ctx)
}

func (s *HealthService) checkCache(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.kv.Ping(ctx)
}
