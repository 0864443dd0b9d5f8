package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"tree-service/internal/models"
	"tree-service/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardCacheTTL    = 5 * time.Minute
	impactStatsKey       = "dashboard:impact"
	institutionStatsKey  = "dashboard:institutions"
	monitoringStatsKey   = "dashboard:monitoring"
	recentTreesCacheSize = 10
)

// DashboardService aggregates planting impact for the public dashboard.
// Aggregates are cached briefly; staleness of a few minutes is acceptable
// for headline numbers.
type DashboardService struct {
	dashboardRepo  *repository.DashboardRepository
	monitoringRepo *repository.MonitoringRepository
	redisClient    *redis.Client
}

func NewDashboardService(dashboardRepo *repository.DashboardRepository, monitoringRepo *repository.MonitoringRepository, redisClient *redis.Client) *DashboardService {
	return &DashboardService{
		dashboardRepo:  dashboardRepo,
		monitoringRepo: monitoringRepo,
		redisClient:    redisClient,
	}
}

func (s *DashboardService) GetImpactStats(ctx context.Context) (*models.ImpactStats, error) {
	var cached models.ImpactStats
	if s.readCache(ctx, impactStatsKey, &cached) {
		return &cached, nil
	}

	stats, err := s.dashboardRepo.GetImpactStats(ctx)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, impactStatsKey, stats)
	return stats, nil
}

func (s *DashboardService) GetInstitutionStats(ctx context.Context) ([]models.InstitutionStats, error) {
	var cached []models.InstitutionStats
	if s.readCache(ctx, institutionStatsKey, &cached) {
		return cached, nil
	}

	stats, err := s.dashboardRepo.GetInstitutionStats(ctx)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, institutionStatsKey, stats)
	return stats, nil
}

func (s *DashboardService) GetMonitoringStats(ctx context.Context) (*models.MonitoringStats, error) {
	var cached models.MonitoringStats
	if s.readCache(ctx, monitoringStatsKey, &cached) {
		return &cached, nil
	}

	stats, err := s.monitoringRepo.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, monitoringStatsKey, stats)
	return stats, nil
}

// GetRecentTrees is not cached: the feed should reflect new plantings
// immediately.
func (s *DashboardService) GetRecentTrees(ctx context.Context) ([]models.Tree, error) {
	return s.dashboardRepo.GetRecentTrees(ctx, recentTreesCacheSize)
}

func (s *DashboardService) readCache(ctx context.Context, key string, out any) bool {
	if s.redisClient == nil {
		return false
	}
	data, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("dashboard cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("dashboard cache decode failed", "key", key, "error", err)
		return false
	}
	return true
}

func (s *DashboardService) writeCache(ctx context.Context, key string, value any) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("dashboard cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.redisClient.Set(ctx, key, data, dashboardCacheTTL).Err(); err != nil {
		slog.Warn("dashboard cache write failed", "key", key, "error", err)
	}
}
