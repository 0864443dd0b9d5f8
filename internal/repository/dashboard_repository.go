package repository

import (
	"context"
	"fmt"

	"tree-service/internal/models"

	"github.com/jmoiron/sqlx"
)

type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) GetImpactStats(ctx context.Context) (*models.ImpactStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM trees)                          AS total_trees,
			(SELECT COUNT(*) FROM trees WHERE status = 'Alive')   AS alive_trees,
			(SELECT COALESCE(SUM(co2_kg), 0) FROM trees)          AS total_co2_kg,
			(SELECT COUNT(DISTINCT institution) FROM trees)       AS institutions,
			(SELECT COUNT(*) FROM monitoring_history)             AS monitoring_events`

	var stats models.ImpactStats
	err := r.db.GetContext(ctx, &stats, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get impact stats: %w", err)
	}

	if stats.TotalTrees > 0 {
		stats.SurvivalRate = float64(stats.AliveTrees) / float64(stats.TotalTrees) * 100
	}

	return &stats, nil
}

func (r *DashboardRepository) GetInstitutionStats(ctx context.Context) ([]models.InstitutionStats, error) {
	query := `
		SELECT institution,
		       COUNT(*)                                   AS total_trees,
		       COUNT(*) FILTER (WHERE status = 'Alive')   AS alive_trees,
		       COALESCE(SUM(co2_kg), 0)                   AS co2_kg
		FROM trees
		GROUP BY institution
		ORDER BY co2_kg DESC`

	var stats []models.InstitutionStats
	err := r.db.SelectContext(ctx, &stats, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get institution stats: %w", err)
	}

	return stats, nil
}

// GetRecentTrees returns the latest planted trees for the dashboard feed.
func (r *DashboardRepository) GetRecentTrees(ctx context.Context, limit int) ([]models.Tree, error) {
	query := `SELECT ` + treeColumns + ` FROM trees ORDER BY created_at DESC LIMIT $1`

	var trees []models.Tree
	err := r.db.SelectContext(ctx, &trees, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent trees: %w", err)
	}

	return trees, nil
}
