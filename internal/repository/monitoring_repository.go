package repository

import (
	"context"
	"fmt"

	"tree-service/internal/models"

	"github.com/jmoiron/sqlx"
)

type MonitoringRepository struct {
	db *sqlx.DB
}

func NewMonitoringRepository(db *sqlx.DB) *MonitoringRepository {
	return &MonitoringRepository{db: db}
}

// GetHistoryByTreeID returns a tree's monitoring events, most recent first.
func (r *MonitoringRepository) GetHistoryByTreeID(ctx context.Context, treeID string) ([]models.MonitoringEvent, error) {
	query := `
		SELECT id, tree_id, monitor_date, monitor_status, monitor_stage,
		       rcd_cm, dbh_cm, height_m, co2_kg, notes, monitor_by,
		       kobo_submission_id, created_at
		FROM monitoring_history
		WHERE tree_id = $1
		ORDER BY monitor_date DESC, id DESC`

	var events []models.MonitoringEvent
	err := r.db.SelectContext(ctx, &events, query, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monitoring history for %s: %w", treeID, err)
	}

	return events, nil
}

func (r *MonitoringRepository) GetStats(ctx context.Context) (*models.MonitoringStats, error) {
	query := `
		SELECT
			COUNT(DISTINCT tree_id)             AS monitored_trees,
			COUNT(*)                            AS monitoring_events,
			COALESCE(AVG(co2_kg), 0)            AS avg_co2_kg,
			COUNT(*) FILTER (WHERE monitor_status = 'Alive') AS alive_count,
			COUNT(DISTINCT monitor_by)          AS monitor_count
		FROM monitoring_history`

	var stats models.MonitoringStats
	err := r.db.GetContext(ctx, &stats, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get monitoring stats: %w", err)
	}

	return &stats, nil
}
