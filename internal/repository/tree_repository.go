package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tree-service/internal/models"
	"tree-service/internal/utils"

	"github.com/jmoiron/sqlx"
)

const treeColumns = `
	tree_id, institution, local_name, scientific_name, planter_id,
	date_planted, tree_stage, rcd_cm, dbh_cm, height_m,
	latitude, longitude, co2_kg, status,
	country, county, sub_county, ward,
	adopter_name, last_monitored, monitor_notes, qr_code,
	kobo_submission_id, created_at, updated_at`

type TreeRepository struct {
	db *sqlx.DB
}

func NewTreeRepository(db *sqlx.DB) *TreeRepository {
	return &TreeRepository{db: db}
}

func (r *TreeRepository) BeginTransaction() (*sqlx.Tx, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *TreeRepository) GetByID(ctx context.Context, treeID string) (*models.Tree, error) {
	query := `SELECT ` + treeColumns + ` FROM trees WHERE tree_id = $1`

	var tree models.Tree
	err := r.db.GetContext(ctx, &tree, query, treeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("not_found: tree not found: %s", treeID)
		}
		return nil, fmt.Errorf("failed to get tree %s: %w", treeID, err)
	}

	return &tree, nil
}

// GetAll lists trees, optionally filtered by institution and/or status.
func (r *TreeRepository) GetAll(ctx context.Context, institution, status string) ([]models.Tree, error) {
	query := `SELECT ` + treeColumns + ` FROM trees`

	var conds []string
	var args []any
	if institution != "" {
		args = append(args, institution)
		conds = append(conds, fmt.Sprintf("institution = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY tree_id"

	var trees []models.Tree
	err := r.db.SelectContext(ctx, &trees, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}

	return trees, nil
}

func (r *TreeRepository) GetInstitutions(ctx context.Context) ([]string, error) {
	var institutions []string
	err := r.db.SelectContext(ctx, &institutions, `SELECT DISTINCT institution FROM trees ORDER BY institution`)
	if err != nil {
		return nil, fmt.Errorf("failed to list institutions: %w", err)
	}
	return institutions, nil
}

// GetUnadoptedAlive returns alive, not-yet-donated trees of an institution,
// oldest first, capped at limit. Used when assigning trees to a completed
// donation.
func (r *TreeRepository) GetUnadoptedAlive(ctx context.Context, institution string, limit int) ([]models.Tree, error) {
	query := `
		SELECT ` + treeColumns + `
		FROM trees t
		WHERE t.institution = $1
		  AND t.status = 'Alive'
		  AND NOT EXISTS (SELECT 1 FROM donated_trees dt WHERE dt.tree_id = t.tree_id)
		ORDER BY t.created_at
		LIMIT $2`

	var trees []models.Tree
	err := r.db.SelectContext(ctx, &trees, query, institution, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unadopted trees for %s: %w", institution, err)
	}

	return trees, nil
}

func (r *TreeRepository) UpdateQRCode(treeID, qrCodeURL string) error {
	query := `UPDATE trees SET qr_code = $2, updated_at = now() WHERE tree_id = $1`

	err := utils.ExecWithCheck(r.db, query, utils.ExecUpdate, treeID, qrCodeURL)
	if err != nil {
		return fmt.Errorf("failed to update qr code for %s: %w", treeID, err)
	}

	return nil
}

// UpdateAdopterTx marks a tree adopted inside a donation-assignment
// transaction.
func (r *TreeRepository) UpdateAdopterTx(tx *sqlx.Tx, treeID, adopterName string) error {
	query := `
		UPDATE trees SET
			adopter_name = $2,
			status = $3,
			updated_at = now()
		WHERE tree_id = $1`

	result, err := tx.Exec(query, treeID, adopterName, models.TreeAdopted)
	if err != nil {
		return fmt.Errorf("failed to mark tree %s adopted: %w", treeID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("not_found: tree not found: %s", treeID)
	}

	return nil
}

// ApplyMonitoringTx overwrites the tree's current fields from a monitoring
// event inside the ingestion transaction. Measurements only move forward:
// a null measurement in the event keeps the stored value.
func (r *TreeRepository) ApplyMonitoringTx(tx *sqlx.Tx, event *models.MonitoringEvent) error {
	query := `
		UPDATE trees SET
			status         = $2,
			tree_stage     = COALESCE($3, tree_stage),
			rcd_cm         = COALESCE($4, rcd_cm),
			dbh_cm         = COALESCE($5, dbh_cm),
			height_m       = COALESCE($6, height_m),
			co2_kg         = $7,
			last_monitored = $8,
			monitor_notes  = COALESCE($9, monitor_notes),
			updated_at     = now()
		WHERE tree_id = $1`

	var stage *models.TreeStage
	if event.MonitorStage != "" {
		stage = &event.MonitorStage
	}

	result, err := tx.Exec(query, event.TreeID, event.MonitorStatus, stage,
		event.RCDCm, event.DBHCm, event.HeightM, event.CO2Kg, event.MonitorDate, event.Notes)
	if err != nil {
		return fmt.Errorf("failed to apply monitoring to tree %s: %w", event.TreeID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("not_found: tree not found: %s", event.TreeID)
	}

	return nil
}

// Delete removes a tree and its monitoring history. Administrative override
// only; normal lifecycle never deletes trees.
func (r *TreeRepository) Delete(treeID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM donated_trees WHERE tree_id = $1`, treeID); err != nil {
		return fmt.Errorf("failed to delete donation links for %s: %w", treeID, err)
	}
	if _, err := tx.Exec(`DELETE FROM monitoring_history WHERE tree_id = $1`, treeID); err != nil {
		return fmt.Errorf("failed to delete monitoring history for %s: %w", treeID, err)
	}

	result, err := tx.Exec(`DELETE FROM trees WHERE tree_id = $1`, treeID)
	if err != nil {
		return fmt.Errorf("failed to delete tree %s: %w", treeID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("not_found: tree not found: %s", treeID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tree deletion: %w", err)
	}

	return nil
}

func (r *TreeRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM trees WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent trees: %w", err)
	}
	return count, nil
}
