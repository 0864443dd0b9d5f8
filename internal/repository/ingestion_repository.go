package repository

import (
	"context"
	"fmt"
	"log/slog"

	"tree-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// IngestionRepository owns the transactional persistence step of the
// ingestion pipeline. Identifier generation and the dedup ledger live in the
// same transaction as the row inserts so a submission is applied at most
// once and two racing requests for one institution cannot mint the same
// tree id.
type IngestionRepository struct {
	db *sqlx.DB
}

func NewIngestionRepository(db *sqlx.DB) *IngestionRepository {
	return &IngestionRepository{db: db}
}

// IsProcessed reports whether a submission id is already in the ledger.
func (r *IngestionRepository) IsProcessed(ctx context.Context, submissionID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM processed_submissions WHERE submission_id = $1)`, submissionID)
	if err != nil {
		return false, fmt.Errorf("failed to check processed submission %s: %w", submissionID, err)
	}
	return exists, nil
}

// nextTreeIDTx mints the next identifier for an institution. The advisory
// lock serializes id generation per institution for the remainder of the
// transaction; the scan-then-increment is safe under it.
func (r *IngestionRepository) nextTreeIDTx(tx *sqlx.Tx, institution string) (string, error) {
	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, institution); err != nil {
		return "", fmt.Errorf("failed to lock id sequence for %s: %w", institution, err)
	}

	prefix := models.TreePrefix(institution)

	var existing []string
	err := tx.Select(&existing,
		`SELECT tree_id FROM trees WHERE institution = $1 AND tree_id LIKE $2`,
		institution, prefix+"%")
	if err != nil {
		return "", fmt.Errorf("failed to scan tree ids for %s: %w", institution, err)
	}

	return models.NextTreeID(prefix, existing), nil
}

// CreateTree persists a new tree, its initial monitoring event, and (when
// the tree came from an external submission) the ledger entry, all in one
// transaction. The tree's TreeID field is assigned here and must be empty on
// entry. On any failure the whole ingestion fails; no fallback identifier is
// ever constructed.
func (r *IngestionRepository) CreateTree(ctx context.Context, tree *models.Tree, initial *models.MonitoringEvent) error {
	if tree.TreeID != "" {
		return fmt.Errorf("badrequest: tree id must not be preset")
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin ingestion transaction: %w", err)
	}
	defer tx.Rollback()

	if tree.KoboSubmissionID != nil {
		var exists bool
		err := tx.Get(&exists,
			`SELECT EXISTS (SELECT 1 FROM processed_submissions WHERE submission_id = $1)`, *tree.KoboSubmissionID)
		if err != nil {
			return fmt.Errorf("failed to check processed submission: %w", err)
		}
		if exists {
			return fmt.Errorf("duplicate: submission already processed: %s", *tree.KoboSubmissionID)
		}
	}

	treeID, err := r.nextTreeIDTx(tx, tree.Institution)
	if err != nil {
		return err
	}
	tree.TreeID = treeID

	insertTree := `
		INSERT INTO trees (
			tree_id, institution, local_name, scientific_name, planter_id,
			date_planted, tree_stage, rcd_cm, dbh_cm, height_m,
			latitude, longitude, co2_kg, status,
			country, county, sub_county, ward,
			monitor_notes, kobo_submission_id
		) VALUES (
			:tree_id, :institution, :local_name, :scientific_name, :planter_id,
			:date_planted, :tree_stage, :rcd_cm, :dbh_cm, :height_m,
			:latitude, :longitude, :co2_kg, :status,
			:country, :county, :sub_county, :ward,
			:monitor_notes, :kobo_submission_id
		)`

	if _, err := tx.NamedExec(insertTree, tree); err != nil {
		return fmt.Errorf("failed to insert tree %s: %w", treeID, err)
	}

	if initial != nil {
		initial.TreeID = treeID
		if err := insertMonitoringEventTx(tx, initial); err != nil {
			return err
		}
	}

	if tree.KoboSubmissionID != nil {
		if err := recordProcessedTx(tx, *tree.KoboSubmissionID, treeID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tree ingestion: %w", err)
	}

	slog.Info("tree persisted", "tree_id", treeID, "institution", tree.Institution, "co2_kg", tree.CO2Kg)
	return nil
}

// RecordMonitoring appends a monitoring event, mirrors it onto the tree row,
// and writes the ledger entry, in one transaction.
func (r *IngestionRepository) RecordMonitoring(ctx context.Context, event *models.MonitoringEvent, applyTx func(*sqlx.Tx, *models.MonitoringEvent) error) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin monitoring transaction: %w", err)
	}
	defer tx.Rollback()

	if event.KoboSubmissionID != nil {
		var exists bool
		err := tx.Get(&exists,
			`SELECT EXISTS (SELECT 1 FROM processed_submissions WHERE submission_id = $1)`, *event.KoboSubmissionID)
		if err != nil {
			return fmt.Errorf("failed to check processed submission: %w", err)
		}
		if exists {
			return fmt.Errorf("duplicate: submission already processed: %s", *event.KoboSubmissionID)
		}
	}

	if err := insertMonitoringEventTx(tx, event); err != nil {
		return err
	}

	if err := applyTx(tx, event); err != nil {
		return err
	}

	if event.KoboSubmissionID != nil {
		if err := recordProcessedTx(tx, *event.KoboSubmissionID, event.TreeID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit monitoring ingestion: %w", err)
	}

	slog.Info("monitoring event persisted", "tree_id", event.TreeID, "status", event.MonitorStatus, "co2_kg", event.CO2Kg)
	return nil
}

func insertMonitoringEventTx(tx *sqlx.Tx, event *models.MonitoringEvent) error {
	query := `
		INSERT INTO monitoring_history (
			tree_id, monitor_date, monitor_status, monitor_stage,
			rcd_cm, dbh_cm, height_m, co2_kg, notes, monitor_by, kobo_submission_id
		) VALUES (
			:tree_id, :monitor_date, :monitor_status, :monitor_stage,
			:rcd_cm, :dbh_cm, :height_m, :co2_kg, :notes, :monitor_by, :kobo_submission_id
		)`

	if _, err := tx.NamedExec(query, event); err != nil {
		return fmt.Errorf("failed to insert monitoring event for %s: %w", event.TreeID, err)
	}
	return nil
}

func recordProcessedTx(tx *sqlx.Tx, submissionID, treeID string) error {
	_, err := tx.Exec(
		`INSERT INTO processed_submissions (submission_id, tree_id) VALUES ($1, $2)`,
		submissionID, treeID)
	if err != nil {
		return fmt.Errorf("failed to record processed submission %s: %w", submissionID, err)
	}
	return nil
}
