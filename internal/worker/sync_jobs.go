package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tree-service/internal/config"
	"tree-service/internal/kobo"
	"tree-service/internal/services"
)

// SubmissionLister is the slice of the form-collection client the sync jobs
// need.
type SubmissionLister interface {
	ListSubmissions(ctx context.Context, assetID string, since time.Time) ([]kobo.Submission, error)
}

// TreeEventPublisher announces newly ingested trees downstream. May be nil
// when messaging is unavailable.
type TreeEventPublisher interface {
	PublishTreeProcessed(ctx context.Context, treeID, institution string) error
}

// SyncJobs builds the periodic jobs that pull new submissions from the
// form-collection service and run them through the ingestion pipeline.
// Dedup in the pipeline makes the overlapping lookback window safe.
type SyncJobs struct {
	koboClient       SubmissionLister
	ingestionService *services.IngestionService
	treeService      *services.TreeService
	publisher        TreeEventPublisher
	koboCfg          config.KoboConfig
	lookback         time.Duration
}

func NewSyncJobs(koboClient SubmissionLister, ingestionService *services.IngestionService, treeService *services.TreeService, publisher TreeEventPublisher, koboCfg config.KoboConfig, lookback time.Duration) *SyncJobs {
	return &SyncJobs{
		koboClient:       koboClient,
		ingestionService: ingestionService,
		treeService:      treeService,
		publisher:        publisher,
		koboCfg:          koboCfg,
		lookback:         lookback,
	}
}

// SyncPlantings ingests new planting submissions. Newly persisted trees get
// their QR artifact attached after commit.
func (j *SyncJobs) SyncPlantings(ctx context.Context) error {
	if j.koboCfg.PlantingAssetID == "" {
		return nil
	}

	since := time.Now().Add(-j.lookback)
	submissions, err := j.koboClient.ListSubmissions(ctx, j.koboCfg.PlantingAssetID, since)
	if err != nil {
		return fmt.Errorf("failed to list planting submissions: %w", err)
	}

	persisted, skipped := 0, 0
	for i := range submissions {
		result, err := j.ingestionService.IngestPlantingSubmission(ctx, &submissions[i])
		if err != nil {
			slog.Error("planting ingestion failed", "submission_id", string(submissions[i].ID), "error", err)
			continue
		}
		if result.Skipped {
			skipped++
			continue
		}
		persisted++
		j.treeService.AttachQRCode(ctx, result.TreeID)

		if j.publisher != nil {
			if err := j.publisher.PublishTreeProcessed(ctx, result.TreeID, submissions[i].Institution); err != nil {
				slog.Error("failed to publish tree processed event", "tree_id", result.TreeID, "error", err)
			}
		}
	}

	slog.Info("planting sync finished", "fetched", len(submissions), "persisted", persisted, "skipped", skipped)
	return nil
}

// SyncMonitoring ingests new monitoring submissions.
func (j *SyncJobs) SyncMonitoring(ctx context.Context) error {
	if j.koboCfg.MonitoringAssetID == "" {
		return nil
	}

	since := time.Now().Add(-j.lookback)
	submissions, err := j.koboClient.ListSubmissions(ctx, j.koboCfg.MonitoringAssetID, since)
	if err != nil {
		return fmt.Errorf("failed to list monitoring submissions: %w", err)
	}

	persisted, skipped := 0, 0
	for i := range submissions {
		result, err := j.ingestionService.IngestMonitoringSubmission(ctx, &submissions[i])
		if err != nil {
			slog.Error("monitoring ingestion failed", "submission_id", string(submissions[i].ID), "error", err)
			continue
		}
		if result.Skipped {
			skipped++
			continue
		}
		persisted++
	}

	slog.Info("monitoring sync finished", "fetched", len(submissions), "persisted", persisted, "skipped", skipped)
	return nil
}
