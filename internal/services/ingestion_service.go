package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tree-service/internal/kobo"
	"tree-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// IngestionStore is the transactional persistence boundary of the pipeline.
type IngestionStore interface {
	IsProcessed(ctx context.Context, submissionID string) (bool, error)
	CreateTree(ctx context.Context, tree *models.Tree, initial *models.MonitoringEvent) error
	RecordMonitoring(ctx context.Context, event *models.MonitoringEvent, applyTx func(*sqlx.Tx, *models.MonitoringEvent) error) error
}

// TreeReader resolves existing trees for monitoring ingestion.
type TreeReader interface {
	GetByID(ctx context.Context, treeID string) (*models.Tree, error)
	ApplyMonitoringTx(tx *sqlx.Tx, event *models.MonitoringEvent) error
}

// IngestionResult tracks one submission through the pipeline. State moves
// strictly forward: AwaitingSubmission -> Validated -> Deduplicated ->
// Persisted. A skipped submission stops at the state it failed to leave.
type IngestionResult struct {
	SubmissionID string                `json:"submission_id"`
	State        models.IngestionState `json:"state"`
	TreeID       string                `json:"tree_id,omitempty"`
	Skipped      bool                  `json:"skipped"`
	SkipReason   string                `json:"skip_reason,omitempty"`
}

// IngestionService runs planting and monitoring submissions through the
// validate -> deduplicate -> persist pipeline. Manual entries share the same
// persistence path, minus the dedup ledger.
type IngestionService struct {
	store     IngestionStore
	trees     TreeReader
	estimator *CarbonEstimator
}

func NewIngestionService(store IngestionStore, trees TreeReader, estimator *CarbonEstimator) *IngestionService {
	return &IngestionService{
		store:     store,
		trees:     trees,
		estimator: estimator,
	}
}

// IngestPlantingSubmission processes one raw planting submission. Invalid
// submissions and duplicates are skipped, not failed: the poller moves on.
// Storage errors fail the ingestion; no fallback identifier is constructed.
func (s *IngestionService) IngestPlantingSubmission(ctx context.Context, sub *kobo.Submission) (*IngestionResult, error) {
	result := &IngestionResult{
		SubmissionID: string(sub.ID),
		State:        models.StateAwaitingSubmission,
	}

	tree, reason := mapPlantingSubmission(sub)
	if reason != "" {
		result.Skipped = true
		result.SkipReason = reason
		slog.Warn("planting submission skipped", "submission_id", result.SubmissionID, "reason", reason)
		return result, nil
	}
	result.State = models.StateValidated

	processed, err := s.store.IsProcessed(ctx, result.SubmissionID)
	if err != nil {
		return result, err
	}
	if processed {
		result.Skipped = true
		result.SkipReason = "submission already processed"
		return result, nil
	}
	result.State = models.StateDeduplicated

	scientificName := ""
	if tree.ScientificName != nil {
		scientificName = *tree.ScientificName
	}
	tree.CO2Kg = s.estimator.EstimateCO2(ctx, scientificName, tree.RCDCm, tree.DBHCm)

	initial := initialMonitoringEvent(tree)
	if err := s.store.CreateTree(ctx, tree, initial); err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			result.Skipped = true
			result.SkipReason = "submission already processed"
			return result, nil
		}
		return result, fmt.Errorf("failed to persist planting submission %s: %w", result.SubmissionID, err)
	}

	result.State = models.StatePersisted
	result.TreeID = tree.TreeID
	return result, nil
}

// IngestMonitoringSubmission processes one raw monitoring submission against
// an existing tree.
func (s *IngestionService) IngestMonitoringSubmission(ctx context.Context, sub *kobo.Submission) (*IngestionResult, error) {
	result := &IngestionResult{
		SubmissionID: string(sub.ID),
		State:        models.StateAwaitingSubmission,
	}

	treeID := strings.TrimSpace(sub.TreeID)
	if treeID == "" {
		result.Skipped = true
		result.SkipReason = "missing tree_id"
		slog.Warn("monitoring submission skipped", "submission_id", result.SubmissionID, "reason", result.SkipReason)
		return result, nil
	}

	tree, err := s.trees.GetByID(ctx, treeID)
	if err != nil {
		if strings.Contains(err.Error(), "not_found") {
			result.Skipped = true
			result.SkipReason = fmt.Sprintf("tree not found: %s", treeID)
			slog.Warn("monitoring submission skipped", "submission_id", result.SubmissionID, "reason", result.SkipReason)
			return result, nil
		}
		return result, err
	}
	result.State = models.StateValidated

	processed, err := s.store.IsProcessed(ctx, result.SubmissionID)
	if err != nil {
		return result, err
	}
	if processed {
		result.Skipped = true
		result.SkipReason = "submission already processed"
		return result, nil
	}
	result.State = models.StateDeduplicated

	event := mapMonitoringSubmission(sub, tree)
	event.CO2Kg = s.estimateForTree(ctx, tree, event)

	if err := s.store.RecordMonitoring(ctx, event, s.trees.ApplyMonitoringTx); err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			result.Skipped = true
			result.SkipReason = "submission already processed"
			return result, nil
		}
		return result, fmt.Errorf("failed to persist monitoring submission %s: %w", result.SubmissionID, err)
	}

	result.State = models.StatePersisted
	result.TreeID = treeID
	return result, nil
}

// CreateTree is the manual planting entry path. It shares the identifier
// generation and persistence transaction with the submission pipeline but
// carries no external submission id.
func (s *IngestionService) CreateTree(ctx context.Context, req *models.CreateTreeRequest) (*models.Tree, error) {
	if strings.TrimSpace(req.Institution) == "" {
		return nil, fmt.Errorf("badrequest: institution is required")
	}
	if strings.TrimSpace(req.LocalName) == "" {
		return nil, fmt.Errorf("badrequest: local_name is required")
	}

	tree := &models.Tree{
		Institution:    strings.TrimSpace(req.Institution),
		LocalName:      strings.TrimSpace(req.LocalName),
		ScientificName: req.ScientificName,
		PlanterID:      req.PlanterID,
		DatePlanted:    req.DatePlanted,
		TreeStage:      stageOrDefault(req.TreeStage),
		RCDCm:          positiveOrNil(req.RCDCm),
		DBHCm:          positiveOrNil(req.DBHCm),
		HeightM:        positiveOrNil(req.HeightM),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Status:         models.TreeAlive,
		Country:        req.Country,
		County:         req.County,
		SubCounty:      req.SubCounty,
		Ward:           req.Ward,
		MonitorNotes:   req.Notes,
	}
	if tree.DatePlanted == nil {
		today := time.Now().Format("2006-01-02")
		tree.DatePlanted = &today
	}

	scientificName := ""
	if tree.ScientificName != nil {
		scientificName = *tree.ScientificName
	}
	tree.CO2Kg = s.estimator.EstimateCO2(ctx, scientificName, tree.RCDCm, tree.DBHCm)

	if err := s.store.CreateTree(ctx, tree, initialMonitoringEvent(tree)); err != nil {
		return nil, err
	}

	return tree, nil
}

// RecordMonitoring is the manual monitoring entry path.
func (s *IngestionService) RecordMonitoring(ctx context.Context, req *models.CreateMonitoringRequest) (*models.MonitoringEvent, error) {
	tree, err := s.trees.GetByID(ctx, req.TreeID)
	if err != nil {
		return nil, err
	}

	event := &models.MonitoringEvent{
		TreeID:        tree.TreeID,
		MonitorDate:   time.Now().Format("2006-01-02"),
		MonitorStatus: models.TreeAlive,
		MonitorStage:  tree.TreeStage,
		RCDCm:         positiveOrNil(req.RCDCm),
		DBHCm:         positiveOrNil(req.DBHCm),
		HeightM:       positiveOrNil(req.HeightM),
		Notes:         req.Notes,
		MonitorBy:     req.MonitorBy,
	}
	if req.MonitorDate != nil && *req.MonitorDate != "" {
		event.MonitorDate = *req.MonitorDate
	}
	if req.Status != nil && *req.Status != "" {
		event.MonitorStatus = models.TreeStatus(*req.Status)
	}
	if req.Stage != nil && *req.Stage != "" {
		event.MonitorStage = models.TreeStage(*req.Stage)
	}

	event.CO2Kg = s.estimateForTree(ctx, tree, event)

	if err := s.store.RecordMonitoring(ctx, event, s.trees.ApplyMonitoringTx); err != nil {
		return nil, err
	}

	return event, nil
}

// estimateForTree recomputes CO2 from the event's measurements merged with
// the tree's stored ones: a field absent from the event falls back to the
// last known value, matching the COALESCE the tree update applies.
func (s *IngestionService) estimateForTree(ctx context.Context, tree *models.Tree, event *models.MonitoringEvent) float64 {
	rcd := event.RCDCm
	if rcd == nil {
		rcd = tree.RCDCm
	}
	dbh := event.DBHCm
	if dbh == nil {
		dbh = tree.DBHCm
	}

	scientificName := ""
	if tree.ScientificName != nil {
		scientificName = *tree.ScientificName
	}
	return s.estimator.EstimateCO2(ctx, scientificName, rcd, dbh)
}

// mapPlantingSubmission converts a raw planting submission into a tree
// record. A non-empty reason means the submission is unusable and should be
// skipped.
func mapPlantingSubmission(sub *kobo.Submission) (*models.Tree, string) {
	if string(sub.ID) == "" {
		return nil, "missing submission id"
	}
	institution := strings.TrimSpace(sub.Institution)
	if institution == "" {
		return nil, "missing institution"
	}
	localName := strings.TrimSpace(sub.LocalName)
	if localName == "" {
		return nil, "missing local_name"
	}

	submissionID := string(sub.ID)
	lat, lon := sub.Coordinates()

	tree := &models.Tree{
		Institution:      institution,
		LocalName:        localName,
		TreeStage:        stageOrDefaultStr(sub.TreeStage),
		Latitude:         lat,
		Longitude:        lon,
		Status:           models.TreeAlive,
		KoboSubmissionID: &submissionID,
	}

	if v := strings.TrimSpace(sub.ScientificName); v != "" {
		tree.ScientificName = &v
	}
	if v := strings.TrimSpace(sub.StudentName); v != "" {
		tree.PlanterID = &v
	}
	if v := strings.TrimSpace(sub.Notes); v != "" {
		tree.MonitorNotes = &v
	}
	if v := strings.TrimSpace(sub.Country); v != "" {
		tree.Country = &v
	}
	if v := strings.TrimSpace(sub.County); v != "" {
		tree.County = &v
	}
	if v := strings.TrimSpace(sub.SubCounty); v != "" {
		tree.SubCounty = &v
	}
	if v := strings.TrimSpace(sub.Ward); v != "" {
		tree.Ward = &v
	}

	datePlanted := strings.TrimSpace(sub.DatePlanted)
	if datePlanted == "" {
		datePlanted = submissionDate(sub.SubmissionTime)
	}
	tree.DatePlanted = &datePlanted

	if sub.RCDCm.Valid && sub.RCDCm.Value > 0 {
		v := sub.RCDCm.Value
		tree.RCDCm = &v
	}
	if sub.DBHCm.Valid && sub.DBHCm.Value > 0 {
		v := sub.DBHCm.Value
		tree.DBHCm = &v
	}
	if sub.HeightM.Valid && sub.HeightM.Value > 0 {
		v := sub.HeightM.Value
		tree.HeightM = &v
	}

	return tree, ""
}

// mapMonitoringSubmission converts a raw monitoring submission into an
// event. Measurements missing from the submission are left nil; the tree
// update keeps the stored values.
func mapMonitoringSubmission(sub *kobo.Submission, tree *models.Tree) *models.MonitoringEvent {
	submissionID := string(sub.ID)

	event := &models.MonitoringEvent{
		TreeID:           tree.TreeID,
		MonitorDate:      submissionDate(sub.MonitorDate),
		MonitorStatus:    models.TreeAlive,
		MonitorStage:     tree.TreeStage,
		KoboSubmissionID: &submissionID,
	}

	if v := strings.TrimSpace(sub.TreeStatus); v != "" {
		event.MonitorStatus = models.TreeStatus(v)
	}
	if v := strings.TrimSpace(sub.GrowthStage); v != "" {
		event.MonitorStage = models.TreeStage(v)
	}
	if v := strings.TrimSpace(sub.MonitorNotes); v != "" {
		event.Notes = &v
	}
	if v := strings.TrimSpace(sub.MonitorName); v != "" {
		event.MonitorBy = &v
	}

	if sub.RCDCm.Valid && sub.RCDCm.Value > 0 {
		v := sub.RCDCm.Value
		event.RCDCm = &v
	}
	if sub.DBHCm.Valid && sub.DBHCm.Value > 0 {
		v := sub.DBHCm.Value
		event.DBHCm = &v
	}
	if sub.HeightM.Valid && sub.HeightM.Value > 0 {
		v := sub.HeightM.Value
		event.HeightM = &v
	}

	return event
}

func initialMonitoringEvent(tree *models.Tree) *models.MonitoringEvent {
	date := time.Now().Format("2006-01-02")
	if tree.DatePlanted != nil && *tree.DatePlanted != "" {
		date = *tree.DatePlanted
	}
	return &models.MonitoringEvent{
		MonitorDate:      date,
		MonitorStatus:    tree.Status,
		MonitorStage:     tree.TreeStage,
		RCDCm:            tree.RCDCm,
		DBHCm:            tree.DBHCm,
		HeightM:          tree.HeightM,
		CO2Kg:            tree.CO2Kg,
		Notes:            tree.MonitorNotes,
		MonitorBy:        tree.PlanterID,
		KoboSubmissionID: tree.KoboSubmissionID,
	}
}

func stageOrDefault(stage *string) models.TreeStage {
	if stage == nil {
		return models.StageSeedling
	}
	return stageOrDefaultStr(*stage)
}

func stageOrDefaultStr(stage string) models.TreeStage {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return models.StageSeedling
	}
	return models.TreeStage(stage)
}

func positiveOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

// submissionDate extracts the date part of a form timestamp, defaulting to
// today when absent.
func submissionDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().Format("2006-01-02")
	}
	if len(raw) >= 10 {
		return raw[:10]
	}
	return raw
}
