package services

import (
	"context"
	"fmt"
	"testing"

	"tree-service/internal/kobo"
	"tree-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	processed map[string]bool
	trees     []*models.Tree
	events    []*models.MonitoringEvent
	nextSeq   int
	failScan  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{processed: map[string]bool{}}
}

func (f *fakeStore) IsProcessed(_ context.Context, submissionID string) (bool, error) {
	if f.failScan {
		return false, fmt.Errorf("failed to check processed submission: connection refused")
	}
	return f.processed[submissionID], nil
}

func (f *fakeStore) CreateTree(_ context.Context, tree *models.Tree, initial *models.MonitoringEvent) error {
	if f.failScan {
		return fmt.Errorf("failed to scan tree ids: connection refused")
	}
	if tree.KoboSubmissionID != nil && f.processed[*tree.KoboSubmissionID] {
		return fmt.Errorf("duplicate: submission already processed: %s", *tree.KoboSubmissionID)
	}
	f.nextSeq++
	tree.TreeID = fmt.Sprintf("%s%03d", models.TreePrefix(tree.Institution), f.nextSeq)
	f.trees = append(f.trees, tree)
	if initial != nil {
		initial.TreeID = tree.TreeID
		f.events = append(f.events, initial)
	}
	if tree.KoboSubmissionID != nil {
		f.processed[*tree.KoboSubmissionID] = true
	}
	return nil
}

func (f *fakeStore) RecordMonitoring(_ context.Context, event *models.MonitoringEvent, applyTx func(*sqlx.Tx, *models.MonitoringEvent) error) error {
	if event.KoboSubmissionID != nil && f.processed[*event.KoboSubmissionID] {
		return fmt.Errorf("duplicate: submission already processed: %s", *event.KoboSubmissionID)
	}
	f.events = append(f.events, event)
	if err := applyTx(nil, event); err != nil {
		return err
	}
	if event.KoboSubmissionID != nil {
		f.processed[*event.KoboSubmissionID] = true
	}
	return nil
}

type fakeTreeReader struct {
	trees map[string]*models.Tree
}

func (f *fakeTreeReader) GetByID(_ context.Context, treeID string) (*models.Tree, error) {
	tree, ok := f.trees[treeID]
	if !ok {
		return nil, fmt.Errorf("not_found: tree not found: %s", treeID)
	}
	return tree, nil
}

func (f *fakeTreeReader) ApplyMonitoringTx(_ *sqlx.Tx, event *models.MonitoringEvent) error {
	tree, ok := f.trees[event.TreeID]
	if !ok {
		return fmt.Errorf("not_found: tree not found: %s", event.TreeID)
	}
	tree.Status = event.MonitorStatus
	tree.CO2Kg = event.CO2Kg
	return nil
}

func newTestIngestionService(store *fakeStore, reader *fakeTreeReader) *IngestionService {
	provider := &fakeDensityProvider{densities: map[string]float64{
		"Grevillea robusta": 0.65,
	}}
	return NewIngestionService(store, reader, NewCarbonEstimator(provider))
}

func plantingSubmission(id string) *kobo.Submission {
	return &kobo.Submission{
		ID:             kobo.FlexString(id),
		SubmissionTime: "2026-03-14T09:30:00",
		Institution:    "Greenwood High",
		LocalName:      "Silky Oak",
		ScientificName: "Grevillea robusta",
		StudentName:    "Amina W.",
		TreeStage:      "Sapling",
		DBHCm:          kobo.FlexFloat{Value: 10, Valid: true},
	}
}

func TestIngestPlantingSubmission(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngestionService(store, &fakeTreeReader{trees: map[string]*models.Tree{}})

	result, err := svc.IngestPlantingSubmission(context.Background(), plantingSubmission("sub-1"))
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, models.StatePersisted, result.State)
	assert.Equal(t, "GRE001", result.TreeID)

	require.Len(t, store.trees, 1)
	tree := store.trees[0]
	assert.Equal(t, "Greenwood High", tree.Institution)
	assert.InDelta(t, 21.66, tree.CO2Kg, 1e-9)
	assert.Equal(t, models.TreeAlive, tree.Status)
	require.NotNil(t, tree.DatePlanted)
	assert.Equal(t, "2026-03-14", *tree.DatePlanted)

	// First ingestion writes the initial monitoring event alongside the tree.
	require.Len(t, store.events, 1)
	assert.Equal(t, "GRE001", store.events[0].TreeID)
	assert.Equal(t, tree.CO2Kg, store.events[0].CO2Kg)
}

func TestIngestPlantingSubmissionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*kobo.Submission)
		reason string
	}{
		{"missing institution", func(s *kobo.Submission) { s.Institution = " " }, "missing institution"},
		{"missing local name", func(s *kobo.Submission) { s.LocalName = "" }, "missing local_name"},
		{"missing submission id", func(s *kobo.Submission) { s.ID = "" }, "missing submission id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestIngestionService(store, &fakeTreeReader{trees: map[string]*models.Tree{}})

			sub := plantingSubmission("sub-2")
			tt.mutate(sub)

			result, err := svc.IngestPlantingSubmission(context.Background(), sub)
			require.NoError(t, err)
			assert.True(t, result.Skipped)
			assert.Equal(t, tt.reason, result.SkipReason)
			assert.Equal(t, models.StateAwaitingSubmission, result.State)
			assert.Empty(t, store.trees)
		})
	}
}

func TestIngestPlantingSubmissionDeduplicates(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngestionService(store, &fakeTreeReader{trees: map[string]*models.Tree{}})
	ctx := context.Background()

	first, err := svc.IngestPlantingSubmission(ctx, plantingSubmission("sub-3"))
	require.NoError(t, err)
	assert.Equal(t, models.StatePersisted, first.State)

	second, err := svc.IngestPlantingSubmission(ctx, plantingSubmission("sub-3"))
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Equal(t, "submission already processed", second.SkipReason)
	assert.Empty(t, second.TreeID)

	assert.Len(t, store.trees, 1)
}

func TestIngestPlantingSubmissionStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.failScan = true
	svc := newTestIngestionService(store, &fakeTreeReader{trees: map[string]*models.Tree{}})

	result, err := svc.IngestPlantingSubmission(context.Background(), plantingSubmission("sub-4"))
	require.Error(t, err)
	assert.False(t, result.Skipped)
	assert.NotEqual(t, models.StatePersisted, result.State)
	assert.Empty(t, result.TreeID)
}

func TestIngestMonitoringSubmission(t *testing.T) {
	scientific := "Grevillea robusta"
	oldDBH := 8.0
	reader := &fakeTreeReader{trees: map[string]*models.Tree{
		"GRE001": {
			TreeID:         "GRE001",
			Institution:    "Greenwood High",
			LocalName:      "Silky Oak",
			ScientificName: &scientific,
			TreeStage:      models.StageSapling,
			DBHCm:          &oldDBH,
			Status:         models.TreeAlive,
		},
	}}
	store := newFakeStore()
	svc := newTestIngestionService(store, reader)

	sub := &kobo.Submission{
		ID:          "mon-1",
		TreeID:      "GRE001",
		MonitorDate: "2026-04-01",
		TreeStatus:  "Alive",
		GrowthStage: "Young Tree",
		DBHCm:       kobo.FlexFloat{Value: 10, Valid: true},
		MonitorName: "Field Agent",
	}

	result, err := svc.IngestMonitoringSubmission(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, models.StatePersisted, result.State)
	assert.Equal(t, "GRE001", result.TreeID)

	require.Len(t, store.events, 1)
	event := store.events[0]
	assert.Equal(t, "2026-04-01", event.MonitorDate)
	assert.Equal(t, models.TreeStage("Young Tree"), event.MonitorStage)
	assert.InDelta(t, 21.66, event.CO2Kg, 1e-9)
}

func TestIngestMonitoringSubmissionKeepsStoredMeasurements(t *testing.T) {
	scientific := "Grevillea robusta"
	dbh := 10.0
	reader := &fakeTreeReader{trees: map[string]*models.Tree{
		"GRE001": {
			TreeID:         "GRE001",
			ScientificName: &scientific,
			TreeStage:      models.StageSapling,
			DBHCm:          &dbh,
			Status:         models.TreeAlive,
		},
	}}
	store := newFakeStore()
	svc := newTestIngestionService(store, reader)

	// No measurements in the submission: CO2 comes from the stored DBH.
	sub := &kobo.Submission{ID: "mon-2", TreeID: "GRE001", TreeStatus: "Alive"}

	result, err := svc.IngestMonitoringSubmission(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, models.StatePersisted, result.State)

	require.Len(t, store.events, 1)
	assert.InDelta(t, 21.66, store.events[0].CO2Kg, 1e-9)
	assert.Nil(t, store.events[0].DBHCm)
}

func TestIngestMonitoringSubmissionUnknownTree(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngestionService(store, &fakeTreeReader{trees: map[string]*models.Tree{}})

	sub := &kobo.Submission{ID: "mon-3", TreeID: "ZZZ999"}
	result, err := svc.IngestMonitoringSubmission(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, models.StateAwaitingSubmission, result.State)
	assert.Empty(t, store.events)
}

func TestIngestMonitoringSubmissionDeduplicates(t *testing.T) {
	scientific := "Grevillea robusta"
	reader := &fakeTreeReader{trees: map[string]*models.Tree{
		"GRE001": {TreeID: "GRE001", ScientificName: &scientific, TreeStage: models.StageSapling, Status: models.TreeAlive},
	}}
	store := newFakeStore()
	svc := newTestIngestionService(store, reader)
	ctx := context.Background()

	sub := &kobo.Submission{ID: "mon-4", TreeID: "GRE001", TreeStatus: "Dead"}

	first, err := svc.IngestMonitoringSubmission(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, models.StatePersisted, first.State)
	assert.Equal(t, models.TreeDead, reader.trees["GRE001"].Status)

	second, err := svc.IngestMonitoringSubmission(ctx, sub)
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Len(t, store.events, 1)
}

func TestCreateTreeManualEntry(t *testing.T) {
	store := newFakeStore()
	svc := newTestIngestionService(store, &fakeTreeReader{trees: map[string]*models.Tree{}})

	dbh := 10.0
	req := &models.CreateTreeRequest{
		Institution: "Greenwood High",
		LocalName:   "Silky Oak",
		DBHCm:       &dbh,
	}

	tree, err := svc.CreateTree(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "GRE001", tree.TreeID)
	assert.Nil(t, tree.KoboSubmissionID)
	assert.Equal(t, models.StageSeedling, tree.TreeStage)
	// Default density applies: no species on the request.
	expected := EstimateCO2WithDensity(DefaultWoodDensity, nil, &dbh)
	assert.Equal(t, expected, tree.CO2Kg)
}

func TestCreateTreeManualEntryValidation(t *testing.T) {
	svc := newTestIngestionService(newFakeStore(), &fakeTreeReader{trees: map[string]*models.Tree{}})

	_, err := svc.CreateTree(context.Background(), &models.CreateTreeRequest{LocalName: "Oak"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badrequest")

	_, err = svc.CreateTree(context.Background(), &models.CreateTreeRequest{Institution: "Greenwood High"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badrequest")
}
