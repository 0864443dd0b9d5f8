package services

import (
	"context"
	"log/slog"

	"tree-service/internal/models"
	"tree-service/internal/repository"
)

// TreeService serves tree lookups and administrative operations, and tags
// newly persisted trees with their QR artifact.
type TreeService struct {
	treeRepo       *repository.TreeRepository
	monitoringRepo *repository.MonitoringRepository
	qrService      *QRService
}

func NewTreeService(treeRepo *repository.TreeRepository, monitoringRepo *repository.MonitoringRepository, qrService *QRService) *TreeService {
	return &TreeService{
		treeRepo:       treeRepo,
		monitoringRepo: monitoringRepo,
		qrService:      qrService,
	}
}

// GetTree returns a tree together with its full monitoring history, most
// recent event first.
func (s *TreeService) GetTree(ctx context.Context, treeID string) (*models.TreeWithHistory, error) {
	tree, err := s.treeRepo.GetByID(ctx, treeID)
	if err != nil {
		return nil, err
	}

	history, err := s.monitoringRepo.GetHistoryByTreeID(ctx, treeID)
	if err != nil {
		return nil, err
	}

	return &models.TreeWithHistory{
		Tree:              *tree,
		MonitoringHistory: history,
	}, nil
}

func (s *TreeService) ListTrees(ctx context.Context, institution, status string) ([]models.Tree, error) {
	return s.treeRepo.GetAll(ctx, institution, status)
}

func (s *TreeService) ListInstitutions(ctx context.Context) ([]string, error) {
	return s.treeRepo.GetInstitutions(ctx)
}

func (s *TreeService) GetMonitoringHistory(ctx context.Context, treeID string) ([]models.MonitoringEvent, error) {
	// Verify the tree exists so an unknown id returns not_found rather than
	// an empty history.
	if _, err := s.treeRepo.GetByID(ctx, treeID); err != nil {
		return nil, err
	}
	return s.monitoringRepo.GetHistoryByTreeID(ctx, treeID)
}

// AttachQRCode generates and stores the QR payload for a freshly planted
// tree. A failure here is logged, not fatal: the tree is already persisted
// and the payload can be regenerated.
func (s *TreeService) AttachQRCode(ctx context.Context, treeID string) {
	artifactURL, err := s.qrService.GenerateForTree(ctx, treeID)
	if err != nil {
		slog.Error("failed to generate qr artifact", "tree_id", treeID, "error", err)
		return
	}
	if err := s.treeRepo.UpdateQRCode(treeID, artifactURL); err != nil {
		slog.Error("failed to attach qr artifact", "tree_id", treeID, "error", err)
	}
}

// RegenerateQR rebuilds and re-stores the QR payload for an existing tree.
func (s *TreeService) RegenerateQR(ctx context.Context, treeID string) (string, error) {
	if _, err := s.treeRepo.GetByID(ctx, treeID); err != nil {
		return "", err
	}

	artifactURL, err := s.qrService.GenerateForTree(ctx, treeID)
	if err != nil {
		return "", err
	}
	if err := s.treeRepo.UpdateQRCode(treeID, artifactURL); err != nil {
		return "", err
	}

	return artifactURL, nil
}

// DeleteTree is the administrative removal path.
func (s *TreeService) DeleteTree(ctx context.Context, treeID string) error {
	return s.treeRepo.Delete(treeID)
}
