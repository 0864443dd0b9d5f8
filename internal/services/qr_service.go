package services

import (
	"context"
	"fmt"
	"net/url"

	"tree-service/internal/config"
	"tree-service/internal/database/minio"
)

// QRService builds the monitoring-form payload encoded on each tree's tag
// and stores it as an artifact. Rendering the payload into an image is left
// to the label-printing side.
type QRService struct {
	minioClient *minio.MinioClient
	koboCfg     config.KoboConfig
}

func NewQRService(minioClient *minio.MinioClient, koboCfg config.KoboConfig) *QRService {
	return &QRService{
		minioClient: minioClient,
		koboCfg:     koboCfg,
	}
}

// MonitoringFormURL is the link a field agent lands on when scanning a
// tree's tag: the monitoring form with the tree id prefilled.
func (s *QRService) MonitoringFormURL(treeID string) string {
	return fmt.Sprintf("%s/%s?d[tree_id]=%s",
		s.koboCfg.FormBaseURL, s.koboCfg.MonitoringAssetID, url.QueryEscape(treeID))
}

// GenerateForTree uploads the tree's QR payload and returns the artifact
// URL.
func (s *QRService) GenerateForTree(ctx context.Context, treeID string) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("object storage unavailable, cannot store qr payload for %s", treeID)
	}

	payload := s.MonitoringFormURL(treeID)
	objectName := fmt.Sprintf("%s.txt", treeID)

	artifactURL, err := s.minioClient.PutObject(ctx, minio.Storage.QRArtifacts, objectName, []byte(payload), "text/plain")
	if err != nil {
		return "", fmt.Errorf("failed to store qr payload for %s: %w", treeID, err)
	}

	return artifactURL, nil
}
