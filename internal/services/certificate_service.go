package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tree-service/internal/database/minio"
	"tree-service/internal/models"
)

// DonationCertificate is the summary stored for a completed donation. The
// payment processor renders the printable certificate from it.
type DonationCertificate struct {
	DonationID  string    `json:"donation_id"`
	DonorName   string    `json:"donor_name"`
	Institution string    `json:"institution"`
	Amount      float64   `json:"amount"`
	TreeIDs     []string  `json:"tree_ids"`
	TotalCO2Kg  float64   `json:"total_co2_kg"`
	IssuedAt    time.Time `json:"issued_at"`
}

// CertificateService stores donation completion summaries as artifacts in
// the certificates bucket.
type CertificateService struct {
	minioClient *minio.MinioClient
}

func NewCertificateService(minioClient *minio.MinioClient) *CertificateService {
	return &CertificateService{minioClient: minioClient}
}

// BuildCertificate assembles the summary for a completed donation.
func BuildCertificate(donation *models.Donation, trees []models.Tree, issuedAt time.Time) DonationCertificate {
	treeIDs := make([]string, 0, len(trees))
	totalCO2 := 0.0
	for _, tree := range trees {
		treeIDs = append(treeIDs, tree.TreeID)
		totalCO2 += tree.CO2Kg
	}

	return DonationCertificate{
		DonationID:  donation.DonationID,
		DonorName:   donation.DonorName,
		Institution: donation.Institution,
		Amount:      donation.Amount,
		TreeIDs:     treeIDs,
		TotalCO2Kg:  totalCO2,
		IssuedAt:    issuedAt,
	}
}

// StoreCertificate uploads the donation summary and returns the artifact
// URL.
func (s *CertificateService) StoreCertificate(ctx context.Context, donation *models.Donation, trees []models.Tree) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("object storage unavailable, cannot store certificate for %s", donation.DonationID)
	}

	cert := BuildCertificate(donation, trees, time.Now())
	body, err := json.Marshal(cert)
	if err != nil {
		return "", fmt.Errorf("failed to marshal certificate for %s: %w", donation.DonationID, err)
	}

	objectName := fmt.Sprintf("%s.json", donation.DonationID)
	artifactURL, err := s.minioClient.PutObject(ctx, minio.Storage.Certificates, objectName, body, "application/json")
	if err != nil {
		return "", fmt.Errorf("failed to store certificate for %s: %w", donation.DonationID, err)
	}

	return artifactURL, nil
}
