package services

import (
	"context"
	"testing"
	"time"

	"tree-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCertificate(t *testing.T) {
	donation := &models.Donation{
		DonationID:  "DON-1A2B3C4D",
		DonorName:   "Jordan Mwangi",
		Institution: "Greenwood High",
		Amount:      50,
		TreeCount:   2,
	}
	trees := []models.Tree{
		{TreeID: "GRE001", CO2Kg: 21.66},
		{TreeID: "GRE002", CO2Kg: 1.59},
	}
	issuedAt := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	cert := BuildCertificate(donation, trees, issuedAt)

	assert.Equal(t, "DON-1A2B3C4D", cert.DonationID)
	assert.Equal(t, "Jordan Mwangi", cert.DonorName)
	assert.Equal(t, "Greenwood High", cert.Institution)
	assert.Equal(t, []string{"GRE001", "GRE002"}, cert.TreeIDs)
	assert.InDelta(t, 23.25, cert.TotalCO2Kg, 1e-9)
	assert.Equal(t, issuedAt, cert.IssuedAt)
}

func TestBuildCertificateNoTrees(t *testing.T) {
	donation := &models.Donation{DonationID: "DON-EMPTY", DonorName: "Jordan Mwangi"}

	cert := BuildCertificate(donation, nil, time.Now())

	assert.Empty(t, cert.TreeIDs)
	assert.Equal(t, 0.0, cert.TotalCO2Kg)
}

func TestStoreCertificateWithoutStorage(t *testing.T) {
	svc := NewCertificateService(nil)
	donation := &models.Donation{DonationID: "DON-1A2B3C4D"}

	_, err := svc.StoreCertificate(context.Background(), donation, nil)
	require.Error(t, err)
}
