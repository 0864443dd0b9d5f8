package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tree-service/internal/models"
	"tree-service/internal/repository"

	"github.com/google/uuid"
)

// DonationNotifier publishes donor-facing events once a donation completes.
type DonationNotifier interface {
	PublishDonationCompleted(ctx context.Context, donation *models.Donation, trees []models.Tree) error
}

// DonationService tracks donations and assigns funded trees once the
// external payment processor confirms payment.
type DonationService struct {
	donationRepo *repository.DonationRepository
	treeRepo     *repository.TreeRepository
	notifier     DonationNotifier
	certificates *CertificateService
}

func NewDonationService(donationRepo *repository.DonationRepository, treeRepo *repository.TreeRepository, notifier DonationNotifier, certificates *CertificateService) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		treeRepo:     treeRepo,
		notifier:     notifier,
		certificates: certificates,
	}
}

// CreateDonation opens a pending donation. Payment confirmation arrives
// later on the payment events queue.
func (s *DonationService) CreateDonation(ctx context.Context, req *models.CreateDonationRequest) (*models.Donation, error) {
	if strings.TrimSpace(req.DonorName) == "" {
		return nil, fmt.Errorf("badrequest: donor_name is required")
	}
	if strings.TrimSpace(req.DonorEmail) == "" {
		return nil, fmt.Errorf("badrequest: donor_email is required")
	}
	if strings.TrimSpace(req.Institution) == "" {
		return nil, fmt.Errorf("badrequest: institution is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("badrequest: amount must be positive")
	}
	if req.TreeCount <= 0 {
		return nil, fmt.Errorf("badrequest: tree_count must be positive")
	}

	donation := &models.Donation{
		DonationID:    "DON-" + strings.ToUpper(uuid.NewString()[:8]),
		DonorName:     strings.TrimSpace(req.DonorName),
		DonorEmail:    strings.TrimSpace(req.DonorEmail),
		Institution:   strings.TrimSpace(req.Institution),
		Amount:        req.Amount,
		TreeCount:     req.TreeCount,
		DonationDate:  time.Now(),
		PaymentStatus: models.PaymentPending,
		Message:       req.Message,
	}

	if err := s.donationRepo.Create(donation); err != nil {
		return nil, err
	}

	slog.Info("donation created", "donation_id", donation.DonationID, "institution", donation.Institution, "tree_count", donation.TreeCount)
	return donation, nil
}

func (s *DonationService) GetDonation(ctx context.Context, donationID string) (*models.DonationWithTrees, error) {
	donation, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}

	trees, err := s.donationRepo.GetDonatedTrees(ctx, donationID)
	if err != nil {
		return nil, err
	}

	return &models.DonationWithTrees{
		Donation: *donation,
		Trees:    trees,
	}, nil
}

func (s *DonationService) ListByDonorEmail(ctx context.Context, email string) ([]models.Donation, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("badrequest: email is required")
	}
	return s.donationRepo.GetByDonorEmail(ctx, email)
}

func (s *DonationService) QualifiedInstitutions(ctx context.Context) ([]models.InstitutionQualification, error) {
	return s.donationRepo.GetQualifiedInstitutions(ctx)
}

func (s *DonationService) SetQualification(ctx context.Context, qual *models.InstitutionQualification) error {
	if strings.TrimSpace(qual.Institution) == "" {
		return fmt.Errorf("badrequest: institution is required")
	}
	if qual.QualificationDate.IsZero() {
		qual.QualificationDate = time.Now()
	}
	return s.donationRepo.SetQualification(qual)
}

// CompleteDonationPayment marks a donation paid and assigns it the oldest
// unadopted alive trees of its institution, all in one transaction.
// Re-delivery of the same payment event is a no-op.
func (s *DonationService) CompleteDonationPayment(ctx context.Context, donationID, paymentID string) error {
	donation, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return err
	}
	if donation.PaymentStatus == models.PaymentCompleted {
		slog.Info("donation already completed, skipping", "donation_id", donationID)
		return nil
	}

	trees, err := s.treeRepo.GetUnadoptedAlive(ctx, donation.Institution, donation.TreeCount)
	if err != nil {
		return err
	}
	if len(trees) < donation.TreeCount {
		slog.Warn("fewer unadopted trees than donated",
			"donation_id", donationID,
			"institution", donation.Institution,
			"requested", donation.TreeCount,
			"available", len(trees))
	}

	tx, err := s.donationRepo.BeginTransaction()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pid *string
	if paymentID != "" {
		pid = &paymentID
	}
	if err := s.donationRepo.UpdatePaymentStatusTx(tx, donationID, models.PaymentCompleted, pid); err != nil {
		return err
	}

	for _, tree := range trees {
		if err := s.donationRepo.AssignTreeTx(tx, donationID, tree.TreeID); err != nil {
			return err
		}
		if err := s.treeRepo.UpdateAdopterTx(tx, tree.TreeID, donation.DonorName); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit donation completion: %w", err)
	}

	donation.PaymentStatus = models.PaymentCompleted
	donation.PaymentID = pid

	slog.Info("donation completed", "donation_id", donationID, "trees_assigned", len(trees))

	if s.certificates != nil {
		if certURL, err := s.certificates.StoreCertificate(ctx, donation, trees); err != nil {
			slog.Error("failed to store donation certificate", "donation_id", donationID, "error", err)
		} else {
			slog.Info("donation certificate stored", "donation_id", donationID, "url", certURL)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.PublishDonationCompleted(ctx, donation, trees); err != nil {
			slog.Error("failed to publish donation notification", "donation_id", donationID, "error", err)
		}
	}

	return nil
}

// FailDonationPayment records a failed or refunded payment.
func (s *DonationService) FailDonationPayment(ctx context.Context, donationID, paymentID string, status models.PaymentStatus) error {
	if status != models.PaymentFailed && status != models.PaymentRefunded {
		return fmt.Errorf("badrequest: invalid terminal payment status: %s", status)
	}

	tx, err := s.donationRepo.BeginTransaction()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pid *string
	if paymentID != "" {
		pid = &paymentID
	}
	if err := s.donationRepo.UpdatePaymentStatusTx(tx, donationID, status, pid); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment status update: %w", err)
	}

	slog.Info("donation payment closed", "donation_id", donationID, "status", status)
	return nil
}
