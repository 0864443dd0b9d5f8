package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tree-service/internal/models"

	"github.com/jmoiron/sqlx"
)

type DonationRepository struct {
	db *sqlx.DB
}

func NewDonationRepository(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) BeginTransaction() (*sqlx.Tx, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *DonationRepository) Create(donation *models.Donation) error {
	query := `
		INSERT INTO donations (
			donation_id, donor_name, donor_email, institution,
			amount, tree_count, donation_date, payment_status, payment_id, message
		) VALUES (
			:donation_id, :donor_name, :donor_email, :institution,
			:amount, :tree_count, :donation_date, :payment_status, :payment_id, :message
		)`

	_, err := r.db.NamedExec(query, donation)
	if err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}

	return nil
}

func (r *DonationRepository) GetByID(ctx context.Context, donationID string) (*models.Donation, error) {
	query := `
		SELECT donation_id, donor_name, donor_email, institution,
		       amount, tree_count, donation_date, payment_status, payment_id, message
		FROM donations
		WHERE donation_id = $1`

	var donation models.Donation
	err := r.db.GetContext(ctx, &donation, query, donationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("not_found: donation not found: %s", donationID)
		}
		return nil, fmt.Errorf("failed to get donation %s: %w", donationID, err)
	}

	return &donation, nil
}

func (r *DonationRepository) GetByDonorEmail(ctx context.Context, email string) ([]models.Donation, error) {
	query := `
		SELECT donation_id, donor_name, donor_email, institution,
		       amount, tree_count, donation_date, payment_status, payment_id, message
		FROM donations
		WHERE donor_email = $1
		ORDER BY donation_date DESC`

	var donations []models.Donation
	err := r.db.SelectContext(ctx, &donations, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get donations for %s: %w", email, err)
	}

	return donations, nil
}

// UpdatePaymentStatusTx moves a donation's payment status inside the
// assignment transaction.
func (r *DonationRepository) UpdatePaymentStatusTx(tx *sqlx.Tx, donationID string, status models.PaymentStatus, paymentID *string) error {
	query := `
		UPDATE donations SET
			payment_status = $2,
			payment_id = COALESCE($3, payment_id)
		WHERE donation_id = $1`

	result, err := tx.Exec(query, donationID, status, paymentID)
	if err != nil {
		return fmt.Errorf("failed to update payment status for %s: %w", donationID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("not_found: donation not found: %s", donationID)
	}

	return nil
}

// AssignTreeTx links a tree to a donation. The UNIQUE(tree_id) constraint
// rejects assigning one tree to two donations.
func (r *DonationRepository) AssignTreeTx(tx *sqlx.Tx, donationID, treeID string) error {
	_, err := tx.Exec(
		`INSERT INTO donated_trees (donation_id, tree_id) VALUES ($1, $2)`,
		donationID, treeID)
	if err != nil {
		return fmt.Errorf("failed to assign tree %s to donation %s: %w", treeID, donationID, err)
	}
	return nil
}

func (r *DonationRepository) GetDonatedTrees(ctx context.Context, donationID string) ([]models.Tree, error) {
	query := `
		SELECT ` + treeColumns + `
		FROM trees
		WHERE tree_id IN (SELECT tree_id FROM donated_trees WHERE donation_id = $1)
		ORDER BY tree_id`

	var trees []models.Tree
	err := r.db.SelectContext(ctx, &trees, query, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donated trees for %s: %w", donationID, err)
	}

	return trees, nil
}

// GetQualifiedInstitutions returns institutions eligible to receive
// donations. Institutions with at least one alive tree qualify unless an
// explicit disqualification row exists.
func (r *DonationRepository) GetQualifiedInstitutions(ctx context.Context) ([]models.InstitutionQualification, error) {
	query := `
		SELECT t.institution,
		       COALESCE(q.qualified, TRUE)           AS qualified,
		       q.qualification_reason,
		       COALESCE(q.qualification_date, now()) AS qualification_date
		FROM (SELECT DISTINCT institution FROM trees WHERE status = 'Alive') t
		LEFT JOIN institution_qualification q ON q.institution = t.institution
		WHERE COALESCE(q.qualified, TRUE)
		ORDER BY t.institution`

	var quals []models.InstitutionQualification
	err := r.db.SelectContext(ctx, &quals, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get qualified institutions: %w", err)
	}

	return quals, nil
}

// SetQualification records an explicit qualification decision for an
// institution, overriding the default.
func (r *DonationRepository) SetQualification(qual *models.InstitutionQualification) error {
	query := `
		INSERT INTO institution_qualification (institution, qualified, qualification_reason, qualification_date)
		VALUES (:institution, :qualified, :qualification_reason, :qualification_date)
		ON CONFLICT (institution) DO UPDATE SET
			qualified = EXCLUDED.qualified,
			qualification_reason = EXCLUDED.qualification_reason,
			qualification_date = EXCLUDED.qualification_date`

	_, err := r.db.NamedExec(query, qual)
	if err != nil {
		return fmt.Errorf("failed to set qualification for %s: %w", qual.Institution, err)
	}

	return nil
}
