package models

import "time"

// ============================================================================
// DONATIONS (payment processing itself is handled by an external service;
// this service only tracks donation records and tree assignment)
// ============================================================================

type Donation struct {
	DonationID    string        `json:"donation_id" db:"donation_id"`
	DonorName     string        `json:"donor_name" db:"donor_name"`
	DonorEmail    string        `json:"donor_email" db:"donor_email"`
	Institution   string        `json:"institution" db:"institution"`
	Amount        float64       `json:"amount" db:"amount"`
	TreeCount     int           `json:"tree_count" db:"tree_count"`
	DonationDate  time.Time     `json:"donation_date" db:"donation_date"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentID     *string       `json:"payment_id,omitempty" db:"payment_id"`
	Message       *string       `json:"message,omitempty" db:"message"`
}

// DonatedTree links a funded tree to the donation that paid for it. A tree
// can be assigned to at most one donation.
type DonatedTree struct {
	ID         int64  `json:"id" db:"id"`
	DonationID string `json:"donation_id" db:"donation_id"`
	TreeID     string `json:"tree_id" db:"tree_id"`
}

// DonationWithTrees is the lookup response shape: a donation plus the trees
// assigned to it.
type DonationWithTrees struct {
	Donation
	Trees []Tree `json:"trees"`
}

// InstitutionQualification marks whether an institution may receive
// donations. Institutions with planted trees qualify by default.
type InstitutionQualification struct {
	Institution         string    `json:"institution" db:"institution"`
	Qualified           bool      `json:"qualified" db:"qualified"`
	QualificationReason *string   `json:"qualification_reason,omitempty" db:"qualification_reason"`
	QualificationDate   time.Time `json:"qualification_date" db:"qualification_date"`
}
