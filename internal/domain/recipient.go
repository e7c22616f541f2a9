package domain

import (
	"strings"
	"time"
)

// StatusPending is the initial tax and compliance status of a recipient.
const StatusPending = "Pending"

// VerificationStatus is a free-text status with the time it was last set.
type VerificationStatus struct {
	Status           string     `json:"status"`
	VerificationDate *time.Time `json:"verification_date"`
}

// Recipient is the root document of an organization receiving donations.
type Recipient struct {
	RecipientID      string             `json:"recipient_id"`
	FirstName        string             `json:"first_name"`
	LastName         string             `json:"last_name"`
	OrganizationName string             `json:"organization_name"`
	Email            string             `json:"email"`
	PhoneNumber      string             `json:"phone_number"`
	Address          Address            `json:"address"`
	EIN              string             `json:"ein"`
	TaxStatus        VerificationStatus `json:"tax_status"`
	ComplianceStatus VerificationStatus `json:"compliance_status"`
	Donations        []ImpactRecord     `json:"donations"`
	DonationLog      Rollup             `json:"donation_log"`

	Version int64 `json:"-"`
}

// FullName joins first and last name.
func (r *Recipient) FullName() string {
	return joinName(r.FirstName, r.LastName)
}

// Donation returns the embedded record for the donation, or nil.
func (r *Recipient) Donation(donationID string) *ImpactRecord {
	return findRecord(r.Donations, donationID)
}

// RecipientPatch carries the optional fields of a recipient profile update.
type RecipientPatch struct {
	PhoneNumber      *string  `json:"phone_number"`
	Address          *Address `json:"address"`
	TaxStatus        *string  `json:"tax_status"`
	ComplianceStatus *string  `json:"compliance_status"`
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
