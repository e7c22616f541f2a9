package domain

import (
	"fmt"
	"time"
)

// Refrigeration requirements accepted on a listing, in their canonical casing.
const (
	RefrigerationNone         = "None"
	RefrigerationRefrigerated = "Refrigerated"
	RefrigerationFrozen       = "Frozen"
)

// RefrigerationRequirements lists every accepted refrigeration requirement.
var RefrigerationRequirements = []string{RefrigerationNone, RefrigerationRefrigerated, RefrigerationFrozen}

// Stage enumerates the lifecycle position of a donation.
type Stage string

const (
	StageEmpty     Stage = "empty"
	StageListed    Stage = "listed"
	StageClaimed   Stage = "claimed"
	StageReceipted Stage = "receipted"
)

// Listing is a donor's published offer of food available for claim.
type Listing struct {
	ListingID                 string    `json:"listing_id"`
	DonationID                string    `json:"donation_id"`
	DonorID                   string    `json:"donor_id"`
	DateListed                time.Time `json:"date_listed"`
	FoodType                  string    `json:"food_type"`
	TotalLbsFood              float64   `json:"total_lbs_food"`
	RefrigerationRequirements string    `json:"refrigeration_requirements"`
	ExpirationDate            time.Time `json:"expiration_date"`
}

// Form is a recipient's claim against a listing with the usage breakdown of the food.
type Form struct {
	FormID                string  `json:"form_id"`
	DonationID            string  `json:"donation_id"`
	DonorID               string  `json:"donor_id"`
	RecipientID           string  `json:"recipient_id"`
	ListingID             string  `json:"listing_id"`
	TotalLbsFood          float64 `json:"total_lbs_food"`
	LbsExpiredFood        float64 `json:"lbs_expired_food"`
	LbsFoodForConsumption float64 `json:"lbs_food_for_consumption"`
	LbsFoodForFarms       float64 `json:"lbs_food_for_farms"`
	LbsFoodForWaste       float64 `json:"lbs_food_for_waste"`
}

// BreakdownLbs sums every usage bucket of the form.
func (f Form) BreakdownLbs() float64 {
	return f.LbsExpiredFood + f.LbsFoodForConsumption + f.LbsFoodForFarms + f.LbsFoodForWaste
}

// Receipt is the finalized record of a completed donation transaction.
type Receipt struct {
	ReceiptID         string    `json:"receipt_id"`
	DonationID        string    `json:"donation_id"`
	ListingID         string    `json:"listing_id"`
	DonorID           string    `json:"donor_id"`
	RecipientID       string    `json:"recipient_id,omitempty"`
	DateIssued        time.Time `json:"date_issued"`
	DonationAmountLbs float64   `json:"donation_amount_lbs"`
	DonorName         string    `json:"donor_name"`
	RecipientName     string    `json:"recipient_name"`
}

// Donation is the root document owning a listing, its claim form and the receipt.
// Sub-records may be cleared independently; clearing the listing keeps form and receipt.
type Donation struct {
	DonationID  string   `json:"donation_id"`
	DonorID     string   `json:"donor_id"`
	RecipientID string   `json:"recipient_id,omitempty"`
	Listing     *Listing `json:"listing,omitempty"`
	Form        *Form    `json:"form,omitempty"`
	Receipt     *Receipt `json:"receipt,omitempty"`

	// Version is the optimistic concurrency token of the stored document.
	Version int64 `json:"-"`
}

// Stage reports the furthest lifecycle stage the donation currently holds.
func (d *Donation) Stage() Stage {
	switch {
	case d.Receipt != nil:
		return StageReceipted
	case d.Form != nil:
		return StageClaimed
	case d.Listing != nil:
		return StageListed
	default:
		return StageEmpty
	}
}

// AttachForm records a recipient claim. The donation must still carry its listing.
func (d *Donation) AttachForm(form Form) error {
	if d.Listing == nil {
		return fmt.Errorf("%w: donation %s has no listing to claim", ErrInvalidState, d.DonationID)
	}
	form.DonationID = d.DonationID
	form.DonorID = d.DonorID
	form.ListingID = d.Listing.ListingID
	d.Form = &form
	if form.RecipientID != "" {
		d.RecipientID = form.RecipientID
	}
	return nil
}

// IssueReceipt stores the receipt, replacing any previous one.
func (d *Donation) IssueReceipt(receipt Receipt) {
	receipt.DonationID = d.DonationID
	receipt.DonorID = d.DonorID
	if receipt.ListingID == "" && d.Listing != nil {
		receipt.ListingID = d.Listing.ListingID
	}
	if receipt.RecipientID == "" {
		receipt.RecipientID = d.RecipientID
	} else {
		d.RecipientID = receipt.RecipientID
	}
	d.Receipt = &receipt
}

// RemoveListing clears the listing without touching form or receipt.
func (d *Donation) RemoveListing() error {
	if d.Listing == nil {
		return fmt.Errorf("%w: listing", ErrNotFound)
	}
	d.Listing = nil
	return nil
}

// RemoveForm clears the claim form without touching the receipt.
func (d *Donation) RemoveForm() error {
	if d.Form == nil {
		return fmt.Errorf("%w: form", ErrNotFound)
	}
	d.Form = nil
	return nil
}

// ListingPatch carries the optional fields of a listing update.
type ListingPatch struct {
	FoodType                  *string    `json:"food_type"`
	TotalLbsFood              *float64   `json:"total_lbs_food"`
	RefrigerationRequirements *string    `json:"refrigeration_requirements"`
	ExpirationDate            *time.Time `json:"-"`
}

// FormPatch carries the optional fields of a form update. The filing
// recipient is fixed once the form exists.
type FormPatch struct {
	TotalLbsFood          *float64 `json:"total_lbs_food"`
	LbsExpiredFood        *float64 `json:"lbs_expired_food"`
	LbsFoodForConsumption *float64 `json:"lbs_food_for_consumption"`
	LbsFoodForFarms       *float64 `json:"lbs_food_for_farms"`
	LbsFoodForWaste       *float64 `json:"lbs_food_for_waste"`
}

// Apply copies every present field onto the form.
func (p FormPatch) Apply(f *Form) {
	if p.TotalLbsFood != nil {
		f.TotalLbsFood = *p.TotalLbsFood
	}
	if p.LbsExpiredFood != nil {
		f.LbsExpiredFood = *p.LbsExpiredFood
	}
	if p.LbsFoodForConsumption != nil {
		f.LbsFoodForConsumption = *p.LbsFoodForConsumption
	}
	if p.LbsFoodForFarms != nil {
		f.LbsFoodForFarms = *p.LbsFoodForFarms
	}
	if p.LbsFoodForWaste != nil {
		f.LbsFoodForWaste = *p.LbsFoodForWaste
	}
}
