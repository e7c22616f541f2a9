package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"foodshare/internal/domain"
)

// ListingInput is the payload of a new listing.
type ListingInput struct {
	FoodType                  string     `json:"food_type"`
	TotalLbsFood              float64    `json:"total_lbs_food"`
	RefrigerationRequirements string     `json:"refrigeration_requirements"`
	ExpirationDate            time.Time  `json:"expiration_date"`
	DateListed                *time.Time `json:"date_listed,omitempty"`
}

// FormInput is the payload of a recipient claim. The names are copied onto the
// receipt created alongside the form.
type FormInput struct {
	RecipientID           string  `json:"recipient_id"`
	TotalLbsFood          float64 `json:"total_lbs_food"`
	LbsExpiredFood        float64 `json:"lbs_expired_food"`
	LbsFoodForConsumption float64 `json:"lbs_food_for_consumption"`
	LbsFoodForFarms       float64 `json:"lbs_food_for_farms"`
	LbsFoodForWaste       float64 `json:"lbs_food_for_waste"`
	DonorName             string  `json:"donor_name"`
	RecipientName         string  `json:"recipient_name"`
}

// ReceiptInput is the payload of an explicitly issued receipt.
type ReceiptInput struct {
	ReceiptID         string     `json:"receipt_id,omitempty"`
	RecipientID       string     `json:"recipient_id"`
	DateIssued        *time.Time `json:"date_issued,omitempty"`
	DonationAmountLbs float64    `json:"donation_amount_lbs"`
	DonorName         string     `json:"donor_name"`
	RecipientName     string     `json:"recipient_name"`
}

// FormResult pairs a form with the receipt kept in sync with it.
type FormResult struct {
	Form    domain.Form     `json:"form"`
	Receipt *domain.Receipt `json:"receipt,omitempty"`
}

// DonationService drives a donation through listing, claim and receipt.
type DonationService struct {
	donations domain.DonationRepository
	log       zerolog.Logger
	opts      Options
}

// NewDonationService builds the lifecycle service over a donation repository.
func NewDonationService(donations domain.DonationRepository, log zerolog.Logger, opts Options) *DonationService {
	return &DonationService{
		donations: donations,
		log:       log.With().Str("component", "donations").Logger(),
		opts:      opts.withDefaults(),
	}
}

// CreateListing opens a new donation with its listing.
func (s *DonationService) CreateListing(ctx context.Context, donorID string, in ListingInput) (*domain.Listing, error) {
	if err := required("donor_id", donorID); err != nil {
		return nil, err
	}
	if err := required("food_type", in.FoodType); err != nil {
		return nil, err
	}
	if in.TotalLbsFood <= 0 {
		return nil, fmt.Errorf("%w: total_lbs_food must be positive", domain.ErrValidation)
	}
	if in.ExpirationDate.IsZero() {
		return nil, fmt.Errorf("%w: expiration_date is required", domain.ErrValidation)
	}
	refrigeration, err := NormalizeRefrigeration(in.RefrigerationRequirements)
	if err != nil {
		return nil, err
	}

	listed := s.opts.Now()
	if in.DateListed != nil && !in.DateListed.IsZero() {
		listed = *in.DateListed
	}
	donationID := s.opts.NewID()
	listing := &domain.Listing{
		ListingID:                 s.opts.NewID(),
		DonationID:                donationID,
		DonorID:                   donorID,
		DateListed:                listed,
		FoodType:                  in.FoodType,
		TotalLbsFood:              in.TotalLbsFood,
		RefrigerationRequirements: refrigeration,
		ExpirationDate:            in.ExpirationDate,
	}
	donation := &domain.Donation{DonationID: donationID, DonorID: donorID, Listing: listing}
	if err := s.donations.Save(ctx, donation); err != nil {
		return nil, fmt.Errorf("save donation: %w", err)
	}

	s.log.Info().Str("donation_id", donationID).Str("listing_id", listing.ListingID).Str("donor_id", donorID).Msg("listing created")
	s.opts.Recorder.RecordOperation("listing", "create")
	return listing, nil
}

// GetListing returns the listing with the given id, or ErrNotFound once it was deleted.
func (s *DonationService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	donation, err := s.donations.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return donation.Listing, nil
}

// ListListings returns one page of listings. Donations whose listing was
// deleted are skipped before paging.
func (s *DonationService) ListListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	switch q.SortBy {
	case domain.ListingSortNone, domain.ListingSortDateListed, domain.ListingSortTotalLbsFood:
	default:
		return nil, fmt.Errorf("%w: unknown listing sort %q", domain.ErrValidation, q.SortBy)
	}
	q.Page = q.Page.Normalize()
	donations, err := s.donations.ListListed(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(donations))
	for _, d := range donations {
		if d.Listing != nil {
			out = append(out, *d.Listing)
		}
	}
	return out, nil
}

// UpdateListing applies the present fields of the patch.
func (s *DonationService) UpdateListing(ctx context.Context, listingID string, patch domain.ListingPatch) (*domain.Listing, error) {
	donation, err := s.donations.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if donation.Listing == nil {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, listingID)
	}
	listing := *donation.Listing
	if patch.FoodType != nil {
		if err := required("food_type", *patch.FoodType); err != nil {
			return nil, err
		}
		listing.FoodType = *patch.FoodType
	}
	if patch.TotalLbsFood != nil {
		if *patch.TotalLbsFood <= 0 {
			return nil, fmt.Errorf("%w: total_lbs_food must be positive", domain.ErrValidation)
		}
		listing.TotalLbsFood = *patch.TotalLbsFood
	}
	if patch.RefrigerationRequirements != nil {
		refrigeration, err := NormalizeRefrigeration(*patch.RefrigerationRequirements)
		if err != nil {
			return nil, err
		}
		listing.RefrigerationRequirements = refrigeration
	}
	if patch.ExpirationDate != nil {
		listing.ExpirationDate = *patch.ExpirationDate
	}

	donation.Listing = &listing
	if err := s.donations.Save(ctx, donation); err != nil {
		return nil, fmt.Errorf("save donation: %w", err)
	}
	s.log.Info().Str("listing_id", listingID).Msg("listing updated")
	s.opts.Recorder.RecordOperation("listing", "update")
	return &listing, nil
}

// DeleteListing clears the listing only. Form and receipt stay on the donation.
func (s *DonationService) DeleteListing(ctx context.Context, listingID string) error {
	donation, err := s.donations.GetByListingID(ctx, listingID)
	if err != nil {
		return err
	}
	if err := donation.RemoveListing(); err != nil {
		return err
	}
	if err := s.donations.Save(ctx, donation); err != nil {
		return fmt.Errorf("save donation: %w", err)
	}
	s.log.Info().Str("listing_id", listingID).Str("donation_id", donation.DonationID).Msg("listing deleted")
	s.opts.Recorder.RecordOperation("listing", "delete")
	return nil
}

// GetForm returns the form filed against a listing.
func (s *DonationService) GetForm(ctx context.Context, listingID string) (*domain.Form, error) {
	donation, err := s.donations.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if donation.Form == nil {
		return nil, fmt.Errorf("%w: form for listing %s", domain.ErrNotFound, listingID)
	}
	return donation.Form, nil
}

// CreateForm claims the listing owned by donorID and issues a receipt snapshot
// from the form. No donation is created when none matches.
func (s *DonationService) CreateForm(ctx context.Context, donorID, listingID string, in FormInput) (*FormResult, error) {
	if err := required("recipient_id", in.RecipientID); err != nil {
		return nil, err
	}
	form := domain.Form{
		FormID:                s.opts.NewID(),
		RecipientID:           in.RecipientID,
		TotalLbsFood:          in.TotalLbsFood,
		LbsExpiredFood:        in.LbsExpiredFood,
		LbsFoodForConsumption: in.LbsFoodForConsumption,
		LbsFoodForFarms:       in.LbsFoodForFarms,
		LbsFoodForWaste:       in.LbsFoodForWaste,
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	donation, err := s.donations.GetByDonorAndListing(ctx, donorID, listingID)
	if err != nil {
		return nil, err
	}
	if err := donation.AttachForm(form); err != nil {
		return nil, err
	}
	donation.IssueReceipt(domain.Receipt{
		ReceiptID:         s.opts.NewID(),
		ListingID:         listingID,
		RecipientID:       in.RecipientID,
		DateIssued:        s.opts.Now(),
		DonationAmountLbs: in.TotalLbsFood,
		DonorName:         in.DonorName,
		RecipientName:     in.RecipientName,
	})
	if err := s.donations.Save(ctx, donation); err != nil {
		return nil, fmt.Errorf("save donation: %w", err)
	}

	s.log.Info().
		Str("donation_id", donation.DonationID).
		Str("form_id", donation.Form.FormID).
		Str("receipt_id", donation.Receipt.ReceiptID).
		Str("recipient_id", in.RecipientID).
		Msg("form created")
	s.opts.Recorder.RecordOperation("form", "create")
	return &FormResult{Form: *donation.Form, Receipt: donation.Receipt}, nil
}

// UpdateForm patches the form filed by recipientID and refreshes the receipt
// amount and date. The recipient of a form never changes.
func (s *DonationService) UpdateForm(ctx context.Context, recipientID, listingID, formID string, patch domain.FormPatch) (*FormResult, error) {
	donation, err := s.donations.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if donation.Form == nil || donation.Form.FormID != formID {
		return nil, fmt.Errorf("%w: form %s on listing %s", domain.ErrNotFound, formID, listingID)
	}
	if err := formOwnedBy(donation.Form, recipientID); err != nil {
		return nil, err
	}
	form := *donation.Form
	patch.Apply(&form)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	donation.Form = &form
	if donation.Receipt != nil {
		donation.Receipt.DonationAmountLbs = form.TotalLbsFood
		donation.Receipt.DateIssued = s.opts.Now()
	}
	if err := s.donations.Save(ctx, donation); err != nil {
		return nil, fmt.Errorf("save donation: %w", err)
	}
	s.log.Info().Str("listing_id", listingID).Str("form_id", formID).Msg("form updated")
	s.opts.Recorder.RecordOperation("form", "update")
	return &FormResult{Form: form, Receipt: donation.Receipt}, nil
}

// DeleteForm clears the form filed by recipientID. The receipt stays on the donation.
func (s *DonationService) DeleteForm(ctx context.Context, recipientID, listingID, formID string) error {
	donation, err := s.donations.GetByListingID(ctx, listingID)
	if err != nil {
		return err
	}
	if donation.Form != nil {
		if donation.Form.FormID != formID {
			return fmt.Errorf("%w: form %s on listing %s", domain.ErrNotFound, formID, listingID)
		}
		if err := formOwnedBy(donation.Form, recipientID); err != nil {
			return err
		}
	}
	if err := donation.RemoveForm(); err != nil {
		return err
	}
	if err := s.donations.Save(ctx, donation); err != nil {
		return fmt.Errorf("save donation: %w", err)
	}
	s.log.Info().Str("listing_id", listingID).Str("form_id", formID).Msg("form deleted")
	s.opts.Recorder.RecordOperation("form", "delete")
	return nil
}

// GetReceiptForListing returns the receipt of the donation that holds the listing.
func (s *DonationService) GetReceiptForListing(ctx context.Context, listingID string) (*domain.Receipt, error) {
	donation, err := s.donations.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if donation.Receipt == nil {
		return nil, fmt.Errorf("%w: receipt for listing %s", domain.ErrNotFound, listingID)
	}
	return donation.Receipt, nil
}

// CreateReceipt issues or overwrites the receipt of the donation matching the
// donor and listing.
func (s *DonationService) CreateReceipt(ctx context.Context, donorID, listingID string, in ReceiptInput) (*domain.Receipt, error) {
	if err := nonNegative("donation_amount_lbs", in.DonationAmountLbs); err != nil {
		return nil, err
	}
	donation, err := s.donations.GetByDonorAndListing(ctx, donorID, listingID)
	if err != nil {
		return nil, err
	}

	receipt := domain.Receipt{
		ReceiptID:         in.ReceiptID,
		ListingID:         listingID,
		RecipientID:       in.RecipientID,
		DateIssued:        s.opts.Now(),
		DonationAmountLbs: in.DonationAmountLbs,
		DonorName:         in.DonorName,
		RecipientName:     in.RecipientName,
	}
	if receipt.ReceiptID == "" {
		receipt.ReceiptID = s.opts.NewID()
	}
	if in.DateIssued != nil && !in.DateIssued.IsZero() {
		receipt.DateIssued = *in.DateIssued
	}
	donation.IssueReceipt(receipt)
	if err := s.donations.Save(ctx, donation); err != nil {
		return nil, fmt.Errorf("save donation: %w", err)
	}
	s.log.Info().Str("donation_id", donation.DonationID).Str("receipt_id", receipt.ReceiptID).Msg("receipt issued")
	s.opts.Recorder.RecordOperation("receipt", "create")
	return donation.Receipt, nil
}

// GetReceipt looks a receipt up by its own id.
func (s *DonationService) GetReceipt(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	donation, err := s.donations.GetByReceiptID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	return donation.Receipt, nil
}

// ListReceipts filters at the store, then sorts and pages the full result.
func (s *DonationService) ListReceipts(ctx context.Context, q domain.ReceiptQuery) ([]domain.Receipt, error) {
	donations, err := s.donations.ListReceipted(ctx, q)
	if err != nil {
		return nil, err
	}
	receipts := make([]domain.Receipt, 0, len(donations))
	for _, d := range donations {
		if d.Receipt != nil {
			receipts = append(receipts, *d.Receipt)
		}
	}

	switch q.SortBy {
	case domain.ReceiptSortNone:
	case domain.ReceiptSortDateIssued:
		slices.SortStableFunc(receipts, func(a, b domain.Receipt) int {
			return b.DateIssued.Compare(a.DateIssued)
		})
	case domain.ReceiptSortDonationAmount:
		slices.SortStableFunc(receipts, func(a, b domain.Receipt) int {
			switch {
			case a.DonationAmountLbs > b.DonationAmountLbs:
				return -1
			case a.DonationAmountLbs < b.DonationAmountLbs:
				return 1
			default:
				return 0
			}
		})
	default:
		return nil, fmt.Errorf("%w: unknown receipt sort %q", domain.ErrValidation, q.SortBy)
	}
	return domain.Window(receipts, q.Page), nil
}

// GetDonation returns the whole donation document.
func (s *DonationService) GetDonation(ctx context.Context, donationID string) (*domain.Donation, error) {
	return s.donations.GetByID(ctx, donationID)
}

// validateForm requires non-negative buckets that together do not exceed the
// claimed total.
func formOwnedBy(f *domain.Form, recipientID string) error {
	if f.RecipientID != recipientID {
		return fmt.Errorf("%w: form %s was filed by another recipient", domain.ErrForbidden, f.FormID)
	}
	return nil
}

func validateForm(f domain.Form) error {
	if f.TotalLbsFood <= 0 {
		return fmt.Errorf("%w: total_lbs_food must be positive", domain.ErrValidation)
	}
	buckets := []struct {
		name string
		v    float64
	}{
		{"lbs_expired_food", f.LbsExpiredFood},
		{"lbs_food_for_consumption", f.LbsFoodForConsumption},
		{"lbs_food_for_farms", f.LbsFoodForFarms},
		{"lbs_food_for_waste", f.LbsFoodForWaste},
	}
	for _, b := range buckets {
		if err := nonNegative(b.name, b.v); err != nil {
			return err
		}
	}
	if f.BreakdownLbs() > f.TotalLbsFood {
		return fmt.Errorf("%w: breakdown %.2f lbs exceeds total_lbs_food %.2f", domain.ErrValidation, f.BreakdownLbs(), f.TotalLbsFood)
	}
	return nil
}
