package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"foodshare/internal/domain"
	"foodshare/internal/service"
)

const dateLayout = "2006-01-02"

type listingRequest struct {
	FoodType                  string  `json:"food_type"`
	TotalLbsFood              float64 `json:"total_lbs_food"`
	RefrigerationRequirements string  `json:"refrigeration_requirements"`
	ExpirationDate            string  `json:"expiration_date"`
}

type listingPatchRequest struct {
	FoodType                  *string  `json:"food_type"`
	TotalLbsFood              *float64 `json:"total_lbs_food"`
	RefrigerationRequirements *string  `json:"refrigeration_requirements"`
	ExpirationDate            *string  `json:"expiration_date"`
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrValidation, field)
}

func (a *App) ListingsList(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	query := domain.ListingQuery{
		FoodType: q.Get("food_type"),
		SortBy:   domain.ListingSort(q.Get("sort_by")),
		Page:     page,
	}
	if raw := q.Get("expiration_date"); raw != "" {
		before, err := parseDate("expiration_date", raw)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		query.ExpiresBefore = &before
	}
	listings, err := a.Donations.ListListings(r.Context(), query)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, listings)
}

func (a *App) ListingsCreate(w http.ResponseWriter, r *http.Request) {
	donor, err := a.callerDonor(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req listingRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	expires, err := parseDate("expiration_date", req.ExpirationDate)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	listing, err := a.Donations.CreateListing(r.Context(), donor.DonorID, service.ListingInput{
		FoodType:                  req.FoodType,
		TotalLbsFood:              req.TotalLbsFood,
		RefrigerationRequirements: req.RefrigerationRequirements,
		ExpirationDate:            expires,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, listing)
}

func (a *App) ListingGet(w http.ResponseWriter, r *http.Request) {
	listing, err := a.Donations.GetListing(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, listing)
}

func (a *App) ListingUpdate(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if err := a.requireListingOwner(r, listingID); err != nil {
		a.fail(w, r, err)
		return
	}
	var req listingPatchRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	patch := domain.ListingPatch{
		FoodType:                  req.FoodType,
		TotalLbsFood:              req.TotalLbsFood,
		RefrigerationRequirements: req.RefrigerationRequirements,
	}
	if req.ExpirationDate != nil {
		expires, err := parseDate("expiration_date", *req.ExpirationDate)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		patch.ExpirationDate = &expires
	}
	listing, err := a.Donations.UpdateListing(r.Context(), listingID, patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, listing)
}

func (a *App) ListingDelete(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	if err := a.requireListingOwner(r, listingID); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Donations.DeleteListing(r.Context(), listingID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) requireListingOwner(r *http.Request, listingID string) error {
	donor, err := a.callerDonor(r)
	if err != nil {
		return err
	}
	listing, err := a.Donations.GetListing(r.Context(), listingID)
	if err != nil {
		return err
	}
	if listing.DonorID != donor.DonorID {
		return fmt.Errorf("%w: listing %s belongs to another donor", domain.ErrForbidden, listingID)
	}
	return nil
}

func (a *App) FormGet(w http.ResponseWriter, r *http.Request) {
	form, err := a.Donations.GetForm(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, form)
}

// FormCreate files the caller's claim against a listing. The recipient is the
// caller; the donor is whoever owns the listing.
func (a *App) FormCreate(w http.ResponseWriter, r *http.Request) {
	recipient, err := a.callerRecipient(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	listingID := chi.URLParam(r, "listingID")
	listing, err := a.Donations.GetListing(r.Context(), listingID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var in service.FormInput
	if err := a.decode(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	in.RecipientID = recipient.RecipientID
	if strings.TrimSpace(in.RecipientName) == "" {
		in.RecipientName = recipient.FullName()
	}
	result, err := a.Donations.CreateForm(r.Context(), listing.DonorID, listingID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, result)
}

// FormUpdate and FormDelete act only on forms the caller filed.
func (a *App) FormUpdate(w http.ResponseWriter, r *http.Request) {
	recipient, err := a.callerRecipient(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var patch domain.FormPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	result, err := a.Donations.UpdateForm(r.Context(), recipient.RecipientID, chi.URLParam(r, "listingID"), chi.URLParam(r, "formID"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) FormDelete(w http.ResponseWriter, r *http.Request) {
	recipient, err := a.callerRecipient(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Donations.DeleteForm(r.Context(), recipient.RecipientID, chi.URLParam(r, "listingID"), chi.URLParam(r, "formID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) ListingReceiptGet(w http.ResponseWriter, r *http.Request) {
	receipt, err := a.Donations.GetReceiptForListing(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, receipt)
}

func (a *App) ListingReceiptCreate(w http.ResponseWriter, r *http.Request) {
	donor, err := a.callerDonor(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var in service.ReceiptInput
	if err := a.decode(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	receipt, err := a.Donations.CreateReceipt(r.Context(), donor.DonorID, chi.URLParam(r, "listingID"), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, receipt)
}

func (a *App) ReceiptsList(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	receipts, err := a.Donations.ListReceipts(r.Context(), domain.ReceiptQuery{
		DonorID:     q.Get("donorid"),
		RecipientID: q.Get("recipientid"),
		SortBy:      domain.ReceiptSort(q.Get("sort_by")),
		Page:        page,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, receipts)
}

func (a *App) ReceiptGet(w http.ResponseWriter, r *http.Request) {
	receipt, err := a.Donations.GetReceipt(r.Context(), chi.URLParam(r, "receiptID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, receipt)
}

func (a *App) DonationGet(w http.ResponseWriter, r *http.Request) {
	donation, err := a.Donations.GetDonation(r.Context(), chi.URLParam(r, "donationID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, donation)
}
