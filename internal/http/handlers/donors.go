package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"foodshare/internal/domain"
	"foodshare/internal/service"
)

type ratingRequest struct {
	DonationID string `json:"donation_id"`
	Stars      *int   `json:"stars"`
	Message    string `json:"message"`
}

type ratingUpdateResponse struct {
	Ratings domain.Ratings `json:"ratings"`
	Rating  *domain.Rating `json:"rating"`
}

// impactRecordRequest keeps the figures optional so missing ones can be
// reported instead of silently defaulting to zero.
type impactRecordRequest struct {
	DonationID            string   `json:"donation_id"`
	ReceiptID             string   `json:"receipt_id"`
	TotalLbsFood          *float64 `json:"total_lbs_food"`
	LbsFoodForConsumption *float64 `json:"lbs_food_for_consumption"`
	LbsFoodForFarms       *float64 `json:"lbs_food_for_farms"`
	LbsFoodForWaste       *float64 `json:"lbs_food_for_waste"`
	FoodSecurityImpact    *int     `json:"food_security_impact"`
	EnvironmentalImpact   *float64 `json:"environmental_impact"`
	MonetaryImpact        *float64 `json:"monetary_impact"`
}

func (req impactRecordRequest) record() (domain.ImpactRecord, error) {
	var missing []string
	num := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	rec := domain.ImpactRecord{
		DonationID:            req.DonationID,
		ReceiptID:             req.ReceiptID,
		TotalLbsFood:          num("total_lbs_food", req.TotalLbsFood),
		LbsFoodForConsumption: num("lbs_food_for_consumption", req.LbsFoodForConsumption),
		LbsFoodForFarms:       num("lbs_food_for_farms", req.LbsFoodForFarms),
		LbsFoodForWaste:       num("lbs_food_for_waste", req.LbsFoodForWaste),
		EnvironmentalImpact:   num("environmental_impact", req.EnvironmentalImpact),
		MonetaryImpact:        num("monetary_impact", req.MonetaryImpact),
	}
	if req.FoodSecurityImpact == nil {
		missing = append(missing, "food_security_impact")
	} else {
		rec.FoodSecurityImpact = *req.FoodSecurityImpact
	}
	if len(missing) > 0 {
		return domain.ImpactRecord{}, fmt.Errorf("%w: missing required fields: %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return rec, nil
}

func (a *App) DonorsList(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	donors, err := a.Donors.ListDonors(r.Context(), domain.DonorQuery{
		DonorID:         q.Get("id"),
		Name:            q.Get("name"),
		Email:           q.Get("email"),
		SortByDonations: flagParam(q.Get("numberdonations")),
		Page:            page,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, donors)
}

// DonorsCreate registers the caller's own donor profile.
func (a *App) DonorsCreate(w http.ResponseWriter, r *http.Request) {
	var in service.DonorInput
	if err := a.decode(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.requireEmail(r, in.Email); err != nil {
		a.fail(w, r, err)
		return
	}
	donor, err := a.Donors.CreateDonor(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, donor)
}

func (a *App) DonorGet(w http.ResponseWriter, r *http.Request) {
	donor, err := a.Donors.GetDonor(r.Context(), chi.URLParam(r, "donorID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, donor)
}

func (a *App) DonorUpdate(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorID")
	if err := a.requireDonorOwner(r, donorID); err != nil {
		a.fail(w, r, err)
		return
	}
	var patch domain.DonorPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	donor, err := a.Donors.UpdateDonor(r.Context(), donorID, patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, donor)
}

func (a *App) DonorDelete(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorID")
	if err := a.requireDonorOwner(r, donorID); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Donors.DeleteDonor(r.Context(), donorID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) requireDonorOwner(r *http.Request, donorID string) error {
	donor, err := a.Donors.GetDonor(r.Context(), donorID)
	if err != nil {
		return err
	}
	return a.requireEmail(r, donor.Email)
}

func (a *App) RatingsGet(w http.ResponseWriter, r *http.Request) {
	ratings, err := a.Donors.GetRatings(r.Context(), chi.URLParam(r, "donorID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, ratings)
}

func (a *App) RatingCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := a.callerRecipient(r); err != nil {
		a.fail(w, r, err)
		return
	}
	var req ratingRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.DonationID) == "" || req.Stars == nil {
		a.fail(w, r, fmt.Errorf("%w: missing required fields: donation_id, stars", domain.ErrValidation))
		return
	}
	ratings, err := a.Donors.CreateRating(r.Context(), chi.URLParam(r, "donorID"), req.DonationID, *req.Stars, req.Message)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, ratings)
}

func (a *App) RatingUpdate(w http.ResponseWriter, r *http.Request) {
	if _, err := a.callerRecipient(r); err != nil {
		a.fail(w, r, err)
		return
	}
	var patch service.RatingPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	if patch.Stars == nil && patch.Message == nil {
		a.fail(w, r, fmt.Errorf("%w: no update data provided", domain.ErrValidation))
		return
	}
	ratings, rating, err := a.Donors.UpdateRating(r.Context(), chi.URLParam(r, "donorID"), chi.URLParam(r, "donationID"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, ratingUpdateResponse{Ratings: ratings, Rating: rating})
}

func (a *App) RatingDelete(w http.ResponseWriter, r *http.Request) {
	if _, err := a.callerRecipient(r); err != nil {
		a.fail(w, r, err)
		return
	}
	ratings, err := a.Donors.DeleteRating(r.Context(), chi.URLParam(r, "donorID"), chi.URLParam(r, "donationID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, ratings)
}

func (a *App) ImpactLogGet(w http.ResponseWriter, r *http.Request) {
	rollup, err := a.Donors.GetImpactLog(r.Context(), chi.URLParam(r, "donorID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"impact_log": rollup})
}

func (a *App) ImpactRecordGet(w http.ResponseWriter, r *http.Request) {
	record, err := a.Donors.GetImpactRecord(r.Context(), chi.URLParam(r, "donorID"), chi.URLParam(r, "donationID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, record)
}

func (a *App) ImpactRecordCreate(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorID")
	if err := a.requireDonorOwner(r, donorID); err != nil {
		a.fail(w, r, err)
		return
	}
	var req impactRecordRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	in, err := req.record()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	record, err := a.Donors.AddImpactRecord(r.Context(), donorID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, record)
}

func (a *App) ImpactRecordUpdate(w http.ResponseWriter, r *http.Request) {
	donorID := chi.URLParam(r, "donorID")
	if err := a.requireDonorOwner(r, donorID); err != nil {
		a.fail(w, r, err)
		return
	}
	var patch domain.ImpactPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	record, err := a.Donors.UpdateImpactRecord(r.Context(), donorID, chi.URLParam(r, "donationID"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, record)
}
