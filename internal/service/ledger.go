package service

import (
	"fmt"

	"foodshare/internal/domain"
)

// newImpactRecord fills generated ids and checks the record before it is
// appended to a donor or recipient list. Ratings are managed separately and
// never accepted here.
func newImpactRecord(in domain.ImpactRecord, newID func() string) (domain.ImpactRecord, error) {
	if in.DonationID == "" {
		in.DonationID = newID()
	}
	if in.ReceiptID == "" {
		in.ReceiptID = newID()
	}
	in.Rating = nil
	if err := validateImpactRecord(in); err != nil {
		return domain.ImpactRecord{}, err
	}
	return in, nil
}

func validateImpactRecord(r domain.ImpactRecord) error {
	checks := []struct {
		name string
		v    float64
	}{
		{"total_lbs_food", r.TotalLbsFood},
		{"lbs_food_for_consumption", r.LbsFoodForConsumption},
		{"lbs_food_for_farms", r.LbsFoodForFarms},
		{"lbs_food_for_waste", r.LbsFoodForWaste},
		{"food_security_impact", float64(r.FoodSecurityImpact)},
		{"environmental_impact", r.EnvironmentalImpact},
		{"monetary_impact", r.MonetaryImpact},
	}
	for _, c := range checks {
		if err := nonNegative(c.name, c.v); err != nil {
			return err
		}
	}
	return nil
}

func appendImpactRecord(records []domain.ImpactRecord, rec domain.ImpactRecord) ([]domain.ImpactRecord, error) {
	for _, existing := range records {
		if existing.DonationID == rec.DonationID {
			return nil, fmt.Errorf("%w: donation %s already recorded", domain.ErrValidation, rec.DonationID)
		}
	}
	return append(records, rec), nil
}

// patchImpactRecord applies the patch to a copy and validates the result.
func patchImpactRecord(rec *domain.ImpactRecord, patch domain.ImpactPatch) (domain.ImpactRecord, error) {
	if patch.Empty() {
		return domain.ImpactRecord{}, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	updated := *rec
	patch.Apply(&updated)
	if err := validateImpactRecord(updated); err != nil {
		return domain.ImpactRecord{}, err
	}
	return updated, nil
}
