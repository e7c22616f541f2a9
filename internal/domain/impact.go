package domain

import "time"

// Rating is the star rating a recipient left on one donation.
type Rating struct {
	DonationID string    `json:"donation_id"`
	Stars      int       `json:"stars"`
	Message    string    `json:"message,omitempty"`
	Date       time.Time `json:"date"`
}

// ImpactRecord is the per-donation copy embedded in a donor or recipient document.
type ImpactRecord struct {
	DonationID            string  `json:"donation_id"`
	ReceiptID             string  `json:"receipt_id"`
	TotalLbsFood          float64 `json:"total_lbs_food"`
	LbsFoodForConsumption float64 `json:"lbs_food_for_consumption"`
	LbsFoodForFarms       float64 `json:"lbs_food_for_farms"`
	LbsFoodForWaste       float64 `json:"lbs_food_for_waste"`
	FoodSecurityImpact    int     `json:"food_security_impact"`
	EnvironmentalImpact   float64 `json:"environmental_impact"`
	MonetaryImpact        float64 `json:"monetary_impact"`
	Rating                *Rating `json:"rating,omitempty"`
}

// Rollup is the additive summary over a list of impact records. Donors call it
// impact_log, recipients call it donation_log.
type Rollup struct {
	TotalDonations             int     `json:"total_donations"`
	TotalLbsFood               float64 `json:"total_lbs_food"`
	TotalLbsFoodForConsumption float64 `json:"total_lbs_food_for_consumption"`
	TotalLbsFoodForFarms       float64 `json:"total_lbs_food_for_farms"`
	TotalLbsFoodForWaste       float64 `json:"total_lbs_food_for_waste"`
	TotalFoodSecurityImpact    int     `json:"total_food_security_impact"`
	TotalEnvironmentalImpact   float64 `json:"total_environmental_impact"`
	TotalMonetaryImpact        float64 `json:"total_monetary_impact"`
}

// ImpactPatch carries the optional fields of an impact record update. The
// rating is not patchable here; it has its own operations.
type ImpactPatch struct {
	ReceiptID             *string  `json:"receipt_id"`
	TotalLbsFood          *float64 `json:"total_lbs_food"`
	LbsFoodForConsumption *float64 `json:"lbs_food_for_consumption"`
	LbsFoodForFarms       *float64 `json:"lbs_food_for_farms"`
	LbsFoodForWaste       *float64 `json:"lbs_food_for_waste"`
	FoodSecurityImpact    *int     `json:"food_security_impact"`
	EnvironmentalImpact   *float64 `json:"environmental_impact"`
	MonetaryImpact        *float64 `json:"monetary_impact"`
}

// Empty reports whether the patch carries no field at all.
func (p ImpactPatch) Empty() bool {
	return p.ReceiptID == nil && p.TotalLbsFood == nil && p.LbsFoodForConsumption == nil &&
		p.LbsFoodForFarms == nil && p.LbsFoodForWaste == nil && p.FoodSecurityImpact == nil &&
		p.EnvironmentalImpact == nil && p.MonetaryImpact == nil
}

// Apply copies every present field onto the record.
func (p ImpactPatch) Apply(r *ImpactRecord) {
	if p.ReceiptID != nil {
		r.ReceiptID = *p.ReceiptID
	}
	if p.TotalLbsFood != nil {
		r.TotalLbsFood = *p.TotalLbsFood
	}
	if p.LbsFoodForConsumption != nil {
		r.LbsFoodForConsumption = *p.LbsFoodForConsumption
	}
	if p.LbsFoodForFarms != nil {
		r.LbsFoodForFarms = *p.LbsFoodForFarms
	}
	if p.LbsFoodForWaste != nil {
		r.LbsFoodForWaste = *p.LbsFoodForWaste
	}
	if p.FoodSecurityImpact != nil {
		r.FoodSecurityImpact = *p.FoodSecurityImpact
	}
	if p.EnvironmentalImpact != nil {
		r.EnvironmentalImpact = *p.EnvironmentalImpact
	}
	if p.MonetaryImpact != nil {
		r.MonetaryImpact = *p.MonetaryImpact
	}
}

func findRecord(records []ImpactRecord, donationID string) *ImpactRecord {
	for i := range records {
		if records[i].DonationID == donationID {
			return &records[i]
		}
	}
	return nil
}
