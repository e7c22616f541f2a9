// Package aggregate holds the pure arithmetic behind donor ratings and the
// impact/donation log rollups.
package aggregate

import "foodshare/internal/domain"

// Add folds a new value into a running average.
func Add(avg float64, count int, value float64) (float64, int) {
	if count < 0 {
		count = 0
	}
	next := count + 1
	return (avg*float64(count) + value) / float64(next), next
}

// Replace swaps one contribution for another at an unchanged count.
func Replace(avg float64, count int, old, value float64) float64 {
	if count <= 0 {
		return 0
	}
	return (avg*float64(count) - old + value) / float64(count)
}

// Remove takes a contribution out of a running average. Removing the last
// contribution resets the average to zero.
func Remove(avg float64, count int, value float64) (float64, int) {
	if count <= 0 {
		return 0, 0
	}
	if count == 1 {
		return 0, 0
	}
	return (avg*float64(count) - value) / float64(count-1), count - 1
}

// Mean averages values from scratch, zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// RatedStars collects the stars of every rated record.
func RatedStars(records []domain.ImpactRecord) []float64 {
	stars := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Rating != nil {
			stars = append(stars, float64(r.Rating.Stars))
		}
	}
	return stars
}

// Rollup sums every record field into a fresh summary. It must be re-run over
// the whole list after any insert, update or delete.
func Rollup(records []domain.ImpactRecord) domain.Rollup {
	out := domain.Rollup{TotalDonations: len(records)}
	for _, r := range records {
		out.TotalLbsFood += r.TotalLbsFood
		out.TotalLbsFoodForConsumption += r.LbsFoodForConsumption
		out.TotalLbsFoodForFarms += r.LbsFoodForFarms
		out.TotalLbsFoodForWaste += r.LbsFoodForWaste
		out.TotalFoodSecurityImpact += r.FoodSecurityImpact
		out.TotalEnvironmentalImpact += r.EnvironmentalImpact
		out.TotalMonetaryImpact += r.MonetaryImpact
	}
	return out
}
