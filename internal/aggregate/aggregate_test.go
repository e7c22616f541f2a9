package aggregate

import (
	"math"
	"testing"

	"foodshare/internal/domain"
)

const epsilon = 1e-9

func TestRunningAverageMatchesMean(t *testing.T) {
	var (
		avg   float64
		count int
		seen  []float64
	)
	for _, v := range []float64{5, 3, 4, 1, 2, 5, 5} {
		avg, count = Add(avg, count, v)
		seen = append(seen, v)
		if count != len(seen) {
			t.Fatalf("count = %d, want %d", count, len(seen))
		}
		if math.Abs(avg-Mean(seen)) > epsilon {
			t.Fatalf("avg = %v, want %v", avg, Mean(seen))
		}
	}
}

func TestReplaceKeepsCount(t *testing.T) {
	avg, count := Add(0, 0, 5)
	avg, count = Add(avg, count, 3)
	avg = Replace(avg, count, 3, 1)
	if math.Abs(avg-3) > epsilon {
		t.Fatalf("avg = %v, want 3", avg)
	}
	if Replace(4, 0, 4, 5) != 0 {
		t.Fatalf("replace on empty average must be zero")
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name      string
		avg       float64
		count     int
		value     float64
		wantAvg   float64
		wantCount int
	}{
		{name: "two ratings", avg: 4, count: 2, value: 3, wantAvg: 5, wantCount: 1},
		{name: "last rating resets", avg: 5, count: 1, value: 5, wantAvg: 0, wantCount: 0},
		{name: "empty stays empty", avg: 0, count: 0, value: 4, wantAvg: 0, wantCount: 0},
		{name: "three ratings", avg: 3, count: 3, value: 1, wantAvg: 4, wantCount: 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			avg, count := Remove(tc.avg, tc.count, tc.value)
			if math.Abs(avg-tc.wantAvg) > epsilon || count != tc.wantCount {
				t.Fatalf("Remove() = (%v, %d), want (%v, %d)", avg, count, tc.wantAvg, tc.wantCount)
			}
		})
	}
}

func TestRollupSumsEveryField(t *testing.T) {
	records := []domain.ImpactRecord{
		{DonationID: "a", TotalLbsFood: 100, LbsFoodForConsumption: 80, LbsFoodForFarms: 15, LbsFoodForWaste: 5, FoodSecurityImpact: 80, EnvironmentalImpact: 95, MonetaryImpact: 200},
		{DonationID: "b", TotalLbsFood: 50, LbsFoodForConsumption: 40, LbsFoodForFarms: 5, LbsFoodForWaste: 5, FoodSecurityImpact: 40, EnvironmentalImpact: 45.5, MonetaryImpact: 120.25},
	}
	got := Rollup(records)
	want := domain.Rollup{
		TotalDonations:             2,
		TotalLbsFood:               150,
		TotalLbsFoodForConsumption: 120,
		TotalLbsFoodForFarms:       20,
		TotalLbsFoodForWaste:       10,
		TotalFoodSecurityImpact:    120,
		TotalEnvironmentalImpact:   140.5,
		TotalMonetaryImpact:        320.25,
	}
	if got != want {
		t.Fatalf("Rollup() = %+v, want %+v", got, want)
	}
	if again := Rollup(records); again != got {
		t.Fatalf("Rollup is not idempotent: %+v vs %+v", again, got)
	}
	if empty := Rollup(nil); empty != (domain.Rollup{}) {
		t.Fatalf("Rollup(nil) = %+v, want zero value", empty)
	}
}

func TestRatedStarsSkipsUnrated(t *testing.T) {
	records := []domain.ImpactRecord{
		{DonationID: "a", Rating: &domain.Rating{Stars: 5}},
		{DonationID: "b"},
		{DonationID: "c", Rating: &domain.Rating{Stars: 3}},
	}
	stars := RatedStars(records)
	if len(stars) != 2 || stars[0] != 5 || stars[1] != 3 {
		t.Fatalf("RatedStars() = %v", stars)
	}
}
