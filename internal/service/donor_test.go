package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/aggregate"
	"foodshare/internal/domain"
)

func createDonor(t *testing.T, f *fixture, email string) *domain.Donor {
	t.Helper()
	donor, err := f.donors.CreateDonor(context.Background(), DonorInput{
		FirstName: "Dana",
		LastName:  "Donor",
		Email:     email,
	})
	require.NoError(t, err)
	return donor
}

func addDonations(t *testing.T, f *fixture, donorID string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := f.donors.AddImpactRecord(context.Background(), donorID, domain.ImpactRecord{
			DonationID:   id,
			TotalLbsFood: 10,
		})
		require.NoError(t, err)
	}
}

func TestCreateDonorRejectsDuplicateEmail(t *testing.T) {
	f := newFixture()
	createDonor(t, f, "dana@example.com")

	_, err := f.donors.CreateDonor(context.Background(), DonorInput{FirstName: "D", LastName: "D", Email: "dana@example.com"})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.donors.CreateDonor(context.Background(), DonorInput{FirstName: "D", Email: "other@example.com"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestDonorEmailIsCaseInsensitive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, " Dana@Example.com ")
	assert.Equal(t, "dana@example.com", donor.Email)

	found, err := f.donors.GetDonorByEmail(ctx, "DANA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, donor.DonorID, found.DonorID)

	_, err = f.donors.CreateDonor(ctx, DonorInput{FirstName: "D", LastName: "D", Email: "DANA@EXAMPLE.COM"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRatingsScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, "dana@example.com")
	addDonations(t, f, donor.DonorID, "don-a", "don-b")

	_, err := f.donors.CreateRating(ctx, donor.DonorID, "don-a", 5, "great")
	require.NoError(t, err)
	ratings, err := f.donors.CreateRating(ctx, donor.DonorID, "don-b", 3, "")
	require.NoError(t, err)
	assert.Equal(t, domain.Ratings{Stars: 4.0, TotalRatings: 2}, ratings)

	ratings, err = f.donors.DeleteRating(ctx, donor.DonorID, "don-b")
	require.NoError(t, err)
	assert.Equal(t, domain.Ratings{Stars: 5.0, TotalRatings: 1}, ratings)

	ratings, err = f.donors.DeleteRating(ctx, donor.DonorID, "don-a")
	require.NoError(t, err)
	assert.Equal(t, domain.Ratings{Stars: 0.0, TotalRatings: 0}, ratings)

	stored, err := f.donors.GetRatings(ctx, donor.DonorID)
	require.NoError(t, err)
	assert.Equal(t, ratings, stored)
}

func TestCreateRatingUnknownDonation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, "dana@example.com")
	addDonations(t, f, donor.DonorID, "don-a")
	_, err := f.donors.CreateRating(ctx, donor.DonorID, "don-a", 4, "")
	require.NoError(t, err)

	_, err = f.donors.CreateRating(ctx, donor.DonorID, "don-missing", 2, "")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.donors.CreateRating(ctx, "no-such-donor", "don-a", 2, "")
	require.ErrorIs(t, err, domain.ErrNotFound)

	ratings, err := f.donors.GetRatings(ctx, donor.DonorID)
	require.NoError(t, err)
	assert.Equal(t, domain.Ratings{Stars: 4, TotalRatings: 1}, ratings, "ratings unchanged")
}

func TestCreateRatingValidatesStars(t *testing.T) {
	f := newFixture()
	donor := createDonor(t, f, "dana@example.com")
	addDonations(t, f, donor.DonorID, "don-a")

	for _, stars := range []int{0, 6, -1} {
		_, err := f.donors.CreateRating(context.Background(), donor.DonorID, "don-a", stars, "")
		require.ErrorIs(t, err, domain.ErrValidation, "stars=%d", stars)
	}
}

func TestCreateRatingTwiceReplaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, "dana@example.com")
	addDonations(t, f, donor.DonorID, "don-a", "don-b")

	_, err := f.donors.CreateRating(ctx, donor.DonorID, "don-a", 2, "")
	require.NoError(t, err)
	_, err = f.donors.CreateRating(ctx, donor.DonorID, "don-b", 4, "")
	require.NoError(t, err)
	ratings, err := f.donors.CreateRating(ctx, donor.DonorID, "don-a", 5, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, 2, ratings.TotalRatings)
	assert.InDelta(t, 4.5, ratings.Stars, 1e-9)
}

func TestUpdateRating(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, "dana@example.com")
	addDonations(t, f, donor.DonorID, "don-a", "don-b")

	_, _, err := f.donors.UpdateRating(ctx, donor.DonorID, "don-a", RatingPatch{Stars: ptr(4)})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.donors.CreateRating(ctx, donor.DonorID, "don-a", 5, "first")
	require.NoError(t, err)
	_, err = f.donors.CreateRating(ctx, donor.DonorID, "don-b", 3, "")
	require.NoError(t, err)

	ratings, rating, err := f.donors.UpdateRating(ctx, donor.DonorID, "don-a", RatingPatch{Stars: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, domain.Ratings{Stars: 2.0, TotalRatings: 2}, ratings)
	assert.Equal(t, 1, rating.Stars)
	assert.Equal(t, "first", rating.Message, "message kept when not patched")

	_, rating, err = f.donors.UpdateRating(ctx, donor.DonorID, "don-a", RatingPatch{Message: ptr("edited")})
	require.NoError(t, err)
	assert.Equal(t, "edited", rating.Message)
	assert.Equal(t, 1, rating.Stars)

	_, _, err = f.donors.UpdateRating(ctx, donor.DonorID, "don-a", RatingPatch{Stars: ptr(9)})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.donors.DeleteRating(ctx, donor.DonorID, "don-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRatingsMatchRecomputationFromScratch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, "dana@example.com")
	ids := []string{"d1", "d2", "d3", "d4", "d5", "d6"}
	addDonations(t, f, donor.DonorID, ids...)

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 200; step++ {
		id := ids[rng.Intn(len(ids))]
		stars := 1 + rng.Intn(5)
		switch rng.Intn(3) {
		case 0:
			_, err := f.donors.CreateRating(ctx, donor.DonorID, id, stars, "")
			require.NoError(t, err)
		case 1:
			_, _, err := f.donors.UpdateRating(ctx, donor.DonorID, id, RatingPatch{Stars: &stars})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInvalidState)
			}
		case 2:
			_, err := f.donors.DeleteRating(ctx, donor.DonorID, id)
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInvalidState)
			}
		}

		current, err := f.donors.GetDonor(ctx, donor.DonorID)
		require.NoError(t, err)
		rated := aggregate.RatedStars(current.Donations)
		require.Equal(t, len(rated), current.Ratings.TotalRatings, "step %d", step)
		require.InDelta(t, aggregate.Mean(rated), current.Ratings.Stars, 1e-9, "step %d", step)
	}
}

func TestImpactLogTracksDonations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, "dana@example.com")

	added, err := f.donors.AddImpactRecord(ctx, donor.DonorID, domain.ImpactRecord{
		TotalLbsFood:          20,
		LbsFoodForConsumption: 15,
		LbsFoodForWaste:       5,
		FoodSecurityImpact:    3,
		EnvironmentalImpact:   1.5,
		MonetaryImpact:        40,
		Rating:                &domain.Rating{Stars: 5},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.DonationID, "donation id generated")
	assert.NotEmpty(t, added.ReceiptID, "receipt id generated")
	assert.Nil(t, added.Rating, "ratings are only set through rating operations")

	_, err = f.donors.AddImpactRecord(ctx, donor.DonorID, domain.ImpactRecord{DonationID: "don-b", TotalLbsFood: 5, LbsFoodForFarms: 5, FoodSecurityImpact: 1})
	require.NoError(t, err)

	_, err = f.donors.AddImpactRecord(ctx, donor.DonorID, domain.ImpactRecord{DonationID: "don-b"})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.donors.AddImpactRecord(ctx, donor.DonorID, domain.ImpactRecord{MonetaryImpact: -1})
	require.ErrorIs(t, err, domain.ErrValidation)

	log, err := f.donors.GetImpactLog(ctx, donor.DonorID)
	require.NoError(t, err)
	assert.Equal(t, domain.Rollup{
		TotalDonations:             2,
		TotalLbsFood:               25,
		TotalLbsFoodForConsumption: 15,
		TotalLbsFoodForFarms:       5,
		TotalLbsFoodForWaste:       5,
		TotalFoodSecurityImpact:    4,
		TotalEnvironmentalImpact:   1.5,
		TotalMonetaryImpact:        40,
	}, log)

	updated, err := f.donors.UpdateImpactRecord(ctx, donor.DonorID, "don-b", domain.ImpactPatch{TotalLbsFood: ptr(8.0), MonetaryImpact: ptr(10.0)})
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.TotalLbsFood)
	assert.Equal(t, 5.0, updated.LbsFoodForFarms)

	current, err := f.donors.GetDonor(ctx, donor.DonorID)
	require.NoError(t, err)
	assert.Equal(t, aggregate.Rollup(current.Donations), current.ImpactLog)
	assert.Equal(t, 28.0, current.ImpactLog.TotalLbsFood)
	assert.Equal(t, 50.0, current.ImpactLog.TotalMonetaryImpact)

	_, err = f.donors.UpdateImpactRecord(ctx, donor.DonorID, "don-b", domain.ImpactPatch{})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.donors.UpdateImpactRecord(ctx, donor.DonorID, "don-missing", domain.ImpactPatch{TotalLbsFood: ptr(1.0)})
	require.ErrorIs(t, err, domain.ErrNotFound)

	record, err := f.donors.GetImpactRecord(ctx, donor.DonorID, "don-b")
	require.NoError(t, err)
	assert.Equal(t, 8.0, record.TotalLbsFood)
}

func TestUpdateAndDeleteDonor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	donor := createDonor(t, f, "dana@example.com")

	updated, err := f.donors.UpdateDonor(ctx, donor.DonorID, domain.DonorPatch{
		PhoneNumber: ptr("555-0100"),
		Address:     &domain.Address{City: "Springfield"},
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.PhoneNumber)
	assert.Equal(t, "Springfield", updated.Address.City)

	byEmail, err := f.donors.GetDonorByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, donor.DonorID, byEmail.DonorID)

	require.NoError(t, f.donors.DeleteDonor(ctx, donor.DonorID))
	_, err = f.donors.GetDonor(ctx, donor.DonorID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.ErrorIs(t, f.donors.DeleteDonor(ctx, donor.DonorID), domain.ErrNotFound)
}

func TestListDonors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a, err := f.donors.CreateDonor(ctx, DonorInput{FirstName: "Alice", LastName: "Baker", Email: "alice@farm.example"})
	require.NoError(t, err)
	b, err := f.donors.CreateDonor(ctx, DonorInput{FirstName: "Bob", LastName: "Alistair", Email: "bob@store.example"})
	require.NoError(t, err)
	c, err := f.donors.CreateDonor(ctx, DonorInput{FirstName: "Cy", LastName: "Young", Email: "cy@farm.example"})
	require.NoError(t, err)
	addDonations(t, f, c.DonorID, "c1", "c2")
	addDonations(t, f, b.DonorID, "b1")

	byName, err := f.donors.ListDonors(ctx, domain.DonorQuery{Name: "ali"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.DonorID, b.DonorID}, donorIDs(byName))

	byEmail, err := f.donors.ListDonors(ctx, domain.DonorQuery{Email: "FARM"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.DonorID, c.DonorID}, donorIDs(byEmail))

	sorted, err := f.donors.ListDonors(ctx, domain.DonorQuery{SortByDonations: true})
	require.NoError(t, err)
	assert.Equal(t, []string{c.DonorID, b.DonorID, a.DonorID}, donorIDs(sorted))

	paged, err := f.donors.ListDonors(ctx, domain.DonorQuery{Page: domain.Page{Number: 2, Size: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{c.DonorID}, donorIDs(paged))
}

func donorIDs(items []domain.Donor) []string {
	out := make([]string, 0, len(items))
	for _, d := range items {
		out = append(out, d.DonorID)
	}
	return out
}
