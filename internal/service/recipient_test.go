package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/aggregate"
	"foodshare/internal/domain"
)

func createRecipient(t *testing.T, f *fixture, email string) *domain.Recipient {
	t.Helper()
	recipient, err := f.recipients.CreateRecipient(context.Background(), RecipientInput{
		FirstName:        "Riley",
		LastName:         "Recipient",
		OrganizationName: "Eastside Pantry",
		Email:            email,
		EIN:              "12-3456789",
	})
	require.NoError(t, err)
	return recipient
}

func TestCreateRecipientDefaults(t *testing.T) {
	f := newFixture()
	recipient := createRecipient(t, f, "riley@pantry.example")

	assert.Equal(t, domain.StatusPending, recipient.TaxStatus.Status)
	assert.Nil(t, recipient.TaxStatus.VerificationDate)
	assert.Equal(t, domain.StatusPending, recipient.ComplianceStatus.Status)
	assert.Nil(t, recipient.ComplianceStatus.VerificationDate)
	assert.Empty(t, recipient.Donations)

	_, err := f.recipients.CreateRecipient(context.Background(), RecipientInput{
		FirstName: "R", LastName: "R", OrganizationName: "O", Email: "riley@pantry.example",
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.recipients.CreateRecipient(context.Background(), RecipientInput{
		FirstName: "R", LastName: "R", OrganizationName: "O", Email: "Riley@Pantry.Example",
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	found, err := f.recipients.GetRecipientByEmail(context.Background(), " RILEY@pantry.example")
	require.NoError(t, err)
	assert.Equal(t, recipient.RecipientID, found.RecipientID)

	_, err = f.recipients.CreateRecipient(context.Background(), RecipientInput{FirstName: "R", LastName: "R", Email: "x@example.com"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestDonationLogTracksEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	recipient := createRecipient(t, f, "riley@pantry.example")

	_, err := f.recipients.AddDonationLogEntry(ctx, recipient.RecipientID, domain.ImpactRecord{
		DonationID: "don-a", TotalLbsFood: 12, LbsFoodForConsumption: 12, FoodSecurityImpact: 2,
	})
	require.NoError(t, err)
	_, err = f.recipients.AddDonationLogEntry(ctx, recipient.RecipientID, domain.ImpactRecord{
		DonationID: "don-b", TotalLbsFood: 3, LbsFoodForWaste: 3, MonetaryImpact: 7.5,
	})
	require.NoError(t, err)
	_, err = f.recipients.AddDonationLogEntry(ctx, recipient.RecipientID, domain.ImpactRecord{DonationID: "don-a"})
	require.ErrorIs(t, err, domain.ErrValidation)

	log, err := f.recipients.ListDonationLog(ctx, recipient.RecipientID)
	require.NoError(t, err)
	require.Len(t, log.Donations, 2)
	assert.Equal(t, 2, log.Summary.TotalDonations)
	assert.Equal(t, 15.0, log.Summary.TotalLbsFood)
	assert.Equal(t, 3.0, log.Summary.TotalLbsFoodForWaste)
	assert.Equal(t, 7.5, log.Summary.TotalMonetaryImpact)

	_, err = f.recipients.UpdateDonationLogEntry(ctx, recipient.RecipientID, "don-a", domain.ImpactPatch{
		TotalLbsFood: ptr(20.0), FoodSecurityImpact: ptr(5),
	})
	require.NoError(t, err)

	current, err := f.recipients.GetRecipient(ctx, recipient.RecipientID)
	require.NoError(t, err)
	assert.Equal(t, aggregate.Rollup(current.Donations), current.DonationLog)
	assert.Equal(t, 23.0, current.DonationLog.TotalLbsFood)
	assert.Equal(t, 5, current.DonationLog.TotalFoodSecurityImpact)

	entry, err := f.recipients.GetDonationLogEntry(ctx, recipient.RecipientID, "don-a")
	require.NoError(t, err)
	assert.Equal(t, 20.0, entry.TotalLbsFood)

	_, err = f.recipients.GetDonationLogEntry(ctx, recipient.RecipientID, "don-x")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.recipients.UpdateDonationLogEntry(ctx, recipient.RecipientID, "don-a", domain.ImpactPatch{LbsFoodForFarms: ptr(-2.0)})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestStatusUpdatesStampVerificationDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	recipient := createRecipient(t, f, "riley@pantry.example")

	f.now = fixedNow.Add(48 * time.Hour)
	tax, err := f.recipients.UpdateTaxStatus(ctx, recipient.RecipientID, "Exempt")
	require.NoError(t, err)
	assert.Equal(t, "Exempt", tax.Status)
	require.NotNil(t, tax.VerificationDate)
	assert.True(t, tax.VerificationDate.Equal(f.now))

	compliance, err := f.recipients.GetComplianceStatus(ctx, recipient.RecipientID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, compliance.Status, "statuses update independently")

	compliance, err = f.recipients.UpdateComplianceStatus(ctx, recipient.RecipientID, "anything goes")
	require.NoError(t, err)
	assert.Equal(t, "anything goes", compliance.Status)

	_, err = f.recipients.UpdateTaxStatus(ctx, recipient.RecipientID, "   ")
	require.ErrorIs(t, err, domain.ErrValidation)

	stored, err := f.recipients.GetTaxStatus(ctx, recipient.RecipientID)
	require.NoError(t, err)
	assert.Equal(t, "Exempt", stored.Status)

	_, err = f.recipients.UpdateTaxStatus(ctx, "missing", "Exempt")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRecipientProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	recipient := createRecipient(t, f, "riley@pantry.example")

	updated, err := f.recipients.UpdateRecipient(ctx, recipient.RecipientID, domain.RecipientPatch{
		PhoneNumber:      ptr("555-0199"),
		ComplianceStatus: ptr("Verified"),
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0199", updated.PhoneNumber)
	assert.Equal(t, "Verified", updated.ComplianceStatus.Status)
	require.NotNil(t, updated.ComplianceStatus.VerificationDate)
	assert.Equal(t, domain.StatusPending, updated.TaxStatus.Status)

	_, err = f.recipients.UpdateRecipient(ctx, recipient.RecipientID, domain.RecipientPatch{TaxStatus: ptr("")})
	require.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.recipients.DeleteRecipient(ctx, recipient.RecipientID))
	_, err = f.recipients.GetRecipientByEmail(ctx, "riley@pantry.example")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListRecipients(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a, err := f.recipients.CreateRecipient(ctx, RecipientInput{FirstName: "Ann", LastName: "Lee", OrganizationName: "Harbor Kitchen", Email: "ann@example.com"})
	require.NoError(t, err)
	b, err := f.recipients.CreateRecipient(ctx, RecipientInput{FirstName: "Ben", LastName: "Ortiz", OrganizationName: "Hill Shelter", Email: "ben@example.com"})
	require.NoError(t, err)
	_, err = f.recipients.UpdateTaxStatus(ctx, b.RecipientID, "Exempt")
	require.NoError(t, err)
	_, err = f.recipients.AddDonationLogEntry(ctx, b.RecipientID, domain.ImpactRecord{TotalLbsFood: 1})
	require.NoError(t, err)

	byOrg, err := f.recipients.ListRecipients(ctx, domain.RecipientQuery{Name: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.RecipientID}, recipientIDs(byOrg))

	exempt, err := f.recipients.ListRecipients(ctx, domain.RecipientQuery{TaxStatus: "Exempt"})
	require.NoError(t, err)
	assert.Equal(t, []string{b.RecipientID}, recipientIDs(exempt))

	sorted, err := f.recipients.ListRecipients(ctx, domain.RecipientQuery{SortByDonations: true})
	require.NoError(t, err)
	assert.Equal(t, []string{b.RecipientID, a.RecipientID}, recipientIDs(sorted))
}

func recipientIDs(items []domain.Recipient) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.RecipientID)
	}
	return out
}
