package repo

import (
	"context"

	"foodshare/internal/domain"
)

// DonationRepository implements domain.DonationRepository on a document store.
type DonationRepository struct {
	store domain.DocumentStore
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(store domain.DocumentStore) *DonationRepository {
	return &DonationRepository{store: store}
}

func (r *DonationRepository) GetByID(ctx context.Context, donationID string) (*domain.Donation, error) {
	doc, err := r.store.FindByID(ctx, domain.CollectionDonations, donationID)
	if err != nil {
		return nil, err
	}
	return decodeDonation(doc)
}

func (r *DonationRepository) GetByListingID(ctx context.Context, listingID string) (*domain.Donation, error) {
	return r.findOne(ctx, textEq("listing.listing_id", listingID))
}

func (r *DonationRepository) GetByDonorAndListing(ctx context.Context, donorID, listingID string) (*domain.Donation, error) {
	return r.findOne(ctx, textEq("donor_id", donorID), textEq("listing.listing_id", listingID))
}

func (r *DonationRepository) GetByReceiptID(ctx context.Context, receiptID string) (*domain.Donation, error) {
	return r.findOne(ctx, textEq("receipt.receipt_id", receiptID))
}

// ListListed returns one page of donations that currently carry a listing.
func (r *DonationRepository) ListListed(ctx context.Context, lq domain.ListingQuery) ([]domain.Donation, error) {
	q := domain.Query{Filters: []domain.Filter{exists("listing")}}
	if lq.FoodType != "" {
		q.Filters = append(q.Filters, textEq("listing.food_type", lq.FoodType))
	}
	if lq.ExpiresBefore != nil {
		q.Filters = append(q.Filters, domain.Filter{
			Path:  "listing.expiration_date",
			Op:    domain.OpLte,
			Value: *lq.ExpiresBefore,
			Kind:  domain.KindTime,
		})
	}
	switch lq.SortBy {
	case domain.ListingSortDateListed:
		q.Sort = []domain.SortKey{{Path: "listing.date_listed", Kind: domain.KindTime}}
	case domain.ListingSortTotalLbsFood:
		q.Sort = []domain.SortKey{{Path: "listing.total_lbs_food", Kind: domain.KindNumber, Desc: true}}
	}
	pageWindow(&q, lq.Page)
	return r.findMany(ctx, q)
}

// ListReceipted returns every donation carrying a receipt for the given
// parties. Ordering and paging are left to the caller.
func (r *DonationRepository) ListReceipted(ctx context.Context, rq domain.ReceiptQuery) ([]domain.Donation, error) {
	q := domain.Query{Filters: []domain.Filter{exists("receipt")}}
	if rq.DonorID != "" {
		q.Filters = append(q.Filters, textEq("receipt.donor_id", rq.DonorID))
	}
	if rq.RecipientID != "" {
		q.Filters = append(q.Filters, textEq("receipt.recipient_id", rq.RecipientID))
	}
	return r.findMany(ctx, q)
}

func (r *DonationRepository) Save(ctx context.Context, donation *domain.Donation) error {
	doc, err := encodeDocument(domain.CollectionDonations, donation.DonationID, donation.Version, donation)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, doc); err != nil {
		return err
	}
	donation.Version = doc.Version
	return nil
}

func (r *DonationRepository) findOne(ctx context.Context, filters ...domain.Filter) (*domain.Donation, error) {
	doc, err := r.store.FindOne(ctx, domain.CollectionDonations, filters...)
	if err != nil {
		return nil, err
	}
	return decodeDonation(doc)
}

func (r *DonationRepository) findMany(ctx context.Context, q domain.Query) ([]domain.Donation, error) {
	docs, err := r.store.FindMany(ctx, domain.CollectionDonations, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Donation, 0, len(docs))
	for i := range docs {
		d, err := decodeDonation(&docs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, nil
}

func decodeDonation(doc *domain.Document) (*domain.Donation, error) {
	d, err := decodeDocument[domain.Donation](doc)
	if err != nil {
		return nil, err
	}
	d.Version = doc.Version
	return d, nil
}

var _ domain.DonationRepository = (*DonationRepository)(nil)
