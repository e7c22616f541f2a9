package repo

import (
	"context"

	"foodshare/internal/domain"
)

var sortByTotalDonations = domain.SortKey{Path: "impact_log.total_donations", Kind: domain.KindNumber, Desc: true}

// DonorRepository implements domain.DonorRepository on a document store.
type DonorRepository struct {
	store domain.DocumentStore
}

// NewDonorRepository creates a new donor repo.
func NewDonorRepository(store domain.DocumentStore) *DonorRepository {
	return &DonorRepository{store: store}
}

func (r *DonorRepository) GetByID(ctx context.Context, donorID string) (*domain.Donor, error) {
	doc, err := r.store.FindByID(ctx, domain.CollectionDonors, donorID)
	if err != nil {
		return nil, err
	}
	return decodeDonor(doc)
}

func (r *DonorRepository) GetByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	doc, err := r.store.FindOne(ctx, domain.CollectionDonors, textEq("email", email))
	if err != nil {
		return nil, err
	}
	return decodeDonor(doc)
}

func (r *DonorRepository) List(ctx context.Context, dq domain.DonorQuery) ([]domain.Donor, error) {
	var q domain.Query
	if dq.DonorID != "" {
		q.Filters = append(q.Filters, textEq("donor_id", dq.DonorID))
	}
	if dq.Email != "" {
		q.Filters = append(q.Filters, containsFold("email", dq.Email))
	}
	if dq.Name != "" {
		q.AnyOf = []domain.Filter{containsFold("first_name", dq.Name), containsFold("last_name", dq.Name)}
	}
	if dq.SortByDonations {
		q.Sort = []domain.SortKey{sortByTotalDonations}
	}
	pageWindow(&q, dq.Page)

	docs, err := r.store.FindMany(ctx, domain.CollectionDonors, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Donor, 0, len(docs))
	for i := range docs {
		d, err := decodeDonor(&docs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, nil
}

func (r *DonorRepository) Save(ctx context.Context, donor *domain.Donor) error {
	doc, err := encodeDocument(domain.CollectionDonors, donor.DonorID, donor.Version, donor)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, doc); err != nil {
		return err
	}
	donor.Version = doc.Version
	return nil
}

func (r *DonorRepository) Delete(ctx context.Context, donorID string) error {
	return r.store.Delete(ctx, domain.CollectionDonors, donorID)
}

func decodeDonor(doc *domain.Document) (*domain.Donor, error) {
	d, err := decodeDocument[domain.Donor](doc)
	if err != nil {
		return nil, err
	}
	d.Version = doc.Version
	return d, nil
}

var _ domain.DonorRepository = (*DonorRepository)(nil)
