package repo

import (
	"context"

	"foodshare/internal/domain"
)

// RecipientRepository implements domain.RecipientRepository on a document store.
type RecipientRepository struct {
	store domain.DocumentStore
}

// NewRecipientRepository creates a new recipient repo.
func NewRecipientRepository(store domain.DocumentStore) *RecipientRepository {
	return &RecipientRepository{store: store}
}

func (r *RecipientRepository) GetByID(ctx context.Context, recipientID string) (*domain.Recipient, error) {
	doc, err := r.store.FindByID(ctx, domain.CollectionRecipients, recipientID)
	if err != nil {
		return nil, err
	}
	return decodeRecipient(doc)
}

func (r *RecipientRepository) GetByEmail(ctx context.Context, email string) (*domain.Recipient, error) {
	doc, err := r.store.FindOne(ctx, domain.CollectionRecipients, textEq("email", email))
	if err != nil {
		return nil, err
	}
	return decodeRecipient(doc)
}

func (r *RecipientRepository) List(ctx context.Context, rq domain.RecipientQuery) ([]domain.Recipient, error) {
	var q domain.Query
	if rq.RecipientID != "" {
		q.Filters = append(q.Filters, textEq("recipient_id", rq.RecipientID))
	}
	if rq.TaxStatus != "" {
		q.Filters = append(q.Filters, textEq("tax_status.status", rq.TaxStatus))
	}
	if rq.ComplianceStatus != "" {
		q.Filters = append(q.Filters, textEq("compliance_status.status", rq.ComplianceStatus))
	}
	if rq.Name != "" {
		q.AnyOf = []domain.Filter{
			containsFold("first_name", rq.Name),
			containsFold("last_name", rq.Name),
			containsFold("organization_name", rq.Name),
		}
	}
	if rq.SortByDonations {
		q.Sort = []domain.SortKey{{Path: "donation_log.total_donations", Kind: domain.KindNumber, Desc: true}}
	}
	pageWindow(&q, rq.Page)

	docs, err := r.store.FindMany(ctx, domain.CollectionRecipients, q)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Recipient, 0, len(docs))
	for i := range docs {
		rec, err := decodeRecipient(&docs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, nil
}

func (r *RecipientRepository) Save(ctx context.Context, recipient *domain.Recipient) error {
	doc, err := encodeDocument(domain.CollectionRecipients, recipient.RecipientID, recipient.Version, recipient)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, doc); err != nil {
		return err
	}
	recipient.Version = doc.Version
	return nil
}

func (r *RecipientRepository) Delete(ctx context.Context, recipientID string) error {
	return r.store.Delete(ctx, domain.CollectionRecipients, recipientID)
}

func decodeRecipient(doc *domain.Document) (*domain.Recipient, error) {
	rec, err := decodeDocument[domain.Recipient](doc)
	if err != nil {
		return nil, err
	}
	rec.Version = doc.Version
	return rec, nil
}

var _ domain.RecipientRepository = (*RecipientRepository)(nil)
