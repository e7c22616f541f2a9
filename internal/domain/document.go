package domain

import (
	"context"
	"encoding/json"
)

// Collection names a family of root documents.
type Collection string

const (
	CollectionDonations  Collection = "donations"
	CollectionDonors     Collection = "donors"
	CollectionRecipients Collection = "recipients"
)

// Document is a stored root aggregate. Version is zero for a document that has
// never been saved and increases by one on every successful save.
type Document struct {
	Collection Collection
	ID         string
	Version    int64
	Body       json.RawMessage
}

// FilterOp enumerates the comparisons a document store must support.
type FilterOp string

const (
	OpEq           FilterOp = "eq"
	OpLte          FilterOp = "lte"
	OpExists       FilterOp = "exists"
	OpContainsFold FilterOp = "contains_fold"
)

// ValueKind tells the store how to compare a field.
type ValueKind string

const (
	KindText   ValueKind = "text"
	KindNumber ValueKind = "number"
	KindTime   ValueKind = "time"
)

// Filter matches a dotted field path inside the document body, e.g.
// "listing.listing_id".
type Filter struct {
	Path  string
	Op    FilterOp
	Value any
	Kind  ValueKind
}

// SortKey orders results by a dotted field path.
type SortKey struct {
	Path string
	Kind ValueKind
	Desc bool
}

// Query selects documents. All Filters must match; when AnyOf is non-empty at
// least one of its filters must match too. Without sort keys documents come
// back in insertion order. Limit <= 0 means unlimited.
type Query struct {
	Filters []Filter
	AnyOf   []Filter
	Sort    []SortKey
	Skip    int
	Limit   int
}

// DocumentStore is the persistence collaborator every repository is built on.
// Save must fail with ErrConflict when the stored version differs from
// doc.Version, and bumps doc.Version on success.
type DocumentStore interface {
	FindByID(ctx context.Context, collection Collection, id string) (*Document, error)
	FindOne(ctx context.Context, collection Collection, filters ...Filter) (*Document, error)
	FindMany(ctx context.Context, collection Collection, q Query) ([]Document, error)
	Save(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, collection Collection, id string) error
}
