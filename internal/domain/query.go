package domain

import "time"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a 1-indexed page window.
type Page struct {
	Number int
	Size   int
}

// Normalize applies defaults and bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of items preceding the page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}

// Window slices items to the page, after the full result set was materialized.
func Window[T any](items []T, p Page) []T {
	p = p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ListingSort enumerates listing orderings.
type ListingSort string

const (
	ListingSortNone         ListingSort = ""
	ListingSortDateListed   ListingSort = "date_listed"
	ListingSortTotalLbsFood ListingSort = "total_lbs_food"
)

// ListingQuery filters listings. ExpiresBefore is an inclusive upper bound.
type ListingQuery struct {
	FoodType      string
	ExpiresBefore *time.Time
	SortBy        ListingSort
	Page          Page
}

// ReceiptSort enumerates receipt orderings.
type ReceiptSort string

const (
	ReceiptSortNone           ReceiptSort = ""
	ReceiptSortDateIssued     ReceiptSort = "date_issued"
	ReceiptSortDonationAmount ReceiptSort = "donation_amount_lbs"
)

// ReceiptQuery filters receipts by the parties involved.
type ReceiptQuery struct {
	DonorID     string
	RecipientID string
	SortBy      ReceiptSort
	Page        Page
}

// DonorQuery filters donors. Name and Email match case-insensitive substrings.
type DonorQuery struct {
	DonorID         string
	Name            string
	Email           string
	SortByDonations bool
	Page            Page
}

// RecipientQuery filters recipients. Name also matches the organization name.
type RecipientQuery struct {
	RecipientID      string
	Name             string
	TaxStatus        string
	ComplianceStatus string
	SortByDonations  bool
	Page             Page
}
