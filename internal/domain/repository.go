package domain

import (
	"context"
	"time"
)

// DonationRepository persists donation documents.
type DonationRepository interface {
	GetByID(ctx context.Context, donationID string) (*Donation, error)
	GetByListingID(ctx context.Context, listingID string) (*Donation, error)
	GetByDonorAndListing(ctx context.Context, donorID, listingID string) (*Donation, error)
	GetByReceiptID(ctx context.Context, receiptID string) (*Donation, error)
	ListListed(ctx context.Context, q ListingQuery) ([]Donation, error)
	ListReceipted(ctx context.Context, q ReceiptQuery) ([]Donation, error)
	Save(ctx context.Context, donation *Donation) error
}

// DonorRepository persists donor documents.
type DonorRepository interface {
	GetByID(ctx context.Context, donorID string) (*Donor, error)
	GetByEmail(ctx context.Context, email string) (*Donor, error)
	List(ctx context.Context, q DonorQuery) ([]Donor, error)
	Save(ctx context.Context, donor *Donor) error
	Delete(ctx context.Context, donorID string) error
}

// RecipientRepository persists recipient documents.
type RecipientRepository interface {
	GetByID(ctx context.Context, recipientID string) (*Recipient, error)
	GetByEmail(ctx context.Context, email string) (*Recipient, error)
	List(ctx context.Context, q RecipientQuery) ([]Recipient, error)
	Save(ctx context.Context, recipient *Recipient) error
	Delete(ctx context.Context, recipientID string) error
}

// UserRepository persists login accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, email string) error
}

// RevocationStore remembers revoked token ids until they would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
