package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"foodshare/internal/aggregate"
	"foodshare/internal/domain"
)

const (
	MinStars = 1
	MaxStars = 5
)

// DonorInput is the payload of a new donor profile.
type DonorInput struct {
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	Email              string         `json:"email"`
	PhoneNumber        string         `json:"phone_number"`
	TaxID              string         `json:"tax_id"`
	CompanyAssociation string         `json:"company_association"`
	Address            domain.Address `json:"address"`
}

// RatingPatch carries the optional fields of a rating update.
type RatingPatch struct {
	Stars   *int    `json:"stars"`
	Message *string `json:"message"`
}

// DonorService owns donor profiles, their ratings and their impact log.
// Every mutation recomputes the affected aggregate before the donor is saved.
type DonorService struct {
	donors domain.DonorRepository
	log    zerolog.Logger
	opts   Options
}

// NewDonorService builds the donor ledger over a donor repository.
func NewDonorService(donors domain.DonorRepository, log zerolog.Logger, opts Options) *DonorService {
	return &DonorService{
		donors: donors,
		log:    log.With().Str("component", "donors").Logger(),
		opts:   opts.withDefaults(),
	}
}

// CreateDonor registers a donor profile. Emails are unique across donors.
func (s *DonorService) CreateDonor(ctx context.Context, in DonorInput) (*domain.Donor, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	for _, f := range []struct{ name, v string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
	} {
		if err := required(f.name, f.v); err != nil {
			return nil, err
		}
	}
	if _, err := s.donors.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: donor with email %s already exists", domain.ErrConflict, in.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	donor := &domain.Donor{
		DonorID:            s.opts.NewID(),
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Email:              in.Email,
		PhoneNumber:        in.PhoneNumber,
		TaxID:              in.TaxID,
		CompanyAssociation: in.CompanyAssociation,
		Address:            in.Address,
		Donations:          []domain.ImpactRecord{},
	}
	if err := s.donors.Save(ctx, donor); err != nil {
		return nil, fmt.Errorf("save donor: %w", err)
	}
	s.log.Info().Str("donor_id", donor.DonorID).Msg("donor created")
	s.opts.Recorder.RecordOperation("donor", "create")
	return donor, nil
}

func (s *DonorService) GetDonor(ctx context.Context, donorID string) (*domain.Donor, error) {
	return s.donors.GetByID(ctx, donorID)
}

// GetDonorByEmail matches the normalized email.
func (s *DonorService) GetDonorByEmail(ctx context.Context, email string) (*domain.Donor, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: donor email", domain.ErrNotFound)
	}
	return s.donors.GetByEmail(ctx, email)
}

func (s *DonorService) ListDonors(ctx context.Context, q domain.DonorQuery) ([]domain.Donor, error) {
	q.Page = q.Page.Normalize()
	return s.donors.List(ctx, q)
}

// UpdateDonor patches contact details. Blank strings leave the field unchanged.
func (s *DonorService) UpdateDonor(ctx context.Context, donorID string, patch domain.DonorPatch) (*domain.Donor, error) {
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	if patch.PhoneNumber != nil && *patch.PhoneNumber != "" {
		donor.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Address != nil {
		donor.Address = *patch.Address
	}
	if patch.CompanyAssociation != nil && *patch.CompanyAssociation != "" {
		donor.CompanyAssociation = *patch.CompanyAssociation
	}
	if err := s.donors.Save(ctx, donor); err != nil {
		return nil, fmt.Errorf("save donor: %w", err)
	}
	s.log.Info().Str("donor_id", donorID).Msg("donor updated")
	s.opts.Recorder.RecordOperation("donor", "update")
	return donor, nil
}

func (s *DonorService) DeleteDonor(ctx context.Context, donorID string) error {
	if err := s.donors.Delete(ctx, donorID); err != nil {
		return err
	}
	s.log.Info().Str("donor_id", donorID).Msg("donor deleted")
	s.opts.Recorder.RecordOperation("donor", "delete")
	return nil
}

func (s *DonorService) GetRatings(ctx context.Context, donorID string) (domain.Ratings, error) {
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return domain.Ratings{}, err
	}
	return donor.Ratings, nil
}

// CreateRating rates one of the donor's donations. Rating an already rated
// donation replaces the previous stars instead of counting twice.
func (s *DonorService) CreateRating(ctx context.Context, donorID, donationID string, stars int, message string) (domain.Ratings, error) {
	if err := validateStars(stars); err != nil {
		return domain.Ratings{}, err
	}
	donor, record, err := s.loadRecord(ctx, donorID, donationID)
	if err != nil {
		return domain.Ratings{}, err
	}

	if record.Rating != nil {
		donor.Ratings.Stars = aggregate.Replace(donor.Ratings.Stars, donor.Ratings.TotalRatings,
			float64(record.Rating.Stars), float64(stars))
	} else {
		donor.Ratings.Stars, donor.Ratings.TotalRatings = aggregate.Add(donor.Ratings.Stars,
			donor.Ratings.TotalRatings, float64(stars))
	}
	record.Rating = &domain.Rating{
		DonationID: donationID,
		Stars:      stars,
		Message:    message,
		Date:       s.opts.Now(),
	}

	if err := s.donors.Save(ctx, donor); err != nil {
		return domain.Ratings{}, fmt.Errorf("save donor: %w", err)
	}
	s.log.Info().Str("donor_id", donorID).Str("donation_id", donationID).Int("stars", stars).Msg("rating created")
	s.opts.Recorder.RecordOperation("rating", "create")
	return donor.Ratings, nil
}

// UpdateRating replaces the stars at an unchanged rating count and refreshes
// the message and date.
func (s *DonorService) UpdateRating(ctx context.Context, donorID, donationID string, patch RatingPatch) (domain.Ratings, *domain.Rating, error) {
	if patch.Stars != nil {
		if err := validateStars(*patch.Stars); err != nil {
			return domain.Ratings{}, nil, err
		}
	}
	donor, record, err := s.loadRecord(ctx, donorID, donationID)
	if err != nil {
		return domain.Ratings{}, nil, err
	}
	if record.Rating == nil {
		return domain.Ratings{}, nil, fmt.Errorf("%w: donation %s has no rating", domain.ErrInvalidState, donationID)
	}

	rating := *record.Rating
	if patch.Stars != nil {
		donor.Ratings.Stars = aggregate.Replace(donor.Ratings.Stars, donor.Ratings.TotalRatings,
			float64(rating.Stars), float64(*patch.Stars))
		rating.Stars = *patch.Stars
	}
	if patch.Message != nil {
		rating.Message = *patch.Message
	}
	rating.Date = s.opts.Now()
	record.Rating = &rating

	if err := s.donors.Save(ctx, donor); err != nil {
		return domain.Ratings{}, nil, fmt.Errorf("save donor: %w", err)
	}
	s.log.Info().Str("donor_id", donorID).Str("donation_id", donationID).Msg("rating updated")
	s.opts.Recorder.RecordOperation("rating", "update")
	return donor.Ratings, &rating, nil
}

// DeleteRating removes the rating and its contribution to the average.
func (s *DonorService) DeleteRating(ctx context.Context, donorID, donationID string) (domain.Ratings, error) {
	donor, record, err := s.loadRecord(ctx, donorID, donationID)
	if err != nil {
		return domain.Ratings{}, err
	}
	if record.Rating == nil {
		return domain.Ratings{}, fmt.Errorf("%w: donation %s has no rating", domain.ErrInvalidState, donationID)
	}

	donor.Ratings.Stars, donor.Ratings.TotalRatings = aggregate.Remove(donor.Ratings.Stars,
		donor.Ratings.TotalRatings, float64(record.Rating.Stars))
	record.Rating = nil

	if err := s.donors.Save(ctx, donor); err != nil {
		return domain.Ratings{}, fmt.Errorf("save donor: %w", err)
	}
	s.log.Info().Str("donor_id", donorID).Str("donation_id", donationID).Msg("rating deleted")
	s.opts.Recorder.RecordOperation("rating", "delete")
	return donor.Ratings, nil
}

// GetImpactLog returns the stored rollup; it is recomputed on every write.
func (s *DonorService) GetImpactLog(ctx context.Context, donorID string) (domain.Rollup, error) {
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return domain.Rollup{}, err
	}
	return donor.ImpactLog, nil
}

func (s *DonorService) GetImpactRecord(ctx context.Context, donorID, donationID string) (*domain.ImpactRecord, error) {
	_, record, err := s.loadRecord(ctx, donorID, donationID)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// AddImpactRecord appends a donation record and recomputes the impact log.
func (s *DonorService) AddImpactRecord(ctx context.Context, donorID string, in domain.ImpactRecord) (*domain.ImpactRecord, error) {
	record, err := newImpactRecord(in, s.opts.NewID)
	if err != nil {
		return nil, err
	}
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return nil, err
	}
	donations, err := appendImpactRecord(donor.Donations, record)
	if err != nil {
		return nil, err
	}
	donor.Donations = donations
	donor.ImpactLog = aggregate.Rollup(donor.Donations)

	if err := s.donors.Save(ctx, donor); err != nil {
		return nil, fmt.Errorf("save donor: %w", err)
	}
	s.log.Info().Str("donor_id", donorID).Str("donation_id", record.DonationID).Msg("impact record added")
	s.opts.Recorder.RecordOperation("impact_log", "add")
	return &record, nil
}

// UpdateImpactRecord patches one donation record and recomputes the impact log.
func (s *DonorService) UpdateImpactRecord(ctx context.Context, donorID, donationID string, patch domain.ImpactPatch) (*domain.ImpactRecord, error) {
	donor, record, err := s.loadRecord(ctx, donorID, donationID)
	if err != nil {
		return nil, err
	}
	updated, err := patchImpactRecord(record, patch)
	if err != nil {
		return nil, err
	}
	*record = updated
	donor.ImpactLog = aggregate.Rollup(donor.Donations)

	if err := s.donors.Save(ctx, donor); err != nil {
		return nil, fmt.Errorf("save donor: %w", err)
	}
	s.log.Info().Str("donor_id", donorID).Str("donation_id", donationID).Msg("impact record updated")
	s.opts.Recorder.RecordOperation("impact_log", "update")
	return &updated, nil
}

// loadRecord returns the donor together with a pointer into its donation list.
func (s *DonorService) loadRecord(ctx context.Context, donorID, donationID string) (*domain.Donor, *domain.ImpactRecord, error) {
	donor, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return nil, nil, err
	}
	record := donor.Donation(donationID)
	if record == nil {
		return nil, nil, fmt.Errorf("%w: donation %s for donor %s", domain.ErrNotFound, donationID, donorID)
	}
	return donor, record, nil
}

func validateStars(stars int) error {
	if stars < MinStars || stars > MaxStars {
		return fmt.Errorf("%w: stars must be between %d and %d", domain.ErrValidation, MinStars, MaxStars)
	}
	return nil
}
