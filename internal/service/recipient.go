package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"foodshare/internal/aggregate"
	"foodshare/internal/domain"
)

// RecipientInput is the payload of a new recipient profile.
type RecipientInput struct {
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	OrganizationName string         `json:"organization_name"`
	Email            string         `json:"email"`
	PhoneNumber      string         `json:"phone_number"`
	Address          domain.Address `json:"address"`
	EIN              string         `json:"ein"`
}

// DonationLog is the recipient's donation list with its rollup.
type DonationLog struct {
	Donations []domain.ImpactRecord `json:"donations"`
	Summary   domain.Rollup         `json:"donation_log"`
}

// RecipientService owns recipient profiles, their donation log and their
// tax and compliance verification.
type RecipientService struct {
	recipients domain.RecipientRepository
	log        zerolog.Logger
	opts       Options
}

// NewRecipientService builds the recipient ledger over a recipient repository.
func NewRecipientService(recipients domain.RecipientRepository, log zerolog.Logger, opts Options) *RecipientService {
	return &RecipientService{
		recipients: recipients,
		log:        log.With().Str("component", "recipients").Logger(),
		opts:       opts.withDefaults(),
	}
}

// CreateRecipient registers a recipient with both statuses pending.
func (s *RecipientService) CreateRecipient(ctx context.Context, in RecipientInput) (*domain.Recipient, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	for _, f := range []struct{ name, v string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"organization_name", in.OrganizationName},
		{"email", in.Email},
	} {
		if err := required(f.name, f.v); err != nil {
			return nil, err
		}
	}
	if _, err := s.recipients.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: recipient with email %s already exists", domain.ErrConflict, in.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	recipient := &domain.Recipient{
		RecipientID:      s.opts.NewID(),
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		OrganizationName: in.OrganizationName,
		Email:            in.Email,
		PhoneNumber:      in.PhoneNumber,
		Address:          in.Address,
		EIN:              in.EIN,
		TaxStatus:        domain.VerificationStatus{Status: domain.StatusPending},
		ComplianceStatus: domain.VerificationStatus{Status: domain.StatusPending},
		Donations:        []domain.ImpactRecord{},
	}
	if err := s.recipients.Save(ctx, recipient); err != nil {
		return nil, fmt.Errorf("save recipient: %w", err)
	}
	s.log.Info().Str("recipient_id", recipient.RecipientID).Msg("recipient created")
	s.opts.Recorder.RecordOperation("recipient", "create")
	return recipient, nil
}

func (s *RecipientService) GetRecipient(ctx context.Context, recipientID string) (*domain.Recipient, error) {
	return s.recipients.GetByID(ctx, recipientID)
}

// GetRecipientByEmail matches the normalized email.
func (s *RecipientService) GetRecipientByEmail(ctx context.Context, email string) (*domain.Recipient, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: recipient email", domain.ErrNotFound)
	}
	return s.recipients.GetByEmail(ctx, email)
}

func (s *RecipientService) ListRecipients(ctx context.Context, q domain.RecipientQuery) ([]domain.Recipient, error) {
	q.Page = q.Page.Normalize()
	return s.recipients.List(ctx, q)
}

// UpdateRecipient patches contact details and statuses. A status change
// stamps its verification date.
func (s *RecipientService) UpdateRecipient(ctx context.Context, recipientID string, patch domain.RecipientPatch) (*domain.Recipient, error) {
	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if patch.PhoneNumber != nil && *patch.PhoneNumber != "" {
		recipient.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Address != nil {
		recipient.Address = *patch.Address
	}
	if patch.TaxStatus != nil {
		if recipient.TaxStatus, err = s.verify(*patch.TaxStatus, "tax_status"); err != nil {
			return nil, err
		}
	}
	if patch.ComplianceStatus != nil {
		if recipient.ComplianceStatus, err = s.verify(*patch.ComplianceStatus, "compliance_status"); err != nil {
			return nil, err
		}
	}
	if err := s.recipients.Save(ctx, recipient); err != nil {
		return nil, fmt.Errorf("save recipient: %w", err)
	}
	s.log.Info().Str("recipient_id", recipientID).Msg("recipient updated")
	s.opts.Recorder.RecordOperation("recipient", "update")
	return recipient, nil
}

func (s *RecipientService) DeleteRecipient(ctx context.Context, recipientID string) error {
	if err := s.recipients.Delete(ctx, recipientID); err != nil {
		return err
	}
	s.log.Info().Str("recipient_id", recipientID).Msg("recipient deleted")
	s.opts.Recorder.RecordOperation("recipient", "delete")
	return nil
}

// ListDonationLog returns every donation record together with the stored rollup.
func (s *RecipientService) ListDonationLog(ctx context.Context, recipientID string) (*DonationLog, error) {
	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	donations := recipient.Donations
	if donations == nil {
		donations = []domain.ImpactRecord{}
	}
	return &DonationLog{Donations: donations, Summary: recipient.DonationLog}, nil
}

func (s *RecipientService) GetDonationLogEntry(ctx context.Context, recipientID, donationID string) (*domain.ImpactRecord, error) {
	_, record, err := s.loadRecord(ctx, recipientID, donationID)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// AddDonationLogEntry appends a donation record and recomputes the donation log.
func (s *RecipientService) AddDonationLogEntry(ctx context.Context, recipientID string, in domain.ImpactRecord) (*domain.ImpactRecord, error) {
	record, err := newImpactRecord(in, s.opts.NewID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	donations, err := appendImpactRecord(recipient.Donations, record)
	if err != nil {
		return nil, err
	}
	recipient.Donations = donations
	recipient.DonationLog = aggregate.Rollup(recipient.Donations)

	if err := s.recipients.Save(ctx, recipient); err != nil {
		return nil, fmt.Errorf("save recipient: %w", err)
	}
	s.log.Info().Str("recipient_id", recipientID).Str("donation_id", record.DonationID).Msg("donation log entry added")
	s.opts.Recorder.RecordOperation("donation_log", "add")
	return &record, nil
}

// UpdateDonationLogEntry patches one donation record and recomputes the donation log.
func (s *RecipientService) UpdateDonationLogEntry(ctx context.Context, recipientID, donationID string, patch domain.ImpactPatch) (*domain.ImpactRecord, error) {
	recipient, record, err := s.loadRecord(ctx, recipientID, donationID)
	if err != nil {
		return nil, err
	}
	updated, err := patchImpactRecord(record, patch)
	if err != nil {
		return nil, err
	}
	*record = updated
	recipient.DonationLog = aggregate.Rollup(recipient.Donations)

	if err := s.recipients.Save(ctx, recipient); err != nil {
		return nil, fmt.Errorf("save recipient: %w", err)
	}
	s.log.Info().Str("recipient_id", recipientID).Str("donation_id", donationID).Msg("donation log entry updated")
	s.opts.Recorder.RecordOperation("donation_log", "update")
	return &updated, nil
}

func (s *RecipientService) GetTaxStatus(ctx context.Context, recipientID string) (domain.VerificationStatus, error) {
	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return domain.VerificationStatus{}, err
	}
	return recipient.TaxStatus, nil
}

// UpdateTaxStatus sets the tax-exempt status and stamps its verification date.
func (s *RecipientService) UpdateTaxStatus(ctx context.Context, recipientID, status string) (domain.VerificationStatus, error) {
	return s.updateStatus(ctx, recipientID, status, "tax_status", func(r *domain.Recipient) *domain.VerificationStatus {
		return &r.TaxStatus
	})
}

func (s *RecipientService) GetComplianceStatus(ctx context.Context, recipientID string) (domain.VerificationStatus, error) {
	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return domain.VerificationStatus{}, err
	}
	return recipient.ComplianceStatus, nil
}

// UpdateComplianceStatus sets the compliance status and stamps its verification date.
func (s *RecipientService) UpdateComplianceStatus(ctx context.Context, recipientID, status string) (domain.VerificationStatus, error) {
	return s.updateStatus(ctx, recipientID, status, "compliance_status", func(r *domain.Recipient) *domain.VerificationStatus {
		return &r.ComplianceStatus
	})
}

func (s *RecipientService) updateStatus(ctx context.Context, recipientID, status, field string, target func(*domain.Recipient) *domain.VerificationStatus) (domain.VerificationStatus, error) {
	verified, err := s.verify(status, field)
	if err != nil {
		return domain.VerificationStatus{}, err
	}
	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return domain.VerificationStatus{}, err
	}
	*target(recipient) = verified
	if err := s.recipients.Save(ctx, recipient); err != nil {
		return domain.VerificationStatus{}, fmt.Errorf("save recipient: %w", err)
	}
	s.log.Info().Str("recipient_id", recipientID).Str(field, verified.Status).Msg("status updated")
	s.opts.Recorder.RecordOperation("recipient", "update_"+field)
	return verified, nil
}

// verify builds a status stamped with the current time. Status text is free
// form but must not be blank.
func (s *RecipientService) verify(status, field string) (domain.VerificationStatus, error) {
	status = strings.TrimSpace(status)
	if err := required(field, status); err != nil {
		return domain.VerificationStatus{}, err
	}
	now := s.opts.Now()
	return domain.VerificationStatus{Status: status, VerificationDate: &now}, nil
}

func (s *RecipientService) loadRecord(ctx context.Context, recipientID, donationID string) (*domain.Recipient, *domain.ImpactRecord, error) {
	recipient, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return nil, nil, err
	}
	record := recipient.Donation(donationID)
	if record == nil {
		return nil, nil, fmt.Errorf("%w: donation %s for recipient %s", domain.ErrNotFound, donationID, recipientID)
	}
	return recipient, record, nil
}
