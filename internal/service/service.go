// Package service implements the donation lifecycle and the donor and
// recipient ledgers on top of the repository contracts.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"foodshare/internal/domain"
)

// Recorder receives one call per successful mutation. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordOperation(entity, operation string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}

// Options carries collaborators shared by every service.
type Options struct {
	Recorder Recorder
	Now      func() time.Time
	NewID    func() string
}

func (o Options) withDefaults() Options {
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// NormalizeRefrigeration title-cases the value and checks it against the
// accepted requirements.
func NormalizeRefrigeration(value string) (string, error) {
	// Casers carry state and are not shared between goroutines.
	normalized := cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(value)))
	for _, allowed := range domain.RefrigerationRequirements {
		if normalized == allowed {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("%w: refrigeration_requirements %q must be one of %s",
		domain.ErrValidation, value, strings.Join(domain.RefrigerationRequirements, ", "))
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrValidation, field)
	}
	return nil
}
