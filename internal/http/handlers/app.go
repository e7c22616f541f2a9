package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"foodshare/internal/domain"
	"foodshare/internal/metrics"
	"foodshare/internal/middleware"
	"foodshare/internal/service"
)

const maxBodyBytes = 1 << 20

// App carries the services every handler calls into.
type App struct {
	Donations  *service.DonationService
	Donors     *service.DonorService
	Recipients *service.RecipientService
	Auth       *service.AuthService
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
	// Ping reports storage readiness; nil means always ready.
	Ping func(ctx context.Context) error
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// fail maps a service error onto its HTTP status. Unexpected errors are
// logged and answered with a generic message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		a.error(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrConflict):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// decode reads a single JSON object and rejects unknown fields.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body required", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid payload: %v", domain.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: invalid payload: trailing data", domain.ErrValidation)
	}
	return nil
}

func (a *App) principal(r *http.Request) (*service.Principal, error) {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		return nil, fmt.Errorf("%w: missing user context", domain.ErrUnauthorized)
	}
	return p, nil
}

// callerDonor resolves the donor profile registered under the caller's email.
func (a *App) callerDonor(r *http.Request) (*domain.Donor, error) {
	p, err := a.principal(r)
	if err != nil {
		return nil, err
	}
	donor, err := a.Donors.GetDonorByEmail(r.Context(), p.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: caller is not a registered donor", domain.ErrForbidden)
	}
	return donor, err
}

// callerRecipient resolves the recipient profile registered under the caller's email.
func (a *App) callerRecipient(r *http.Request) (*domain.Recipient, error) {
	p, err := a.principal(r)
	if err != nil {
		return nil, err
	}
	recipient, err := a.Recipients.GetRecipientByEmail(r.Context(), p.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: caller is not a registered recipient", domain.ErrForbidden)
	}
	return recipient, err
}

func (a *App) requireEmail(r *http.Request, owner string) error {
	p, err := a.principal(r)
	if err != nil {
		return err
	}
	if domain.NormalizeEmail(owner) != domain.NormalizeEmail(p.Email) {
		return fmt.Errorf("%w: resource belongs to another account", domain.ErrForbidden)
	}
	return nil
}

func pageFromQuery(r *http.Request) (domain.Page, error) {
	q := r.URL.Query()
	number, err := intParam(q.Get("page"), "page")
	if err != nil {
		return domain.Page{}, err
	}
	size, err := intParam(q.Get("pagesize"), "pagesize")
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Number: number, Size: size}.Normalize(), nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return v, nil
}

// flagParam treats any value other than "", "0" and "false" as set.
func flagParam(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false":
		return false
	}
	return true
}
