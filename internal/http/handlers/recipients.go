package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"foodshare/internal/domain"
	"foodshare/internal/service"
)

type statusRequest struct {
	Status string `json:"status"`
}

func (a *App) RecipientsList(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	recipients, err := a.Recipients.ListRecipients(r.Context(), domain.RecipientQuery{
		RecipientID:      q.Get("id"),
		Name:             q.Get("name"),
		TaxStatus:        q.Get("501c3"),
		ComplianceStatus: q.Get("goodstanding"),
		SortByDonations:  flagParam(q.Get("numberdonations")),
		Page:             page,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, recipients)
}

// RecipientsCreate registers the caller's own recipient profile.
func (a *App) RecipientsCreate(w http.ResponseWriter, r *http.Request) {
	var in service.RecipientInput
	if err := a.decode(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.requireEmail(r, in.Email); err != nil {
		a.fail(w, r, err)
		return
	}
	recipient, err := a.Recipients.CreateRecipient(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, recipient)
}

func (a *App) RecipientGet(w http.ResponseWriter, r *http.Request) {
	recipient, err := a.Recipients.GetRecipient(r.Context(), chi.URLParam(r, "recipientID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, recipient)
}

func (a *App) RecipientUpdate(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientID")
	if err := a.requireRecipientOwner(r, recipientID); err != nil {
		a.fail(w, r, err)
		return
	}
	var patch domain.RecipientPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	recipient, err := a.Recipients.UpdateRecipient(r.Context(), recipientID, patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, recipient)
}

func (a *App) RecipientDelete(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientID")
	if err := a.requireRecipientOwner(r, recipientID); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Recipients.DeleteRecipient(r.Context(), recipientID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) requireRecipientOwner(r *http.Request, recipientID string) error {
	recipient, err := a.Recipients.GetRecipient(r.Context(), recipientID)
	if err != nil {
		return err
	}
	return a.requireEmail(r, recipient.Email)
}

func (a *App) DonationLogGet(w http.ResponseWriter, r *http.Request) {
	log, err := a.Recipients.ListDonationLog(r.Context(), chi.URLParam(r, "recipientID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, log)
}

func (a *App) DonationLogEntryGet(w http.ResponseWriter, r *http.Request) {
	record, err := a.Recipients.GetDonationLogEntry(r.Context(), chi.URLParam(r, "recipientID"), chi.URLParam(r, "donationID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, record)
}

func (a *App) DonationLogEntryCreate(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientID")
	if err := a.requireRecipientOwner(r, recipientID); err != nil {
		a.fail(w, r, err)
		return
	}
	var req impactRecordRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	in, err := req.record()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	record, err := a.Recipients.AddDonationLogEntry(r.Context(), recipientID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, record)
}

func (a *App) DonationLogEntryUpdate(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientID")
	if err := a.requireRecipientOwner(r, recipientID); err != nil {
		a.fail(w, r, err)
		return
	}
	var patch domain.ImpactPatch
	if err := a.decode(w, r, &patch); err != nil {
		a.fail(w, r, err)
		return
	}
	record, err := a.Recipients.UpdateDonationLogEntry(r.Context(), recipientID, chi.URLParam(r, "donationID"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, record)
}

func (a *App) TaxStatusGet(w http.ResponseWriter, r *http.Request) {
	status, err := a.Recipients.GetTaxStatus(r.Context(), chi.URLParam(r, "recipientID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}

func (a *App) TaxStatusUpdate(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientID")
	if err := a.requireRecipientOwner(r, recipientID); err != nil {
		a.fail(w, r, err)
		return
	}
	var req statusRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	status, err := a.Recipients.UpdateTaxStatus(r.Context(), recipientID, req.Status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}

func (a *App) ComplianceStatusGet(w http.ResponseWriter, r *http.Request) {
	status, err := a.Recipients.GetComplianceStatus(r.Context(), chi.URLParam(r, "recipientID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}

func (a *App) ComplianceStatusUpdate(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientID")
	if err := a.requireRecipientOwner(r, recipientID); err != nil {
		a.fail(w, r, err)
		return
	}
	var req statusRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	status, err := a.Recipients.UpdateComplianceStatus(r.Context(), recipientID, req.Status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}
