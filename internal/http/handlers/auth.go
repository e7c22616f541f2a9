package handlers

import (
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) UsersCreate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	session, err := a.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, session)
}

// UsersDelete removes the caller's account and revokes the token it used.
func (a *App) UsersDelete(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Auth.DeleteUser(r.Context(), p.Email); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Auth.Logout(r.Context(), *p); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) SessionsCreate(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	session, err := a.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, session)
}

func (a *App) SessionsDelete(w http.ResponseWriter, r *http.Request) {
	p, err := a.principal(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Auth.Logout(r.Context(), *p); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
