package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/auth"
	"github.com/contentforge/contentforge/internal/billing"
	"github.com/contentforge/contentforge/internal/generation"
	"github.com/contentforge/contentforge/internal/user"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, r, user.ErrMissingFields)
		return
	}

	u, err := a.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "User registered successfully",
		"user": map[string]string{
			"username": u.Username,
			"email":    u.Email,
		},
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, r, user.ErrInvalidCredentials)
		return
	}

	u, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	if err := a.issuer.Issue(w, u); err != nil {
		a.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"_id":      u.ID.Hex(),
		"message":  "Logged in successfully",
		"username": u.Username,
		"email":    u.Email,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.issuer.Revoke(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Logged out successfully",
	})
}

func (a *API) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"isAuthenticated": a.issuer.Check(r),
	})
}

// profileResponse carries the user record with its payment and history
// references resolved into full documents.
type profileResponse struct {
	*user.User
	Payments       []billing.Payment    `json:"payments"`
	ContentHistory []generation.History `json:"contentHistory"`
}

func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		a.respondError(w, r, auth.ErrNoToken)
		return
	}

	payments, err := a.payments.ByUser(r.Context(), u.ID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	history, err := a.generator.ListHistory(r.Context(), u.ID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	if payments == nil {
		payments = []billing.Payment{}
	}
	if history == nil {
		history = []generation.History{}
	}
	writeJSON(w, http.StatusOK, profileResponse{User: u, Payments: payments, ContentHistory: history})
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		a.respondError(w, r, auth.ErrNoToken)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, r, user.ErrMissingFields)
		return
	}

	updated, err := a.users.UpdateProfile(r.Context(), u.ID, req.Username, req.Email, req.Password)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	updated.Password = ""
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		a.respondError(w, r, auth.ErrNoToken)
		return
	}

	historyID, err := bson.ObjectIDFromHex(chi.URLParam(r, "historyID"))
	if err != nil {
		a.respondError(w, r, generation.ErrHistoryNotFound)
		return
	}

	if err := a.users.DeleteHistory(r.Context(), u.ID, historyID); err != nil {
		a.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Content history entry deleted",
	})
}
