package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contentforge/contentforge/internal/auth"
	"github.com/contentforge/contentforge/internal/billing"
	"github.com/contentforge/contentforge/internal/plan"
)

type checkoutRequest struct {
	Amount           float64   `json:"amount"`
	SubscriptionPlan plan.Plan `json:"subscriptionPlan"`
	Email            string    `json:"email"`
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		a.respondError(w, r, auth.ErrNoToken)
		return
	}

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		a.respondError(w, r, billing.ErrInvalidPlan)
		return
	}
	if req.Email == "" {
		req.Email = u.Email
	}

	checkout, err := a.ledger.InitiateCheckout(r.Context(), u.ID, req.Email, req.Amount, req.SubscriptionPlan)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":           "success",
		"authorizationUrl": checkout.AuthorizationURL,
		"accessCode":       checkout.AccessCode,
		"reference":        checkout.Reference,
	})
}

func (a *API) handleVerifyCheckout(w http.ResponseWriter, r *http.Request) {
	payment, _, err := a.ledger.VerifyCheckout(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Payment verified successfully",
		"payment": payment,
	})
}

func (a *API) handleFreeSignup(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		a.respondError(w, r, auth.ErrNoToken)
		return
	}

	updated, err := a.ledger.FreeSignup(r.Context(), u.ID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	updated.Password = ""
	writeJSON(w, http.StatusOK, updated)
}

// handleWebhook verifies the gateway signature over the raw body, then
// acknowledges with 200 regardless of processing outcome so the gateway
// never retry-storms us. Processing failures are only logged.
func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.respondError(w, r, billing.ErrInvalidSignature)
		return
	}

	if !billing.ValidSignature(a.webhookSecret, body, r.Header.Get(billing.SignatureHeader)) {
		a.respondError(w, r, billing.ErrInvalidSignature)
		return
	}

	var event billing.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		a.log.WarnContext(r.Context(), "unparseable webhook payload", slog.Any("error", err))
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := a.ledger.HandleWebhook(r.Context(), event); err != nil {
		a.log.ErrorContext(r.Context(), "webhook processing failed",
			slog.String("event", event.Event),
			slog.String("reference", event.Data.Reference),
			slog.Any("error", err))
	}
	w.WriteHeader(http.StatusOK)
}
