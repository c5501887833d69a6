package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/contentforge/contentforge/internal/billing"
	"github.com/contentforge/contentforge/internal/generation"
	"github.com/contentforge/contentforge/internal/quota"
	"github.com/contentforge/contentforge/internal/user"
)

type errorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps a service error to an HTTP status and client-safe message.
func classify(err error) (int, string) {
	var exceeded *quota.ExceededError
	if errors.As(err, &exceeded) {
		return http.StatusForbidden, exceeded.Error()
	}

	var upstream *generation.UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Status {
		case http.StatusBadRequest:
			return http.StatusBadRequest, "Invalid generation request"
		case http.StatusUnauthorized, http.StatusForbidden:
			// A provider key problem is our misconfiguration, never the
			// caller's authentication failure.
			return http.StatusInternalServerError, "Content generation failed"
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, "Generation service is rate limited, please try again shortly"
		case http.StatusServiceUnavailable:
			return http.StatusServiceUnavailable, "Generation service is overloaded, please try again shortly"
		default:
			return http.StatusBadGateway, upstream.Error()
		}
	}

	switch {
	case errors.Is(err, user.ErrMissingFields):
		return http.StatusBadRequest, "Please provide username, email and password"
	case errors.Is(err, user.ErrEmailTaken):
		return http.StatusBadRequest, "User with this email already exists"
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, generation.ErrEmptyPrompt):
		return http.StatusBadRequest, "Prompt is required"
	case errors.Is(err, generation.ErrEmptyResult):
		return http.StatusUnprocessableEntity, "The model returned no content, try rephrasing the prompt"
	case errors.Is(err, generation.ErrUnknownProvider):
		return http.StatusBadRequest, "Unknown generation provider"
	case errors.Is(err, generation.ErrUpstreamUnreachable):
		return http.StatusServiceUnavailable, "Generation service is unreachable"
	case errors.Is(err, generation.ErrHistoryNotFound):
		return http.StatusNotFound, "Content history entry not found"
	case errors.Is(err, billing.ErrInvalidPlan):
		return http.StatusBadRequest, "Invalid subscription plan"
	case errors.Is(err, billing.ErrInvalidMetadata):
		return http.StatusBadRequest, "Transaction metadata is invalid"
	case errors.Is(err, billing.ErrInvalidSignature):
		return http.StatusBadRequest, "Invalid webhook signature"
	case errors.Is(err, billing.ErrPaymentNotSuccessful):
		return http.StatusBadRequest, "Payment was not successful"
	case errors.Is(err, billing.ErrRenewalNotDue):
		return http.StatusForbidden, "Subscription renewal is not due yet"
	}
	return http.StatusInternalServerError, "Something went wrong"
}

// respondError is the single exit point for handler failures: classify,
// log, render JSON. Stack traces never leave production responses.
func (a *API) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.log.LogAttrs(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)

	body := errorBody{Message: message}
	if !a.cfg.IsProduction() {
		body.Stack = err.Error() + "\n" + string(debug.Stack())
	}
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(dst)
}
