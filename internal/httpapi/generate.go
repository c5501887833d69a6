package httpapi

import (
	"net/http"

	"github.com/contentforge/contentforge/internal/auth"
	"github.com/contentforge/contentforge/internal/generation"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// handleGenerate returns the handler for one provider's generation route.
// The response body is the generated text as a bare JSON string, not an
// envelope.
func (a *API) handleGenerate(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := auth.UserFromContext(r.Context())
		if u == nil {
			a.respondError(w, r, auth.ErrNoToken)
			return
		}

		var req generateRequest
		if err := decodeJSON(r, &req); err != nil {
			a.respondError(w, r, generation.ErrEmptyPrompt)
			return
		}

		h, err := a.generator.Generate(r.Context(), u.ID, provider, req.Prompt)
		if err != nil {
			a.respondError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, h.Content)
	}
}
