package auth

import (
	"errors"
	"net/http"
)

// RequireAuth rejects requests without a valid session and attaches the
// resolved user to the context for downstream handlers.
func (i *Issuer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := i.Verify(r.Context(), r)
		if err != nil {
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	message := "Authentication failed"
	switch {
	case errors.Is(err, ErrNoToken):
		message = "Not authorized, no token"
	case errors.Is(err, ErrTokenExpired):
		message = "Token has expired, please login again"
	case errors.Is(err, ErrInvalidToken):
		message = "Invalid token, please login again"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}
