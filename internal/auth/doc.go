// Package auth is the session/token issuer: it signs a short-lived JWT
// into the "token" cookie on login, verifies it on every authenticated
// request, and clears it on logout. The verified user record (password
// hash stripped) rides the request context.
package auth
