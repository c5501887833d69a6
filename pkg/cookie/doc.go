// Package cookie provides a small cookie manager with functional options.
// The session token cookie is issued http-only with SameSite=Strict; the
// manager centralizes those attributes so handlers never set raw cookies.
package cookie
