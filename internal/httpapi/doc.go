// Package httpapi is the HTTP transport: a chi router under /api/v1,
// JSON request decoding, the centralized error responder, and the
// transport middleware stack (security headers, CORS, rate limits).
//
// Handlers stay thin; every business rule lives in the internal services
// this package fronts.
package httpapi
