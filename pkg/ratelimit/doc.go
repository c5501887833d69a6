// Package ratelimit provides a Redis-backed sliding-window rate limiter
// with HTTP middleware. The middleware fails open: storage errors admit
// the request rather than turning a Redis outage into an API outage.
package ratelimit
