// Package httpserver wraps net/http.Server with environment configuration
// and graceful shutdown on SIGINT/SIGTERM or context cancellation.
package httpserver
