// Package redis connects go-redis clients from environment configuration
// with retries, plus a healthcheck for the HTTP health endpoint. Redis
// backs the transport-level rate limiter.
package redis
