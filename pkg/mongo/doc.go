// Package mongo wires the official MongoDB driver into the application:
// environment-driven connection config with retries, and a healthcheck
// function for the HTTP health endpoint.
package mongo
