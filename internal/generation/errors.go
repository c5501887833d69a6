package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPrompt is returned when the request carries no prompt text.
	ErrEmptyPrompt = errors.New("prompt is required")

	// ErrEmptyResult is returned when the upstream answered successfully
	// but produced no text.
	ErrEmptyResult = errors.New("provider returned an empty result")

	// ErrUnknownProvider is returned when the requested provider name is
	// not registered with the service.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUpstreamUnreachable wraps transport-level failures (DNS, refused
	// connection, timeout) talking to a provider.
	ErrUpstreamUnreachable = errors.New("provider is unreachable")

	// ErrHistoryNotFound is returned when a content history document does
	// not exist or belongs to another user.
	ErrHistoryNotFound = errors.New("content history entry not found")
)

// UpstreamError carries a non-2xx response from a provider. Status is the
// upstream HTTP status code; the transport layer decides how much of it to
// surface to clients.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s request failed with status %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.Status, e.Message)
}
