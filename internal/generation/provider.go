package generation

import "context"

// Provider names accepted by the service and stored on history records.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Provider turns a prompt into generated text. Implementations own their
// HTTP client, timeout, and sampling parameters.
type Provider interface {
	// Name reports the provider identifier recorded on history entries.
	Name() string

	// Model reports the model identifier the provider is configured with.
	Model() string

	// Generate submits the prompt and returns the raw generated text.
	// Transport failures are wrapped in ErrUpstreamUnreachable; non-2xx
	// responses come back as *UpstreamError.
	Generate(ctx context.Context, prompt string) (string, error)
}
