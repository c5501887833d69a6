// Package generation proxies prompt completion to upstream AI providers
// and records every successful completion in the user's content history.
//
// Two providers are wired: Google Gemini and Groq. Both implement the
// Provider interface, so the service and its tests are provider-agnostic.
// Quota admission happens twice per request: a cheap pre-check before the
// upstream call, and an atomic increment-if-below-limit after it, so
// concurrent requests can never push a user past their allotment.
package generation
