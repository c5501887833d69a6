// Package quota implements the request-admission gate comparing a user's
// consumed request counter against their plan's limit. The gate re-reads
// the user from storage so the decision observes the latest persisted
// counter; the actual increment happens later in the generation service as
// a single conditional update.
package quota
