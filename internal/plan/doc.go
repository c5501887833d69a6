// Package plan defines the subscription plan enum and the catalog of
// per-plan monthly request allotments. The catalog is the single source of
// truth shared by the quota gate, the subscription ledger, and the
// billing-cycle scheduler.
package plan
