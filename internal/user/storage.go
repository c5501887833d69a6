package user

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/plan"
)

// PlanChange describes the single state transition shared by checkout
// verification, the payment webhook and free signup: new plan, fresh
// allotment, zeroed consumption, next billing date, payment reference.
type PlanChange struct {
	Plan            plan.Plan
	Allotment       int
	NextBillingDate time.Time
	PaymentID       bson.ObjectID
	ClearTrial      bool
}

// ProfileUpdate carries optional identity changes; empty fields are kept.
type ProfileUpdate struct {
	Username     string
	Email        string
	PasswordHash string
}

// Storage is the persistence contract for user records. The Mongo-backed
// Store implements it; tests substitute mocks.
type Storage interface {
	Create(ctx context.Context, u *User) error
	ByID(ctx context.Context, id bson.ObjectID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, update ProfileUpdate) (*User, error)

	// IncrementUsage admits and records one generation in a single
	// conditional update: the consumed counter is bumped and the history
	// reference appended only while the counter is below limit. Returns
	// false when the user was already at or over the limit.
	IncrementUsage(ctx context.Context, id bson.ObjectID, limit int, historyID bson.ObjectID) (bool, error)

	// ApplyPlan performs the shared plan transition and returns the
	// updated record.
	ApplyPlan(ctx context.Context, id bson.ObjectID, change PlanChange) (*User, error)

	RemoveHistoryRef(ctx context.Context, userID, historyID bson.ObjectID) error

	// ExpireTrials bulk-moves users with lapsed trials to the Free plan.
	ExpireTrials(ctx context.Context, now time.Time, freeAllotment int) (int64, error)

	// ResetPlanCounters bulk-resets counters for one plan's users whose
	// billing date has passed.
	ResetPlanCounters(ctx context.Context, p plan.Plan, allotment int, now time.Time) (int64, error)
}
