package quota

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/plan"
	"github.com/contentforge/contentforge/internal/user"
)

// ExceededError reports a denied admission with the numbers the user needs
// to understand it.
type ExceededError struct {
	Current int
	Limit   int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("API request limit reached (%d/%d). Please upgrade your plan or wait for the next billing cycle.", e.Current, e.Limit)
}

// UserReader re-reads the user record at decision time.
type UserReader interface {
	ByID(ctx context.Context, id bson.ObjectID) (*user.User, error)
}

// Gate decides request admission from plan limits.
type Gate struct {
	users   UserReader
	catalog *plan.Catalog
}

func NewGate(users UserReader, catalog *plan.Catalog) *Gate {
	return &Gate{users: users, catalog: catalog}
}

// Limit returns the admission limit for u.
//
// An active trial uses the user's stored allotment as its own limit rather
// than a fixed trial constant (see DESIGN.md for the rationale). Unknown
// plans fall back to the stored allotment.
func (g *Gate) Limit(u *user.User) int {
	if u.TrialActive {
		return u.MonthlyRequestCount
	}

	switch u.SubscriptionPlan {
	case plan.Free, plan.Basic, plan.Premium:
		return g.catalog.Allotment(u.SubscriptionPlan)
	default:
		return u.MonthlyRequestCount
	}
}

// Admit re-reads the user and rejects with *ExceededError when the
// consumed counter has reached the limit. The admitted, freshly-read user
// is returned for downstream use.
func (g *Gate) Admit(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	u, err := g.users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	limit := g.Limit(u)
	if u.APIRequestCount >= limit {
		return nil, &ExceededError{Current: u.APIRequestCount, Limit: limit}
	}
	return u, nil
}
