package user

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/plan"
)

const (
	// defaultTrialDays is the trial length granted at registration.
	defaultTrialDays = 3

	// defaultTrialAllotment is the stored monthly allotment a fresh trial
	// user starts with. The quota gate uses this stored value as the trial
	// request limit.
	defaultTrialAllotment = 100
)

// User is the persisted account record. The password hash never reaches
// JSON output.
type User struct {
	ID                  bson.ObjectID   `bson:"_id" json:"_id"`
	Username            string          `bson:"username" json:"username"`
	Email               string          `bson:"email" json:"email"`
	Password            string          `bson:"password" json:"-"`
	TrialPeriod         int             `bson:"trialPeriod" json:"trialPeriod"`
	TrialActive         bool            `bson:"trialActive" json:"trialActive"`
	TrialExpires        time.Time       `bson:"trialExpires,omitempty" json:"trialExpires,omitempty"`
	SubscriptionPlan    plan.Plan       `bson:"subscriptionPlan" json:"subscriptionPlan"`
	APIRequestCount     int             `bson:"apiRequestCount" json:"apiRequestCount"`
	MonthlyRequestCount int             `bson:"monthlyRequestCount" json:"monthlyRequestCount"`
	NextBillingDate     *time.Time      `bson:"nextBillingDate,omitempty" json:"nextBillingDate,omitempty"`
	Payments            []bson.ObjectID `bson:"payments" json:"payments"`
	ContentHistory      []bson.ObjectID `bson:"contentHistory" json:"contentHistory"`
	CreatedAt           time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// NewTrialUser builds a user with registration defaults: an active trial
// expiring after the trial period, on the Trial plan.
func NewTrialUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:                  bson.NewObjectID(),
		Username:            username,
		Email:               email,
		Password:            passwordHash,
		TrialPeriod:         defaultTrialDays,
		TrialActive:         true,
		TrialExpires:        now.AddDate(0, 0, defaultTrialDays),
		SubscriptionPlan:    plan.Trial,
		APIRequestCount:     0,
		MonthlyRequestCount: defaultTrialAllotment,
		Payments:            []bson.ObjectID{},
		ContentHistory:      []bson.ObjectID{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}
