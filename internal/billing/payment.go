package billing

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/contentforge/contentforge/internal/plan"
)

// Payment statuses. Records are append-only, so a stored payment never
// moves between these.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Payment is one monetary or plan event. Amount is in major currency
// units; the gateway's minor-unit amounts are divided by 100 on the way
// in.
type Payment struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    bson.ObjectID `bson:"user" json:"user"`
	Email     string        `bson:"email" json:"email"`
	Reference string        `bson:"reference" json:"reference"`
	Amount    float64       `bson:"amount" json:"amount"`
	Currency  string        `bson:"currency" json:"currency"`
	Plan      plan.Plan     `bson:"subscriptionPlan" json:"subscriptionPlan"`
	Status    string        `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

// PaymentStore persists payments in the "payments" collection.
type PaymentStore struct {
	col *mongo.Collection
}

func NewPaymentStore(db *mongo.Database) *PaymentStore {
	return &PaymentStore{col: db.Collection("payments")}
}

// EnsureIndexes creates the reference lookup index. The index is not
// unique: duplicate verification of the same reference records a second
// payment, and the ledger documents that behavior instead of hiding it.
func (s *PaymentStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "reference", Value: 1}},
	})
	return err
}

func (s *PaymentStore) Create(ctx context.Context, p *Payment) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.col.InsertOne(ctx, p)
	return err
}

// ByUser lists a user's payments, newest first.
func (s *PaymentStore) ByUser(ctx context.Context, userID bson.ObjectID) ([]Payment, error) {
	cur, err := s.col.Find(ctx, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []Payment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByReference returns the most recent payment recorded for a reference.
func (s *PaymentStore) ByReference(ctx context.Context, reference string) (*Payment, error) {
	var p Payment
	err := s.col.FindOne(ctx, bson.M{"reference": reference},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
