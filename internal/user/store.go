package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/contentforge/contentforge/internal/plan"
)

// Store persists users in the "users" collection.
type Store struct {
	col *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection("users")}
}

// EnsureIndexes creates the unique email index backing the email-uniqueness
// invariant.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) Create(ctx context.Context, u *User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Store) ByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) ByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id bson.ObjectID, update ProfileUpdate) (*User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Username != "" {
		set["username"] = update.Username
	}
	if update.Email != "" {
		set["email"] = update.Email
	}
	if update.PasswordHash != "" {
		set["password"] = update.PasswordHash
	}

	var u User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) IncrementUsage(ctx context.Context, id bson.ObjectID, limit int, historyID bson.ObjectID) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "apiRequestCount": bson.M{"$lt": limit}},
		bson.M{
			"$inc":  bson.M{"apiRequestCount": 1},
			"$push": bson.M{"contentHistory": historyID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *Store) ApplyPlan(ctx context.Context, id bson.ObjectID, change PlanChange) (*User, error) {
	set := bson.M{
		"subscriptionPlan":    change.Plan,
		"monthlyRequestCount": change.Allotment,
		"apiRequestCount":     0,
		"nextBillingDate":     change.NextBillingDate,
		"updatedAt":           time.Now().UTC(),
	}
	if change.ClearTrial {
		set["trialActive"] = false
		set["trialPeriod"] = 0
	}

	update := bson.M{"$set": set}
	if !change.PaymentID.IsZero() {
		update["$addToSet"] = bson.M{"payments": change.PaymentID}
	}

	var u User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) RemoveHistoryRef(ctx context.Context, userID, historyID bson.ObjectID) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"contentHistory": historyID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ExpireTrials(ctx context.Context, now time.Time, freeAllotment int) (int64, error) {
	res, err := s.col.UpdateMany(ctx,
		bson.M{"trialActive": true, "trialExpires": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{
			"trialActive":         false,
			"subscriptionPlan":    plan.Free,
			"monthlyRequestCount": freeAllotment,
			"updatedAt":           now,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) ResetPlanCounters(ctx context.Context, p plan.Plan, allotment int, now time.Time) (int64, error) {
	res, err := s.col.UpdateMany(ctx,
		bson.M{"subscriptionPlan": p, "nextBillingDate": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{
			"monthlyRequestCount": allotment,
			"apiRequestCount":     0,
			"updatedAt":           now,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
