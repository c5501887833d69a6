package generation

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// History is one persisted prompt/completion pair. User profiles reference
// these documents by ID through their contentHistory array.
type History struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID    bson.ObjectID `bson:"user" json:"user"`
	Prompt    string        `bson:"prompt" json:"prompt"`
	Content   string        `bson:"content" json:"content"`
	Provider  string        `bson:"provider" json:"provider"`
	Model     string        `bson:"model" json:"model"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

// HistoryStore persists content history in the "contenthistories"
// collection. It satisfies user.HistoryDeleter.
type HistoryStore struct {
	col *mongo.Collection
}

func NewHistoryStore(db *mongo.Database) *HistoryStore {
	return &HistoryStore{col: db.Collection("contenthistories")}
}

// EnsureIndexes creates the owner index used by ByUser listings.
func (s *HistoryStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (s *HistoryStore) Create(ctx context.Context, h *History) error {
	if h.ID.IsZero() {
		h.ID = bson.NewObjectID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	_, err := s.col.InsertOne(ctx, h)
	return err
}

func (s *HistoryStore) ByID(ctx context.Context, id, userID bson.ObjectID) (*History, error) {
	var h History
	if err := s.col.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ByUser lists a user's history, newest first.
func (s *HistoryStore) ByUser(ctx context.Context, userID bson.ObjectID) ([]History, error) {
	cur, err := s.col.Find(ctx, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []History
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a history document, scoped to its owner so one user
// cannot delete another's entries.
func (s *HistoryStore) Delete(ctx context.Context, id, userID bson.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrHistoryNotFound
	}
	return nil
}
