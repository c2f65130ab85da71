package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const resetsCollection = "passwordresets"

// ResetLedger implements ports.ResetLedger. Each accepted forgot-password
// request becomes one document; entries are never updated.
type ResetLedger struct {
	coll *mongo.Collection
}

func NewResetLedger(db *mongo.Database) *ResetLedger {
	return &ResetLedger{coll: db.Collection(resetsCollection)}
}

type mongoReset struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// EnsureIndexes indexes the ledger by user and time. Entries older than
// retention are expired by MongoDB; a zero retention keeps them forever.
func (l *ResetLedger) EnsureIndexes(ctx context.Context, retention time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if retention > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		})
	}

	_, err := l.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (l *ResetLedger) HasRecentRequest(ctx context.Context, userID string, since time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, fmt.Errorf("reset ledger: invalid user id %q", userID)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	n, err := l.coll.CountDocuments(ctx, bson.M{
		"userId":    oid,
		"createdAt": bson.M{"$gt": since.UTC()},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("reset ledger: count: %w", err)
	}
	return n > 0, nil
}

func (l *ResetLedger) Record(ctx context.Context, userID string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("reset ledger: invalid user id %q", userID)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err = l.coll.InsertOne(ctx, mongoReset{
		UserID:    oid,
		CreatedAt: at.UTC(),
		UpdatedAt: at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("reset ledger: insert: %w", err)
	}
	return nil
}
