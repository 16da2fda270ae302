package repositories

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/DavidPARK0417/draiger-sub002/models"
)

// SnapshotRepository persists cache values so a restarted process can still answer
// while the content source is down.
type SnapshotRepository struct {
	col *mongo.Collection
}

func NewSnapshotRepository(db *mongo.Database, collection string) *SnapshotRepository {
	return &SnapshotRepository{col: db.Collection(collection)}
}

// Save upserts the snapshot identified by key.
func (r *SnapshotRepository) Save(ctx context.Context, key string, data []byte, storedAt time.Time) error {
	filter := bson.M{"key": key}
	update := bson.M{
		"$set": bson.M{
			"key":        key,
			"data":       data,
			"stored_at":  storedAt,
			"updated_at": time.Now(),
		},
	}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Load returns the snapshot of key. found is false when nothing was stored.
func (r *SnapshotRepository) Load(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	var s models.Snapshot
	err := r.col.FindOne(ctx, bson.M{"key": key}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, err
	}
	return s.Data, s.StoredAt, true, nil
}

// DeletePrefix removes every snapshot whose key starts with prefix.
func (r *SnapshotRepository) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"key": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
