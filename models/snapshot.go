package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Snapshot is the last successfully fetched value of one cache key.
// Collection: content_snapshots (configurable)
type Snapshot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key       string             `bson:"key" json:"key"`
	Data      []byte             `bson:"data" json:"data"`
	StoredAt  time.Time          `bson:"stored_at" json:"stored_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
