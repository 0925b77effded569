package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	HandoffDbName  = "campsum"
	HandoffColName = "handoffs"

	handoffRetention = 30 * 24 * time.Hour
)

// Handoff records that a messaging deep link was handed to a caller. The
// message text itself is not stored.
type Handoff struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind      string             `bson:"kind" json:"kind"`
	UserID    *string            `bson:"user_id,omitempty" json:"user_id,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}

type HandoffLog interface {
	RecordHandoff(ctx context.Context, h *Handoff) error
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the TTL index that ages handoff records out.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(HandoffColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(0).
				SetName("expires_at_ttl"),
		},
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("kind_created_at_idx"),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) RecordHandoff(ctx context.Context, h *Handoff) error {
	col, err := mdb.GetCollection(HandoffColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	now := time.Now()
	h.CreatedAt = now
	h.ExpiresAt = now.Add(handoffRetention)
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}

	if _, err := col.InsertOne(ctx, h); err != nil {
		return fmt.Errorf("error inserting handoff: %w", err)
	}
	return nil
}
