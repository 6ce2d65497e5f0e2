package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions configures a MongoBackend.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoBackend stores one document per key. A TTL index on expires_at lets
// MongoDB purge expired entries; Get also checks expiry because the purge
// runs only periodically.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// NewMongoBackend connects to MongoDB and ensures the TTL index exists.
func NewMongoBackend(ctx context.Context, opts MongoOptions) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", mongoError(err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", mongoError(err))
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", mongoError(err))
	}
	return &MongoBackend{client: client, coll: coll}, nil
}

func (b *MongoBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDoc
	err := b.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mongoError(err)
	}
	if doc.ExpiresAt != nil && time.Now().After(*doc.ExpiresAt) {
		return nil, false, nil
	}
	return doc.Data, true, nil
}

func (b *MongoBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := time.Now()
	doc := mongoDoc{Key: key, Data: data, UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		doc.ExpiresAt = &exp
	}
	_, err := b.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return mongoError(err)
}

func (b *MongoBackend) Delete(ctx context.Context, key string) error {
	_, err := b.coll.DeleteOne(ctx, bson.M{"_id": key})
	return mongoError(err)
}

func (b *MongoBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cur, err := b.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1, "expires_at": 1}))
	if err != nil {
		return nil, mongoError(err)
	}
	defer cur.Close(ctx)

	now := time.Now()
	var keys []string
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.ExpiresAt != nil && now.After(*doc.ExpiresAt) {
			continue
		}
		keys = append(keys, doc.Key)
	}
	return keys, mongoError(cur.Err())
}

func (b *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

func mongoError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return err
}

var _ Backend = (*MongoBackend)(nil)
