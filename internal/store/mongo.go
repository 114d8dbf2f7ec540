package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "mindcare-ai"
	mongoCollection      = "kv"
)

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Mongo stores each key as one document in the kv collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to MongoDB at uri and pings the primary.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

// Read returns the value stored under key.
func (m *Mongo) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr("reading", key, err)
	}
	return doc.Value, true, nil
}

// Write upserts the document for key.
func (m *Mongo) Write(ctx context.Context, key string, value []byte) error {
	doc := mongoDoc{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storageErr("writing", key, err)
	}
	return nil
}

// Remove deletes the document for key.
func (m *Mongo) Remove(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return storageErr("removing", key, err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
