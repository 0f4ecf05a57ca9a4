package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const blobCollection = "ledger_blobs"

type blobDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStorage keeps blobs in one collection, keyed by _id.
type MongoStorage struct {
	collection *mongo.Collection
}

// NewMongoStorage creates a MongoStorage on the given database.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{collection: db.Collection(blobCollection)}
}

func (s *MongoStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	var doc blobDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get blob failed: %w", err)
	}
	return doc.Data, nil
}

func (s *MongoStorage) Put(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"data": data, "updated_at": time.Now().UTC()}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("put blob failed: %w", err)
	}
	return nil
}

func (s *MongoStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete blob failed: %w", err)
	}
	return nil
}
