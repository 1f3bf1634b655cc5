package overlay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string // defaults to "entitydiagram"
	Collection string // defaults to "overlay"
	Timeout    time.Duration
}

// MongoStore stores one document per record, unique on (container, key).
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

type mongoRecord struct {
	Container    string    `bson:"container"`
	Key          string    `bson:"key"`
	Value        string    `bson:"value"`
	LastModified time.Time `bson:"lastModifiedAt"`
}

// NewMongoStore connects to MongoDB and ensures the unique index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "entitydiagram"
	}
	if cfg.Collection == "" {
		cfg.Collection = "overlay"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "container", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create mongo index: %w", err)
	}
	return &MongoStore{client: client, coll: coll, timeout: cfg.Timeout}, nil
}

func (s *MongoStore) Get(ctx context.Context, container, key string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"container": container, "key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get", Record{Container: container, Key: key}, err)
	}
	return &Record{
		Container:    doc.Container,
		Key:          doc.Key,
		Value:        []byte(doc.Value),
		LastModified: doc.LastModified,
	}, nil
}

func (s *MongoStore) Put(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	doc := mongoRecord{
		Container:    rec.Container,
		Key:          rec.Key,
		Value:        string(rec.Value),
		LastModified: rec.LastModified,
	}
	filter := bson.M{"container": rec.Container, "key": rec.Key}
	if _, err := s.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true)); err != nil {
		return storeErr("put", rec, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
