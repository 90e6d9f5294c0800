package store

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pkgnorm/pkg/cache"
	"github.com/matzehuels/pkgnorm/pkg/errors"
	"github.com/matzehuels/pkgnorm/pkg/normalize"
	"github.com/matzehuels/pkgnorm/pkg/observability"
)

const (
	// DefaultDatabase is used when Config.Database is empty.
	DefaultDatabase = "pkgnorm"

	// DefaultCollection is used when Config.Collection is empty.
	DefaultCollection = "packages"

	// batchSize bounds the number of upserts per bulk write.
	batchSize = 500
)

// Config configures a MongoDB store.
type Config struct {
	URI        string
	Database   string
	Collection string
	Logger     *log.Logger
}

// MongoStore writes package documents to a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *log.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg Config) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     cfg.Logger,
	}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, run Run, doc *normalize.Document) (int, error) {
	if run.At.IsZero() {
		run.At = time.Now().UTC()
	}
	docs := Documents(run, doc)
	start := time.Now()

	written := 0
	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))
		models := make([]mongo.WriteModel, 0, end-i)
		for _, d := range docs[i:end] {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.D{{Key: "_id", Value: d.ID}}).
				SetReplacement(d).
				SetUpsert(true))
		}

		res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
		if err != nil {
			observability.Store().OnStoreWrite(ctx, s.collection.Name(), written, time.Since(start), err)
			return written, errors.Wrap(errors.ErrCodeStorage, err, "write batch %d-%d", i, end)
		}
		written += int(res.UpsertedCount + res.MatchedCount)
		s.logger.Debug("wrote batch", "collection", s.collection.Name(), "from", i, "to", end)
	}

	observability.Store().OnStoreWrite(ctx, s.collection.Name(), written, time.Since(start), nil)
	return written, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

var _ Store = (*MongoStore)(nil)
