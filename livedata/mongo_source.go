package livedata

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"sweetmap/models"
)

// MongoSource watches the stores and genres collections through change
// streams, reloading the full collection on every event. Change streams need
// a replica set.
type MongoSource struct {
	stores *mongo.Collection
	genres *mongo.Collection
	logger *zap.Logger
}

func NewMongoSource(db *mongo.Database, storesColl, genresColl string, logger *zap.Logger) *MongoSource {
	return &MongoSource{
		stores: db.Collection(storesColl),
		genres: db.Collection(genresColl),
		logger: logger,
	}
}

func (m *MongoSource) WatchStores(ctx context.Context, emit func([]models.Store)) error {
	return watchCollection(ctx, m.stores, m.logger, emit)
}

func (m *MongoSource) WatchGenres(ctx context.Context, emit func([]models.Genre)) error {
	return watchCollection(ctx, m.genres, m.logger, emit)
}

func watchCollection[T any](ctx context.Context, coll *mongo.Collection, logger *zap.Logger, emit func([]T)) error {
	// Open the stream before the first load so no write between the two is missed.
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return fmt.Errorf("watch %s: %w", coll.Name(), err)
	}
	defer stream.Close(context.Background())

	if err := reload(ctx, coll, emit); err != nil {
		return err
	}
	for stream.Next(ctx) {
		if err := reload(ctx, coll, emit); err != nil {
			logger.Warn("reload after change failed", zap.String("collection", coll.Name()), zap.Error(err))
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return stream.Err()
}

func reload[T any](ctx context.Context, coll *mongo.Collection, emit func([]T)) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("load %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)
	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	emit(docs)
	return nil
}
