// Package mongodb backs the store with a MongoDB collection. It is the
// production adapter; every Collection operation maps to exactly one
// driver call.
package mongodb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mlstorage/mlstore/internal/bsonx"
	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collection struct {
	coll   *mongo.Collection
	client *mongo.Client
	logger *slog.Logger
}

// New wraps an existing driver collection. The caller keeps ownership
// of the client.
func New(coll *mongo.Collection, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{
		coll:   coll,
		logger: logger.With("component", "collection", "backend", "mongodb"),
	}
}

// Connect dials the server from config and returns a Collection that
// owns the underlying client; Close disconnects it.
func Connect(ctx context.Context, cfg domain.Config) (*Collection, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	c := New(client.Database(cfg.Database).Collection(cfg.Collection), cfg.Logger)
	c.client = client
	c.logger.Info("connected", "database", cfg.Database, "collection", cfg.Collection)
	return c, nil
}

func (c *Collection) FindOne(ctx context.Context, filter domain.Document) (domain.Document, error) {
	var raw bson.M
	err := c.coll.FindOne(ctx, toFilter(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return bsonx.NormalizeDoc(raw), nil
}

func (c *Collection) Find(ctx context.Context, q ports.Query) (ports.Cursor, error) {
	opts := options.Find().SetSort(toSort(q.Sort))
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := c.coll.Find(ctx, toFilter(q.Filter), opts)
	if err != nil {
		return nil, err
	}
	return &cursor{cur: cur}, nil
}

func (c *Collection) InsertOne(ctx context.Context, doc domain.Document) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, &domain.InvalidIDError{Value: res.InsertedID, Reason: "database assigned a non-ObjectID key"}
	}
	return id, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter domain.Document, set domain.Document) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, toFilter(filter), bson.M{"$set": bson.M(set)})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter domain.Document) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, toFilter(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *Collection) ListIndexes(ctx context.Context) ([]ports.IndexSpec, error) {
	cur, err := c.coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var specs []ports.IndexSpec
	for cur.Next(ctx) {
		var info struct {
			Key bson.D `bson:"key"`
		}
		if err := cur.Decode(&info); err != nil {
			return nil, err
		}
		specs = append(specs, fromIndexKey(info.Key))
	}
	return specs, cur.Err()
}

func (c *Collection) CreateIndexes(ctx context.Context, specs []ports.IndexSpec) error {
	if len(specs) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, len(specs))
	for i, spec := range specs {
		models[i] = mongo.IndexModel{Keys: toIndexKey(spec)}
	}
	_, err := c.coll.Indexes().CreateMany(ctx, models)
	return err
}

func (c *Collection) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

type cursor struct {
	cur     *mongo.Cursor
	current domain.Document
	err     error
}

func (c *cursor) Next(ctx context.Context) bool {
	if !c.cur.Next(ctx) {
		return false
	}
	var raw bson.M
	if err := c.cur.Decode(&raw); err != nil {
		c.err = err
		return false
	}
	c.current = bsonx.NormalizeDoc(raw)
	return true
}

func (c *cursor) Current() domain.Document { return c.current }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.cur.Err()
}

func (c *cursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}
