// Package memory provides an in-process Collection for tests and
// ephemeral deployments. Semantics mirror the database backend: atomic
// per-document operations, $ne-style filters, sorted paginated finds.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mlstorage/mlstore/internal/docfilter"
	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Collection struct {
	mu      sync.RWMutex
	docs    map[primitive.ObjectID]domain.Document
	order   []primitive.ObjectID
	indexes []ports.IndexSpec
	logger  *slog.Logger
	closed  bool
}

func NewCollection(logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{
		docs:   make(map[primitive.ObjectID]domain.Document),
		logger: logger.With("component", "collection", "backend", "memory"),
	}
}

func (c *Collection) FindOne(ctx context.Context, filter domain.Document) (domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		doc := c.docs[id]
		if docfilter.Matches(doc, filter) {
			return doc.Clone(), nil
		}
	}
	return nil, nil
}

func (c *Collection) Find(ctx context.Context, q ports.Query) (ports.Cursor, error) {
	c.mu.RLock()
	matched := make([]domain.Document, 0)
	for _, id := range c.order {
		doc := c.docs[id]
		if docfilter.Matches(doc, q.Filter) {
			matched = append(matched, doc.Clone())
		}
	}
	c.mu.RUnlock()

	docfilter.Sort(matched, q.Sort)
	return docfilter.NewSliceCursor(docfilter.ApplyWindow(matched, q.Skip, q.Limit)), nil
}

func (c *Collection) InsertOne(ctx context.Context, doc domain.Document) (primitive.ObjectID, error) {
	stored := doc.Clone()
	id, ok := stored[domain.FieldInternalID].(primitive.ObjectID)
	if !ok {
		id = primitive.NewObjectID()
		stored[domain.FieldInternalID] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = stored
	return id, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter domain.Document, set domain.Document) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range c.order {
		doc := c.docs[id]
		if !docfilter.Matches(doc, filter) {
			continue
		}
		for k, v := range set.Clone() {
			doc[k] = v
		}
		return 1, nil
	}
	return 0, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filter domain.Document) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, id := range c.order {
		doc := c.docs[id]
		if !docfilter.Matches(doc, filter) {
			continue
		}
		delete(c.docs, id)
		c.order = append(c.order[:i], c.order[i+1:]...)
		return 1, nil
	}
	return 0, nil
}

func (c *Collection) ListIndexes(ctx context.Context) ([]ports.IndexSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// The primary-key index always exists, like the database's default
	// _id index.
	specs := []ports.IndexSpec{{{Field: domain.FieldInternalID, Direction: ports.Ascending}}}
	specs = append(specs, c.indexes...)
	return specs, nil
}

func (c *Collection) CreateIndexes(ctx context.Context, specs []ports.IndexSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, spec := range specs {
		exists := false
		for _, have := range c.indexes {
			if have.Equal(spec) {
				exists = true
				break
			}
		}
		if !exists {
			c.indexes = append(c.indexes, spec)
		}
	}
	c.logger.Debug("indexes created", "total", len(c.indexes))
	return nil
}

func (c *Collection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.docs = make(map[primitive.ObjectID]domain.Document)
	c.order = nil
	return nil
}
