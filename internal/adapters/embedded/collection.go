// Package embedded backs the store with a local Badger database, for
// single-process deployments and development setups that have no
// document-database server. Documents are bson-encoded so they
// round-trip exactly as they do through the mongodb backend.
//
// Finds scan the whole collection and filter in memory; index specs are
// recorded for lifecycle fidelity but do not accelerate queries.
package embedded

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/mlstorage/mlstore/internal/bsonx"
	"github.com/mlstorage/mlstore/internal/docfilter"
	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	docPrefix = []byte("doc/")
	indexKey  = []byte("meta/indexes")
)

type Collection struct {
	db     *badger.DB
	logger *slog.Logger

	// Serializes writers instead of retrying badger conflicts.
	mu sync.Mutex
}

// Open creates or reopens the collection under dir.
func Open(dir string, logger *slog.Logger) (*Collection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "collection", "backend", "embedded")

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	logger.Info("opened", "dir", dir)
	return &Collection{db: db, logger: logger}, nil
}

func docKey(id primitive.ObjectID) []byte {
	return append(append([]byte{}, docPrefix...), id[:]...)
}

func (c *Collection) FindOne(ctx context.Context, filter domain.Document) (domain.Document, error) {
	// A bare _id equality filter reads the key directly; anything else
	// scans.
	if id, ok := soleIDFilter(filter); ok {
		doc, err := c.readDoc(id)
		if err != nil || doc == nil {
			return nil, err
		}
		return doc, nil
	}

	var found domain.Document
	err := c.scan(func(doc domain.Document) bool {
		if docfilter.Matches(doc, filter) {
			found = doc
			return false
		}
		return true
	})
	return found, err
}

func (c *Collection) Find(ctx context.Context, q ports.Query) (ports.Cursor, error) {
	matched := make([]domain.Document, 0)
	err := c.scan(func(doc domain.Document) bool {
		if docfilter.Matches(doc, q.Filter) {
			matched = append(matched, doc)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

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

	value, err := bsonx.EncodeDoc(stored)
	if err != nil {
		return primitive.NilObjectID, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(id), value)
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

func (c *Collection) UpdateOne(ctx context.Context, filter domain.Document, set domain.Document) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched int64
	err := c.db.Update(func(txn *badger.Txn) error {
		doc, err := c.firstMatch(txn, filter)
		if err != nil || doc == nil {
			return err
		}
		for k, v := range set {
			doc[k] = v
		}
		value, err := bsonx.EncodeDoc(doc)
		if err != nil {
			return err
		}
		id := doc[domain.FieldInternalID].(primitive.ObjectID)
		if err := txn.Set(docKey(id), value); err != nil {
			return err
		}
		matched = 1
		return nil
	})
	return matched, err
}

func (c *Collection) DeleteOne(ctx context.Context, filter domain.Document) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deleted int64
	err := c.db.Update(func(txn *badger.Txn) error {
		doc, err := c.firstMatch(txn, filter)
		if err != nil || doc == nil {
			return err
		}
		id := doc[domain.FieldInternalID].(primitive.ObjectID)
		if err := txn.Delete(docKey(id)); err != nil {
			return err
		}
		deleted = 1
		return nil
	})
	return deleted, err
}

func (c *Collection) ListIndexes(ctx context.Context) ([]ports.IndexSpec, error) {
	specs := []ports.IndexSpec{{{Field: domain.FieldInternalID, Direction: ports.Ascending}}}

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		recorded, err := decodeIndexSpecs(value)
		if err != nil {
			return err
		}
		specs = append(specs, recorded...)
		return nil
	})
	return specs, err
}

func (c *Collection) CreateIndexes(ctx context.Context, specs []ports.IndexSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(txn *badger.Txn) error {
		var recorded []ports.IndexSpec
		item, err := txn.Get(indexKey)
		if err == nil {
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if recorded, err = decodeIndexSpecs(value); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		for _, spec := range specs {
			exists := false
			for _, have := range recorded {
				if have.Equal(spec) {
					exists = true
					break
				}
			}
			if !exists {
				recorded = append(recorded, spec)
			}
		}

		value, err := encodeIndexSpecs(recorded)
		if err != nil {
			return err
		}
		return txn.Set(indexKey, value)
	})
}

func (c *Collection) Close(ctx context.Context) error {
	return c.db.Close()
}

func (c *Collection) readDoc(id primitive.ObjectID) (domain.Document, error) {
	var doc domain.Document
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		doc, err = bsonx.DecodeDoc(value)
		return err
	})
	return doc, err
}

// scan walks every document; visit returns false to stop early.
func (c *Collection) scan(visit func(domain.Document) bool) error {
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = docPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			doc, err := bsonx.DecodeDoc(value)
			if err != nil {
				return err
			}
			if !visit(doc) {
				return nil
			}
		}
		return nil
	})
}

func (c *Collection) firstMatch(txn *badger.Txn, filter domain.Document) (domain.Document, error) {
	if id, ok := soleIDFilter(filter); ok {
		item, err := txn.Get(docKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		doc, err := bsonx.DecodeDoc(value)
		if err != nil {
			return nil, err
		}
		if !docfilter.Matches(doc, filter) {
			return nil, nil
		}
		return doc, nil
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = docPrefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		value, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		doc, err := bsonx.DecodeDoc(value)
		if err != nil {
			return nil, err
		}
		if docfilter.Matches(doc, filter) {
			return doc, nil
		}
	}
	return nil, nil
}

// soleIDFilter reports whether the filter pins _id to a literal id,
// with no other constraint than the usual deleted guard.
func soleIDFilter(filter domain.Document) (primitive.ObjectID, bool) {
	id, ok := filter[domain.FieldInternalID].(primitive.ObjectID)
	if !ok || len(filter) != 1 {
		return primitive.NilObjectID, false
	}
	return id, true
}

func encodeIndexSpecs(specs []ports.IndexSpec) ([]byte, error) {
	wrapped := bson.M{"indexes": specs}
	return bson.Marshal(wrapped)
}

func decodeIndexSpecs(data []byte) ([]ports.IndexSpec, error) {
	var wrapped struct {
		Indexes []ports.IndexSpec `bson:"indexes"`
	}
	if err := bson.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Indexes, nil
}
