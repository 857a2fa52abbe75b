package ports

import (
	"context"

	"github.com/mlstorage/mlstore/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sort and index directions, matching the database's convention.
const (
	Ascending  = 1
	Descending = -1
)

// SortField is one (field, direction) pair of an ordered sort spec.
type SortField struct {
	Field     string
	Direction int
}

// IndexKey is one (field, direction) pair of an index key spec.
type IndexKey struct {
	Field     string
	Direction int
}

// IndexSpec is the ordered key specification of a secondary index. Two
// specs are the same index only when they match structurally, key for
// key and direction for direction.
type IndexSpec []IndexKey

func (s IndexSpec) Equal(other IndexSpec) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Query bundles the arguments of a filtered find. Filter values are
// either literal equality constraints or domain.NotEqual wrappers. Skip
// and Limit apply only when positive.
type Query struct {
	Filter domain.Document
	Sort   []SortField
	Skip   int64
	Limit  int64
}

// Cursor is a forward-only, non-restartable stream of documents.
type Cursor interface {
	Next(ctx context.Context) bool
	Current() domain.Document
	Err() error
	Close(ctx context.Context) error
}

// Collection is the slice of a document database the store needs. One
// collection holds experiment documents keyed by the internal "_id"
// field; every operation is a single-document atomic step, there are no
// multi-document transactions behind this interface.
type Collection interface {
	// FindOne returns the first match, or (nil, nil) when nothing
	// matches.
	FindOne(ctx context.Context, filter domain.Document) (domain.Document, error)

	// Find opens a cursor over all matches of the query.
	Find(ctx context.Context, q Query) (Cursor, error)

	// InsertOne stores a new document, minting an "_id" when the
	// document carries none, and returns the id.
	InsertOne(ctx context.Context, doc domain.Document) (primitive.ObjectID, error)

	// UpdateOne merges the given fields into the first match with set
	// semantics and reports how many documents matched (0 or 1).
	UpdateOne(ctx context.Context, filter domain.Document, set domain.Document) (int64, error)

	// DeleteOne removes the first match and reports how many documents
	// were removed (0 or 1).
	DeleteOne(ctx context.Context, filter domain.Document) (int64, error)

	// ListIndexes returns the key specs of all existing indexes.
	ListIndexes(ctx context.Context) ([]IndexSpec, error)

	// CreateIndexes creates the given indexes in one bulk call. It must
	// be idempotent at the database level; the store may race into
	// duplicate calls.
	CreateIndexes(ctx context.Context, specs []IndexSpec) error

	Close(ctx context.Context) error
}
