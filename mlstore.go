// Package mlstore is a metadata store for machine-learning experiment
// runs backed by a document database. It tracks run creation, heartbeat
// liveness, completion status and parent/child relationships, and
// provides cascading soft delete with asynchronous hard deletion.
//
// Every experiment is one open document: a handful of known fields
// (name, status, timestamps, parent id) plus arbitrary caller fields
// preserved verbatim. Supported backends are MongoDB (production), an
// embedded Badger database and an in-memory collection.
//
// Basic usage:
//
//	store, err := mlstore.Open(ctx, mlstore.Config{
//	    Backend:    mlstore.BackendMongoDB,
//	    URI:        "mongodb://localhost:27017",
//	    Database:   "mlstorage",
//	    Collection: "experiments",
//	})
//	if err != nil { ... }
//	defer store.Close(ctx)
//
//	id, err := store.Create(ctx, "train-v1", mlstore.Document{
//	    "args": []any{"python", "train.py"},
//	})
//	...
//	err = store.SetFinished(ctx, id, mlstore.StatusCompleted, nil)
package mlstore

import (
	"context"

	"github.com/mlstorage/mlstore/internal/adapters/embedded"
	"github.com/mlstorage/mlstore/internal/adapters/memory"
	"github.com/mlstorage/mlstore/internal/adapters/mongodb"
	"github.com/mlstorage/mlstore/internal/core"
	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"github.com/mlstorage/mlstore/internal/validation"
)

// Store is the experiment-run metadata store.
type Store = core.Store

// Document is one experiment record: known fields plus arbitrary
// caller fields carried verbatim.
type Document = domain.Document

// Status is the experiment lifecycle state.
type Status = domain.Status

const (
	StatusRunning   = domain.StatusRunning
	StatusCompleted = domain.StatusCompleted
	StatusFailed    = domain.StatusFailed
)

// NotEqual wraps a query-filter value into a not-equal constraint.
type NotEqual = domain.NotEqual

// QueryOptions narrow IterDocs and FetchDocs.
type QueryOptions = core.QueryOptions

// Iterator is a lazy, forward-only document stream.
type Iterator = core.Iterator

// Config selects and describes the backing collection.
type Config = domain.Config

type BackendType = domain.BackendType

const (
	BackendMongoDB  = domain.BackendMongoDB
	BackendEmbedded = domain.BackendEmbedded
	BackendMemory   = domain.BackendMemory
)

// Collection is the document-collection abstraction a Store runs on.
type Collection = ports.Collection

// DocumentValidator shapes candidate documents before writes and
// filters before reads.
type DocumentValidator = ports.DocumentValidator

// SortField is one (field, direction) pair of a sort spec.
type SortField = ports.SortField

// Sort directions.
const (
	Ascending  = ports.Ascending
	Descending = ports.Descending
)

// Error predicates for the store's failure taxonomy.
var (
	IsNotFound        = domain.IsNotFound
	IsInvalidID       = domain.IsInvalidID
	IsValidation      = domain.IsValidation
	IsInvalidArgument = domain.IsInvalidArgument
)

var (
	ErrNotFound        = domain.ErrNotFound
	ErrInvalidID       = domain.ErrInvalidID
	ErrValidation      = domain.ErrValidation
	ErrInvalidArgument = domain.ErrInvalidArgument
)

// LoadConfig reads a JSON or YAML config file and applies defaults.
func LoadConfig(path string) (Config, error) {
	return domain.LoadConfig(path)
}

// DocumentFromJSON parses an API payload into a Document, the inverse
// of Document.JSON. Field types stay as JSON gives them; shaping is the
// validator's job on the next write.
func DocumentFromJSON(data []byte) (Document, error) {
	return domain.DocumentFromJSON(data)
}

// Open builds a Store on the backend the config names. The returned
// store owns the backend connection; Close releases it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		coll Collection
		err  error
	)
	switch cfg.Backend {
	case domain.BackendMongoDB:
		coll, err = mongodb.Connect(ctx, cfg)
	case domain.BackendEmbedded:
		coll, err = embedded.Open(cfg.DataDir, cfg.Logger)
	case domain.BackendMemory:
		coll = memory.NewCollection(cfg.Logger)
	}
	if err != nil {
		return nil, err
	}

	return New(coll, cfg), nil
}

// New builds a Store on an already constructed collection, with the
// default document validator.
func New(coll Collection, cfg Config) *Store {
	return core.NewStore(coll, validation.New(), cfg.Logger)
}

// NewWithValidator builds a Store with a caller-supplied validator
// implementation.
func NewWithValidator(coll Collection, validator DocumentValidator, cfg Config) *Store {
	return core.NewStore(coll, validator, cfg.Logger)
}
