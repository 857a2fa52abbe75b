// Package core implements the experiment store over a document
// collection: identifier normalization, index lifecycle, per-document
// CRUD with existence guarantees, cascading soft delete and the
// query/iterator layer.
package core

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the metadata store for experiment runs. One Store wraps one
// collection; all operations are single-document atomic steps against
// it, there is no cross-operation transaction boundary.
type Store struct {
	coll      ports.Collection
	validator ports.DocumentValidator
	logger    *slog.Logger

	// One-shot index-ensured state: "not yet ensured" -> "ensured",
	// transitioned once and never reset. Concurrent first calls may
	// race into a duplicate ensure pass, which the collection contract
	// keeps idempotent.
	indexesEnsured atomic.Bool

	now func() time.Time
}

func NewStore(coll ports.Collection, validator ports.DocumentValidator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		coll:      coll,
		validator: validator,
		logger:    logger.With("component", "store"),
		now:       utcNow,
	}
}

// utcNow truncates to milliseconds, the precision timestamps keep
// through their wire encoding, so written and re-read times compare
// equal.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Collection exposes the underlying collection port.
func (s *Store) Collection() ports.Collection {
	return s.coll
}

// Close releases the underlying collection.
func (s *Store) Close(ctx context.Context) error {
	return s.coll.Close(ctx)
}

// liveFilter matches the document with the given id whose soft-delete
// flag is not set. Every mutating operation shares it.
func liveFilter(id primitive.ObjectID) domain.Document {
	return domain.Document{
		domain.FieldInternalID: id,
		domain.FieldDeleted:    domain.NotEqual{Value: true},
	}
}

// Get returns the experiment document for id, or (nil, nil) when no
// live document exists. A malformed id fails before any query.
func (s *Store) Get(ctx context.Context, id any) (domain.Document, error) {
	oid, err := domain.ParseExperimentID(id)
	if err != nil {
		return nil, err
	}

	doc, err := s.coll.FindOne(ctx, liveFilter(oid))
	if err != nil {
		return nil, err
	}
	return FromDatabaseDoc(doc), nil
}

// Create inserts a new experiment document and returns its assigned
// identifier. Caller-supplied identifier fields are stripped;
// start_time defaults to now, heartbeat to start_time and status to
// RUNNING. Duplicate names are permitted.
func (s *Store) Create(ctx context.Context, name string, fields domain.Document) (primitive.ObjectID, error) {
	doc := StripIdentifier(fields.Clone())
	if doc == nil {
		doc = domain.Document{}
	}
	doc[domain.FieldName] = name

	doc, err := s.validator.Validate(doc, false)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if err := domain.ApplyCreateDefaults(doc, s.now()); err != nil {
		return primitive.NilObjectID, err
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		return primitive.NilObjectID, err
	}

	id, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	s.logger.Debug("experiment created", "id", id.Hex(), "name", name)
	return id, nil
}

// Update merges fields into the live document with set semantics.
// Fields not mentioned stay untouched; an empty update is a successful
// no-op. A missing or soft-deleted target fails with NotFound.
func (s *Store) Update(ctx context.Context, id any, fields domain.Document) error {
	oid, err := domain.ParseExperimentID(id)
	if err != nil {
		return err
	}

	doc, err := s.validator.Validate(StripIdentifier(fields.Clone()), true)
	if err != nil {
		return err
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		return err
	}
	if len(doc) == 0 {
		return nil
	}
	return s.applyUpdate(ctx, oid, doc)
}

// SetHeartbeat merges fields like Update but forces heartbeat to the
// current time regardless of caller input.
func (s *Store) SetHeartbeat(ctx context.Context, id any, fields domain.Document) error {
	oid, err := domain.ParseExperimentID(id)
	if err != nil {
		return err
	}

	doc, err := s.validator.Validate(StripIdentifier(fields.Clone()), true)
	if err != nil {
		return err
	}
	doc[domain.FieldHeartbeat] = s.now()

	if err := s.EnsureIndexes(ctx); err != nil {
		return err
	}
	return s.applyUpdate(ctx, oid, doc)
}

// SetFinished moves the experiment into a terminal status, forcing
// stop_time and heartbeat to the current time. Any status outside
// COMPLETED/FAILED fails with InvalidArgument before touching the
// database.
func (s *Store) SetFinished(ctx context.Context, id any, status domain.Status, fields domain.Document) error {
	if !status.Terminal() {
		return &domain.InvalidArgumentError{
			Op:     "set_finished",
			Reason: "status must be " + string(domain.StatusCompleted) + " or " + string(domain.StatusFailed),
		}
	}

	oid, err := domain.ParseExperimentID(id)
	if err != nil {
		return err
	}

	doc, err := s.validator.Validate(StripIdentifier(fields.Clone()), true)
	if err != nil {
		return err
	}
	now := s.now()
	doc[domain.FieldStopTime] = now
	doc[domain.FieldHeartbeat] = now
	doc[domain.FieldStatus] = string(status)

	if err := s.EnsureIndexes(ctx); err != nil {
		return err
	}
	return s.applyUpdate(ctx, oid, doc)
}

func (s *Store) applyUpdate(ctx context.Context, id primitive.ObjectID, set domain.Document) error {
	matched, err := s.coll.UpdateOne(ctx, liveFilter(id), set)
	if err != nil {
		return err
	}
	if matched < 1 {
		return &domain.NotFoundError{ID: id}
	}
	return nil
}
