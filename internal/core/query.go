package core

import (
	"context"

	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
)

// QueryOptions narrow IterDocs and FetchDocs. Filter keys are document
// field names with literal equality or domain.NotEqual values; Skip and
// Limit apply independently when positive; SortBy defaults to
// descending heartbeat.
type QueryOptions struct {
	Filter         domain.Document
	Skip           int64
	Limit          int64
	SortBy         []ports.SortField
	IncludeDeleted bool
}

// Iterator is a lazy, forward-only, non-restartable stream of
// experiment documents. Every document has passed the reverse
// identifier rename.
type Iterator struct {
	cur     ports.Cursor
	current domain.Document
}

func (it *Iterator) Next(ctx context.Context) bool {
	if !it.cur.Next(ctx) {
		return false
	}
	it.current = FromDatabaseDoc(it.cur.Current())
	return true
}

func (it *Iterator) Doc() domain.Document { return it.current }

func (it *Iterator) Err() error { return it.cur.Err() }

func (it *Iterator) Close(ctx context.Context) error { return it.cur.Close(ctx) }

// IterDocs opens an iterator over the documents matching the options.
// Unless IncludeDeleted is set, soft-deleted documents are excluded.
func (s *Store) IterDocs(ctx context.Context, opts QueryOptions) (*Iterator, error) {
	filter, err := s.validator.Validate(opts.Filter.Clone(), true)
	if err != nil {
		return nil, err
	}
	filter = ToDatabaseDoc(filter)
	if filter == nil {
		filter = domain.Document{}
	}
	if !opts.IncludeDeleted {
		filter[domain.FieldDeleted] = domain.NotEqual{Value: true}
	}

	sortBy := opts.SortBy
	if len(sortBy) == 0 {
		sortBy = []ports.SortField{{Field: domain.FieldHeartbeat, Direction: ports.Descending}}
	}

	cur, err := s.coll.Find(ctx, ports.Query{
		Filter: filter,
		Sort:   sortBy,
		Skip:   opts.Skip,
		Limit:  opts.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &Iterator{cur: cur}, nil
}

// FetchDocs materializes IterDocs into an ordered slice.
func (s *Store) FetchDocs(ctx context.Context, opts QueryOptions) ([]domain.Document, error) {
	it, err := s.IterDocs(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer it.Close(ctx)

	docs := []domain.Document{}
	for it.Next(ctx) {
		docs = append(docs, it.Doc())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
