package docfilter

import (
	"context"

	"github.com/mlstorage/mlstore/internal/domain"
)

// SliceCursor adapts a fully materialized result set to the forward-only
// cursor contract. The memory and embedded backends return it from Find.
type SliceCursor struct {
	docs    []domain.Document
	current domain.Document
}

func NewSliceCursor(docs []domain.Document) *SliceCursor {
	return &SliceCursor{docs: docs}
}

func (c *SliceCursor) Next(ctx context.Context) bool {
	if len(c.docs) == 0 {
		return false
	}
	c.current = c.docs[0]
	c.docs = c.docs[1:]
	return true
}

func (c *SliceCursor) Current() domain.Document { return c.current }

func (c *SliceCursor) Err() error { return nil }

func (c *SliceCursor) Close(ctx context.Context) error {
	c.docs = nil
	return nil
}

// ApplyWindow slices a sorted result set by skip and limit, each
// honored independently and only when positive.
func ApplyWindow(docs []domain.Document, skip, limit int64) []domain.Document {
	if skip > 0 {
		if skip >= int64(len(docs)) {
			return nil
		}
		docs = docs[skip:]
	}
	if limit > 0 && int64(len(docs)) > limit {
		docs = docs[:limit]
	}
	return docs
}
