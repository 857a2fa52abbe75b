package core

import (
	"context"
	"sync/atomic"

	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// MarkDelete sets the soft-delete flag on the experiment and every
// transitive child, walking the parent/child tree depth-first with an
// explicit stack, and returns the identifiers in visit order. Children
// already soft-deleted are re-marked; a missing target yields an empty
// list and no error. A failure partway through leaves the visited
// prefix marked with no rollback.
func (s *Store) MarkDelete(ctx context.Context, id any) ([]primitive.ObjectID, error) {
	oid, err := domain.ParseExperimentID(id)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	marked := []primitive.ObjectID{}
	stack := []primitive.ObjectID{oid}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Unconditional re-mark keeps the walk idempotent per node.
		matched, err := s.coll.UpdateOne(ctx,
			domain.Document{domain.FieldInternalID: current},
			domain.Document{domain.FieldDeleted: true},
		)
		if err != nil {
			return marked, err
		}
		if matched < 1 {
			continue
		}
		marked = append(marked, current)

		children, err := s.childIDs(ctx, current)
		if err != nil {
			return marked, err
		}
		// Reversed so the first child pops first: preorder depth-first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	s.logger.Debug("experiments marked deleted", "root", oid.Hex(), "count", len(marked))
	return marked, nil
}

// childIDs lists the identifiers of every document whose parent_id is
// id, soft-deleted ones included.
func (s *Store) childIDs(ctx context.Context, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.coll.Find(ctx, ports.Query{
		Filter: domain.Document{domain.FieldParentID: id},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		child, ok := cur.Current()[domain.FieldInternalID].(primitive.ObjectID)
		if ok {
			ids = append(ids, child)
		}
	}
	return ids, cur.Err()
}

// CompleteDeletion hard-deletes the given experiments. The identifier
// collection is deduplicated, the per-document deletes run
// concurrently, and a failure in one propagates only after all have
// been attempted. Returns the number of documents actually removed;
// identifiers that no longer exist contribute zero.
func (s *Store) CompleteDeletion(ctx context.Context, ids []any) (int64, error) {
	unique := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		oid, err := domain.ParseExperimentID(id)
		if err != nil {
			return 0, err
		}
		unique[oid] = struct{}{}
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		return 0, err
	}

	var deleted int64
	var g errgroup.Group
	for oid := range unique {
		oid := oid
		g.Go(func() error {
			n, err := s.coll.DeleteOne(ctx, domain.Document{domain.FieldInternalID: oid})
			atomic.AddInt64(&deleted, n)
			return err
		})
	}
	err := g.Wait()

	s.logger.Debug("deletion completed", "requested", len(unique), "deleted", atomic.LoadInt64(&deleted))
	return atomic.LoadInt64(&deleted), err
}
