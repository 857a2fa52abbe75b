package core

import (
	"context"

	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/ports"
)

// requiredIndexes is the fixed set of secondary indexes every
// collection backing a store must carry.
func requiredIndexes() []ports.IndexSpec {
	asc := func(field string) ports.IndexSpec {
		return ports.IndexSpec{{Field: field, Direction: ports.Ascending}}
	}
	desc := func(field string) ports.IndexSpec {
		return ports.IndexSpec{{Field: field, Direction: ports.Descending}}
	}
	return []ports.IndexSpec{
		asc(domain.FieldParentID),
		asc(domain.FieldName),
		asc(domain.FieldTags),
		asc(domain.FieldStatus),
		asc(domain.FieldFingerprint),
		asc(domain.FieldArgs),
		asc(domain.FieldDeleted),
		desc(domain.FieldStartTime),
		desc(domain.FieldStopTime),
		desc(domain.FieldHeartbeat),
	}
}

// EnsureIndexes creates whichever required indexes the collection is
// missing, once per store instance. An index counts as present only
// when an existing key spec matches it structurally. Not safe against
// concurrent ensurance from multiple store instances on one
// collection; the collection's bulk create must stay idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.indexesEnsured.Load() {
		return nil
	}

	existing, err := s.coll.ListIndexes(ctx)
	if err != nil {
		return err
	}

	var missing []ports.IndexSpec
	for _, want := range requiredIndexes() {
		present := false
		for _, have := range existing {
			if have.Equal(want) {
				present = true
				break
			}
		}
		if !present {
			missing = append(missing, want)
		}
	}

	if len(missing) > 0 {
		if err := s.coll.CreateIndexes(ctx, missing); err != nil {
			return err
		}
	}

	s.indexesEnsured.Store(true)
	s.logger.Info("indexes ensured", "created", len(missing))
	return nil
}
