package core

import (
	"context"
	"testing"
	"time"

	"github.com/mlstorage/mlstore/internal/adapters/memory"
	"github.com/mlstorage/mlstore/internal/domain"
	"github.com/mlstorage/mlstore/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(memory.NewCollection(nil), validation.New(), nil)
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return s
}

// fixClock pins the store's clock and returns the pinned instant.
func fixClock(s *Store) time.Time {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return now
}

func TestCreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := fixClock(s)

	id, err := s.Create(ctx, "train-v1", domain.Document{"learning_rate": 0.001})
	require.NoError(t, err)
	require.False(t, id.IsZero())

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, id, doc[domain.FieldID])
	assert.NotContains(t, doc, domain.FieldInternalID)
	assert.Equal(t, "train-v1", doc[domain.FieldName])
	assert.Equal(t, 0.001, doc["learning_rate"])
	assert.Equal(t, string(domain.StatusRunning), doc[domain.FieldStatus])

	start, _ := doc[domain.FieldStartTime].(time.Time)
	hb, _ := doc[domain.FieldHeartbeat].(time.Time)
	assert.True(t, start.Equal(now))
	assert.True(t, hb.Equal(start), "heartbeat starts equal to start_time")
}

func TestCreateStripsCallerIdentifiers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	rogue := primitive.NewObjectID()

	id, err := s.Create(ctx, "train-v1", domain.Document{
		domain.FieldID:         rogue,
		domain.FieldInternalID: rogue,
	})
	require.NoError(t, err)
	assert.NotEqual(t, rogue, id)

	doc, err := s.Get(ctx, rogue)
	require.NoError(t, err)
	assert.Nil(t, doc, "the caller-supplied identifier must not key anything")
}

func TestCreateDoesNotMutateCallerFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	fields := domain.Document{"learning_rate": 0.001}

	_, err := s.Create(ctx, "train-v1", fields)
	require.NoError(t, err)

	assert.Equal(t, domain.Document{"learning_rate": 0.001}, fields)
}

func TestCreateAllowsDuplicateNames(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)
	b, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, "train-v1", domain.Document{domain.FieldStatus: "PAUSED"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestGetIdentifierHandling(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)

	// Hex string and ObjectID address the same document.
	byHex, err := s.Get(ctx, id.Hex())
	require.NoError(t, err)
	require.NotNil(t, byHex)
	assert.Equal(t, id, byHex[domain.FieldID])

	_, err = s.Get(ctx, "not-an-id")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidID(err))

	doc, err := s.Get(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, doc, "absence is not an error")
}

func TestGetExcludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)

	_, err = s.MarkDelete(ctx, id)
	require.NoError(t, err)

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestUpdateSetSemantics(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "train-v1", domain.Document{"learning_rate": 0.001})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, id, domain.Document{"optimizer": "adam"}))

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "adam", doc["optimizer"])
	assert.Equal(t, 0.001, doc["learning_rate"], "unmentioned fields stay untouched")
}

func TestUpdateMissingTargetIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Update(ctx, primitive.NewObjectID(), domain.Document{"optimizer": "adam"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateSoftDeletedTargetIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)
	_, err = s.MarkDelete(ctx, id)
	require.NoError(t, err)

	err = s.Update(ctx, id, domain.Document{"optimizer": "adam"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateEmptyIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Even against a missing target: nothing to write, nothing to check.
	assert.NoError(t, s.Update(ctx, primitive.NewObjectID(), nil))
	assert.NoError(t, s.Update(ctx, primitive.NewObjectID(), domain.Document{}))
}

func TestUpdateValidatesBeforeWriting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)

	err = s.Update(ctx, id, domain.Document{domain.FieldTags: 42})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, doc, domain.FieldTags)
}

func TestSetHeartbeatForcesTimestamp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)

	later := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return later }

	stale := later.Add(-time.Hour)
	require.NoError(t, s.SetHeartbeat(ctx, id, domain.Document{
		domain.FieldHeartbeat: stale,
		"progress":            0.5,
	}))

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	hb, _ := doc[domain.FieldHeartbeat].(time.Time)
	assert.True(t, hb.Equal(later), "caller-supplied heartbeat must lose to the clock")
	assert.Equal(t, 0.5, doc["progress"])
}

func TestSetFinished(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "train-v1", nil)
	require.NoError(t, err)

	done := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return done }

	require.NoError(t, s.SetFinished(ctx, id, domain.StatusCompleted, domain.Document{
		domain.FieldExitCode: int64(0),
	}))

	doc, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), doc[domain.FieldStatus])
	assert.Equal(t, int64(0), doc[domain.FieldExitCode])

	stop, _ := doc[domain.FieldStopTime].(time.Time)
	hb, _ := doc[domain.FieldHeartbeat].(time.Time)
	assert.True(t, stop.Equal(done))
	assert.True(t, hb.Equal(done))
}

func TestSetFinishedRejectsNonTerminalStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// The status check runs before anything else, so even the malformed
	// identifier goes unreported.
	err := s.SetFinished(ctx, "not-an-id", domain.StatusRunning, nil)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidArgument(err))
}
