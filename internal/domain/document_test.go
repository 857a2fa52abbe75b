package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseExperimentIDRoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()

	parsed, err := ParseExperimentID(oid)
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)

	parsed, err = ParseExperimentID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)
}

func TestParseExperimentIDRejectsMalformedValues(t *testing.T) {
	testCases := []struct {
		name  string
		value any
	}{
		{"empty_string", ""},
		{"short_hex", "abc123"},
		{"non_hex", "zzzzzzzzzzzzzzzzzzzzzzzz"},
		{"integer", 42},
		{"nil", nil},
		{"zero_object_id", primitive.NilObjectID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExperimentID(tc.value)
			require.Error(t, err)
			assert.True(t, IsInvalidID(err))
		})
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, StatusRunning.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusFailed.Valid())
	assert.False(t, Status("PAUSED").Valid())
	assert.False(t, Status("").Valid())

	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := Document{
		"name": "train-v1",
		"tags": []string{"vision"},
		"exc_info": map[string]any{
			"hostname": "worker-3",
			"env":      map[string]any{"CUDA_VISIBLE_DEVICES": "0"},
		},
		"args": []any{"python", "train.py"},
	}

	clone := doc.Clone()
	clone["name"] = "changed"
	clone["tags"].([]string)[0] = "changed"
	clone["exc_info"].(map[string]any)["hostname"] = "changed"
	clone["args"].([]any)[0] = "changed"

	assert.Equal(t, "train-v1", doc["name"])
	assert.Equal(t, []string{"vision"}, doc["tags"])
	assert.Equal(t, "worker-3", doc["exc_info"].(map[string]any)["hostname"])
	assert.Equal(t, "python", doc["args"].([]any)[0])
}

func TestDocumentCloneNil(t *testing.T) {
	var doc Document
	assert.Nil(t, doc.Clone())
}

func TestDocumentDeletedFlag(t *testing.T) {
	assert.False(t, Document{}.Deleted())
	assert.False(t, Document{FieldDeleted: false}.Deleted())
	assert.False(t, Document{FieldDeleted: "yes"}.Deleted())
	assert.True(t, Document{FieldDeleted: true}.Deleted())
}

func TestDocumentTimeAccessors(t *testing.T) {
	now := time.Now().UTC()
	doc := Document{FieldStartTime: now, FieldHeartbeat: now}

	start, ok := doc.StartedAt()
	require.True(t, ok)
	assert.Equal(t, now, start)

	hb, ok := doc.HeartbeatAt()
	require.True(t, ok)
	assert.Equal(t, now, hb)

	_, ok = Document{}.StartedAt()
	assert.False(t, ok)
}
